package dto

import (
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"auth_backend/internal/feature/auth/domain/entity"
)

// ErrorResponse is the error payload shared by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the generic success payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID            uint       `json:"id"`
	FullName      *string    `json:"fullName"`
	Email         string     `json:"email"`
	EmailVerified bool       `json:"emailVerified"`
	IsLocked      bool       `json:"isLocked"`
	CreatedAt     time.Time  `json:"createdAt"`
	LockedAt      *time.Time `json:"lockedAt,omitempty"`
}

// NewUserResponse maps a user entity to its public representation.
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		EmailVerified: u.IsEmailVerified(),
		IsLocked:      u.IsLocked,
		CreatedAt:     u.CreatedAt,
		LockedAt:      u.LockedAt,
	}
}

// ValidationErrorResponse reports request validation failures per field.
// Binding errors that are not field validations carry only the error string.
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewValidationErrorResponse maps a binding error to its response payload.
func NewValidationErrorResponse(err error) ValidationErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationErrorResponse{Error: "invalid request"}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[jsonFieldName(fe.Field())] = fieldMessage(fe)
	}
	return ValidationErrorResponse{Error: "validation failed", Fields: fields}
}

// jsonFieldName converts a struct field name to its camelCase JSON name.
func jsonFieldName(name string) string {
	if name == "" {
		return name
	}
	r := []rune(name)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "strongpassword":
		return "must be 8-64 characters and include upper and lower case letters, a digit and a special character"
	default:
		return "is invalid"
	}
}
