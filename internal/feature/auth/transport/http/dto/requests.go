// Package dto defines data transfer objects for the auth feature's HTTP
// transport layer. Validation uses Gin's binding tags; "strongpassword" is
// a custom validator registered at startup.
package dto

// RegisterReq represents the request body for the /register endpoint.
type RegisterReq struct {
	FullName string `json:"fullName" binding:"omitempty,max=254"`
	Email    string `json:"email"    binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,strongpassword"`
}

// LoginReq represents the request body for the /login endpoint.
type LoginReq struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Remember bool   `json:"remember"`
}

// ForgotPasswordReq represents the request body for the /forgot-password
// endpoint.
type ForgotPasswordReq struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordReq represents the request body for the /reset-password
// endpoint. The token arrives in the body together with the new password.
type ResetPasswordReq struct {
	Token    string `json:"token"    binding:"required"`
	Password string `json:"password" binding:"required,strongpassword"`
}
