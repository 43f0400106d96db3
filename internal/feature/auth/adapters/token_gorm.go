package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/usecase"
)

// passwordResetTokenGorm はパスワードリセットトークンテーブルの
// TokenRepository実装です。
type passwordResetTokenGorm struct {
	db *gorm.DB
}

var _ usecase.TokenRepository = (*passwordResetTokenGorm)(nil)

// NewPasswordResetTokenGorm はpasswordResetTokenGormの新しいインスタンスを生成します。
func NewPasswordResetTokenGorm(db *gorm.DB) *passwordResetTokenGorm {
	return &passwordResetTokenGorm{db: db}
}

// CreateInvalidating は同一ユーザーの既存トークンを削除してから新しい
// レコードを挿入します。削除と挿入は単一トランザクションで行い、
// 「ユーザーごとに生存トークンは最大1件」を保証します。
func (r *passwordResetTokenGorm) CreateInvalidating(ctx context.Context, rec *usecase.TokenRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", rec.UserID).Delete(&entity.PasswordResetToken{}).Error; err != nil {
			return err
		}
		row := entity.PasswordResetToken{
			UserID:    rec.UserID,
			TokenHash: rec.TokenHash,
			ExpiresAt: rec.ExpiresAt,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		rec.ID = row.ID
		return nil
	})
}

// FindLive は期限切れでないトークンを全件返します。
func (r *passwordResetTokenGorm) FindLive(ctx context.Context, now time.Time) ([]usecase.TokenRecord, error) {
	var rows []entity.PasswordResetToken
	err := r.db.WithContext(ctx).
		Where("expires_at > ?", now).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	recs := make([]usecase.TokenRecord, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, usecase.TokenRecord{
			ID:        row.ID,
			UserID:    row.UserID,
			TokenHash: row.TokenHash,
			ExpiresAt: row.ExpiresAt,
		})
	}
	return recs, nil
}

// DeleteForUser は指定ユーザーのトークンを全削除します。
func (r *passwordResetTokenGorm) DeleteForUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&entity.PasswordResetToken{}).Error
}

// DeleteExpired は期限切れトークンを一括削除し、削除件数を返します。
func (r *passwordResetTokenGorm) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&entity.PasswordResetToken{})
	return res.RowsAffected, res.Error
}

// emailVerificationTokenGorm はメール確認トークンテーブルの
// TokenRepository実装です。passwordResetTokenGormと同じライフサイクルを
// 別テーブルに対して実装します。
type emailVerificationTokenGorm struct {
	db *gorm.DB
}

var _ usecase.TokenRepository = (*emailVerificationTokenGorm)(nil)

// NewEmailVerificationTokenGorm はemailVerificationTokenGormの新しいインスタンスを生成します。
func NewEmailVerificationTokenGorm(db *gorm.DB) *emailVerificationTokenGorm {
	return &emailVerificationTokenGorm{db: db}
}

// CreateInvalidating は同一ユーザーの既存トークンを削除してから新しい
// レコードを挿入します。
func (r *emailVerificationTokenGorm) CreateInvalidating(ctx context.Context, rec *usecase.TokenRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", rec.UserID).Delete(&entity.EmailVerificationToken{}).Error; err != nil {
			return err
		}
		row := entity.EmailVerificationToken{
			UserID:    rec.UserID,
			TokenHash: rec.TokenHash,
			ExpiresAt: rec.ExpiresAt,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		rec.ID = row.ID
		return nil
	})
}

// FindLive は期限切れでないトークンを全件返します。
func (r *emailVerificationTokenGorm) FindLive(ctx context.Context, now time.Time) ([]usecase.TokenRecord, error) {
	var rows []entity.EmailVerificationToken
	err := r.db.WithContext(ctx).
		Where("expires_at > ?", now).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	recs := make([]usecase.TokenRecord, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, usecase.TokenRecord{
			ID:        row.ID,
			UserID:    row.UserID,
			TokenHash: row.TokenHash,
			ExpiresAt: row.ExpiresAt,
		})
	}
	return recs, nil
}

// DeleteForUser は指定ユーザーのトークンを全削除します。
func (r *emailVerificationTokenGorm) DeleteForUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&entity.EmailVerificationToken{}).Error
}

// DeleteExpired は期限切れトークンを一括削除し、削除件数を返します。
func (r *emailVerificationTokenGorm) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&entity.EmailVerificationToken{})
	return res.RowsAffected, res.Error
}
