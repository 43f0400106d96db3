package usecase

import (
	"context"
	"errors"

	"auth_backend/internal/feature/auth/domain"
	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/platform/securetoken"
)

// ProvisionFromClaims はOAuthコールバックでプロバイダーのクレームを
// ローカルユーザーに対応付けます。
//
// 未登録のメールアドレスの場合は自動プロビジョニングします。生成される
// ユーザーのパスワードハッシュは破棄済みランダム値のハッシュで、どの
// パスワードとも一致し得ません。プロバイダー側でメール確認済みのため、
// EmailVerifiedAtは即時設定します。
//
// 既存ユーザーの場合は、クレームから得た表示名と確認状態が古ければ更新します。
func (a *AuthUsecase) ProvisionFromClaims(ctx context.Context, claims *domain.Claims) (*entity.User, error) {
	identity := claims.Identity()
	if identity == "" {
		return nil, ErrIdentityNotFound
	}

	user, err := a.users.FindByEmail(ctx, identity)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return a.provisionUser(ctx, identity, claims)
	}

	// 既存レコードの鮮度を合わせる
	changed := false
	if claims.Name != "" && (user.FullName == nil || *user.FullName != claims.Name) {
		name := claims.Name
		user.FullName = &name
		changed = true
	}
	if user.EmailVerifiedAt == nil {
		now := a.now()
		user.EmailVerifiedAt = &now
		changed = true
	}
	if changed {
		if err := a.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// provisionUser はフェデレーションログイン経由の新規ユーザーを作成します。
func (a *AuthUsecase) provisionUser(ctx context.Context, email string, claims *domain.Claims) (*entity.User, error) {
	// ローカルログインを不可能にするため、捨て値のランダムシークレットを
	// ハッシュ化して保存する（平文はこのスコープを出ない）
	secret, err := securetoken.Generate(securetoken.DefaultByteLength)
	if err != nil {
		return nil, err
	}
	hash, err := a.hasher.Hash(secret)
	if err != nil {
		return nil, err
	}

	now := a.now()
	user := &entity.User{
		Email:           email,
		PasswordHash:    hash,
		EmailVerifiedAt: &now,
	}
	if claims.Name != "" {
		name := claims.Name
		user.FullName = &name
	}

	if err := a.users.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := a.roles.AssignDefaultRoles(ctx, user.ID); err != nil {
		return nil, err
	}

	a.log.Info().Uint("user_id", user.ID).Msg("provisioned user from federated login")
	return user, nil
}
