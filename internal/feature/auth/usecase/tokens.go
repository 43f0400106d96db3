package usecase

import (
	"context"
	"time"

	"auth_backend/internal/platform/securetoken"
)

// TokenRecord はパスワードリセット・メール確認トークンの永続化レイヤーに
// 依存しない表現です。平文トークンは含まれません。
type TokenRecord struct {
	ID        uint
	UserID    uint
	TokenHash string
	ExpiresAt time.Time
}

// TokenRepository はトークンテーブルの永続化層を抽象化します。
// 用途（リセット／メール確認）ごとに別テーブルのアダプターが実装します。
// Goの慣例に従い、インターフェースはコンシューマー（usecase）が定義します。
type TokenRepository interface {
	// CreateInvalidating は同一ユーザーの既存トークンを全削除してから新しい
	// レコードを1件挿入します。両操作は単一トランザクションで実行され、
	// 「ユーザーごとに生存トークンは最大1件」の不変条件を守ります。
	CreateInvalidating(ctx context.Context, rec *TokenRecord) error

	// FindLive は期限切れでないトークンを全件返します。
	FindLive(ctx context.Context, now time.Time) ([]TokenRecord, error)

	// DeleteForUser は指定ユーザーのトークンを全削除します。
	DeleteForUser(ctx context.Context, userID uint) error

	// DeleteExpired は期限切れトークンを一括削除し、削除件数を返します。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TokenIssuer は単一用途の使い捨てトークンのライフサイクル
// （生成・ハッシュ化・検証・失効）を実装します。
type TokenIssuer struct {
	repo   TokenRepository
	hasher PasswordHasher
	expiry time.Duration

	now func() time.Time
}

// NewTokenIssuer はTokenIssuerの新しいインスタンスを生成します。
func NewTokenIssuer(repo TokenRepository, hasher PasswordHasher, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{
		repo:   repo,
		hasher: hasher,
		expiry: expiry,
		now:    time.Now,
	}
}

// GenerateFor は指定ユーザーの新しいトークンを発行し、平文を返します。
// 平文は利用者への送信にのみ使い、永続化もログ出力もしません。
// 既存トークンは発行と同時に失効します。
func (i *TokenIssuer) GenerateFor(ctx context.Context, userID uint) (string, error) {
	plain, err := securetoken.Generate(securetoken.DefaultByteLength)
	if err != nil {
		return "", err
	}

	hash, err := i.hasher.Hash(plain)
	if err != nil {
		return "", err
	}

	rec := &TokenRecord{
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: i.now().Add(i.expiry),
	}
	if err := i.repo.CreateInvalidating(ctx, rec); err != nil {
		return "", err
	}

	return plain, nil
}

// Verify は平文トークンを検証し、一致したレコードを返します。
// 平文だけでは所有レコードを特定できないため、期限内の全レコードに対して
// ハッシュ検証を試みます。トークンが最初から存在しないのか期限切れなのかを
// 呼び出し側が区別できないよう、どちらもErrInvalidTokenを返します。
func (i *TokenIssuer) Verify(ctx context.Context, plain string) (*TokenRecord, error) {
	live, err := i.repo.FindLive(ctx, i.now())
	if err != nil {
		return nil, err
	}

	for idx := range live {
		ok, err := i.hasher.Verify(plain, live[idx].TokenHash)
		if err != nil {
			// 壊れたハッシュは読み飛ばし、他のレコードの検証を続ける
			continue
		}
		if ok {
			return &live[idx], nil
		}
	}

	return nil, ErrInvalidToken
}

// RevokeFor は指定ユーザーのトークンを全て失効させます。
func (i *TokenIssuer) RevokeFor(ctx context.Context, userID uint) error {
	return i.repo.DeleteForUser(ctx, userID)
}

// DeleteExpired は期限切れトークンを掃除し、削除件数を返します。
// 定期実行向けのメンテナンス処理で、一回の失敗は致命的ではありません。
func (i *TokenIssuer) DeleteExpired(ctx context.Context) (int64, error) {
	return i.repo.DeleteExpired(ctx, i.now())
}
