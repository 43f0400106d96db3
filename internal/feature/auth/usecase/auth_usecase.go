// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"auth_backend/internal/feature/auth/domain/entity"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail はメールアドレスでユーザーを取得します。比較は大文字小文字を区別しません。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID はIDでユーザーを取得します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// Update はユーザーの変更を永続化します。
	Update(ctx context.Context, user *entity.User) error

	// IncrementFailedAttempts は失敗カウンターをSQLでアトミックに+1し、
	// 加算後の値を返します。
	IncrementFailedAttempts(ctx context.Context, id uint) (int, error)

	// List は管理画面向けにユーザーを検索・ページングして返します。
	List(ctx context.Context, search string, page, perPage int) ([]entity.User, int64, error)
}

// PasswordHasher はパスワードおよびトークンのハッシュ化を抽象化します。
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) (bool, error)
}

// MailNotifier は認証フローが送信する通知メールを抽象化します。
// 実装はplatform/mailにあり、テストではフェイクに差し替えます。
type MailNotifier interface {
	SendVerificationEmail(user *entity.User, token string) error
	SendPasswordReset(user *entity.User, token string) error
	SendAccountLocked(user *entity.User, lockoutDuration time.Duration) error
	SendWelcome(user *entity.User) error
}

// DefaultRoleAssigner は新規ユーザーへのデフォルトロール付与を抽象化します。
// rbacフィーチャーのRoleManagerが実装します。
type DefaultRoleAssigner interface {
	AssignDefaultRoles(ctx context.Context, userID uint) error
}

// RegisterParams はユーザー登録の入力です。
type RegisterParams struct {
	FullName string
	Email    string
	Password string
}

// AuthUsecase はログイン・登録・パスワードリセット・メール確認の
// オーケストレーションを実装します。
type AuthUsecase struct {
	users        UserRepository
	hasher       PasswordHasher
	lockout      *LockoutPolicy
	resetTokens  *TokenIssuer
	verifyTokens *TokenIssuer
	roles        DefaultRoleAssigner
	mail         MailNotifier
	log          zerolog.Logger

	// dummyHash はユーザー不存在時にも検証を実行するためのハッシュです。
	// 存在有無によって応答時間が変わるのを防ぎます。
	dummyHash string

	now func() time.Time
}

// NewAuthUsecase はAuthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(
	users UserRepository,
	hasher PasswordHasher,
	lockout *LockoutPolicy,
	resetTokens *TokenIssuer,
	verifyTokens *TokenIssuer,
	roles DefaultRoleAssigner,
	mail MailNotifier,
	log zerolog.Logger,
) (*AuthUsecase, error) {
	// 起動時に一度だけ捨て値のハッシュを作り、タイミング対策用に保持する
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}

	return &AuthUsecase{
		users:        users,
		hasher:       hasher,
		lockout:      lockout,
		resetTokens:  resetTokens,
		verifyTokens: verifyTokens,
		roles:        roles,
		mail:         mail,
		log:          log,
		dummyHash:    dummy,
		now:          time.Now,
	}, nil
}

// Register は新規ユーザーを登録します。
// パスワードをハッシュ化して保存し、デフォルトロールを付与し、
// メール確認トークンを発行して確認メールを送信します。
func (a *AuthUsecase) Register(ctx context.Context, params RegisterParams) (*entity.User, error) {
	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:        params.Email,
		PasswordHash: hash,
	}
	if params.FullName != "" {
		user.FullName = &params.FullName
	}

	if err := a.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := a.roles.AssignDefaultRoles(ctx, user.ID); err != nil {
		return nil, err
	}

	token, err := a.verifyTokens.GenerateFor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if err := a.mail.SendVerificationEmail(user, token); err != nil {
		// メール送信失敗で登録自体は巻き戻さない。再送エンドポイントで回復できる。
		a.log.Error().Err(err).Uint("user_id", user.ID).Msg("failed to send verification email")
	}

	return user, nil
}

// Login はメールアドレスとパスワードでユーザーを認証します。
//
//  1. ユーザー不存在とパスワード不一致は同じ「invalid credentials」として返す（列挙攻撃対策）
//  2. ロック中は資格情報を検証せずロック理由を返す
//  3. 検証失敗はRecordFailureで記録し、ロックへ遷移した場合は通知メールを送る
//  4. 成功時はRecordSuccessで失敗履歴をリセットする
//
// セッションへのバインドはガードの責務で、ここでは行いません。
func (a *AuthUsecase) Login(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// タイミング攻撃緩和のため、存在しないユーザーでも検証を1回実行する
			_, _ = a.hasher.Verify(password, a.dummyHash)
			return nil, &InvalidCredentialsError{AttemptsRemaining: -1}
		}
		return nil, err
	}

	status, err := a.lockout.CheckStatus(ctx, user)
	if err != nil {
		return nil, err
	}
	if status.IsLocked {
		return nil, &AccountLockedError{Reason: status.Reason}
	}

	ok, err := a.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		locked, err := a.lockout.RecordFailure(ctx, user)
		if err != nil {
			return nil, err
		}
		if locked {
			if err := a.mail.SendAccountLocked(user, a.lockout.LockoutDuration()); err != nil {
				a.log.Error().Err(err).Uint("user_id", user.ID).Msg("failed to send account locked email")
			}
			minutes := int(a.lockout.LockoutDuration().Minutes())
			return nil, &AccountLockedError{
				Reason: accountLockedMessage(minutes),
			}
		}
		return nil, &InvalidCredentialsError{
			AttemptsRemaining: a.lockout.MaxAttempts() - user.FailedLoginAttempts,
		}
	}

	if err := a.lockout.RecordSuccess(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// accountLockedMessage はロック遷移直後の利用者向けメッセージを組み立てます。
func accountLockedMessage(minutes int) string {
	if minutes == 1 {
		return "Account locked due to multiple failed login attempts. Try again in 1 minute."
	}
	return fmt.Sprintf("Account locked due to multiple failed login attempts. Try again in %d minutes.", minutes)
}
