package usecase

import (
	"errors"
	"fmt"
)

// 認証系ユースケースのドメインエラー。上位層（ハンドラー）が適切なHTTP
// ステータスとメッセージに変換します。
var (
	// ErrUserNotFound は指定された条件のユーザーが存在しないことを示します。
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists は同じメールアドレスのユーザーが既に存在することを示します。
	ErrEmailAlreadyExists = errors.New("user with this email already exists")

	// ErrInvalidToken はトークンが存在しない・期限切れ・不一致のいずれかを示します。
	// 呼び出し側がどのケースかを区別できてはならないため、単一のエラーに畳み込みます。
	ErrInvalidToken = errors.New("token is invalid or has expired")

	// ErrAlreadyVerified はメールアドレスが既に確認済みであることを示します。
	ErrAlreadyVerified = errors.New("email is already verified")

	// ErrIdentityNotFound はOAuthクレームに利用可能な識別子が含まれないことを示します。
	ErrIdentityNotFound = errors.New("identity not found in claims")
)

// AccountLockedError はアカウントがロック中のため認証を拒否したことを表します。
// Reasonは残り時間を含む利用者向けメッセージです。
type AccountLockedError struct {
	Reason string
}

func (e *AccountLockedError) Error() string {
	return e.Reason
}

// InvalidCredentialsError は資格情報の検証失敗を表します。
// ユーザー列挙攻撃を防ぐため、ユーザー不存在とパスワード不一致は同じ型で返します。
// AttemptsRemainingが負の場合、残り回数は開示しません。
type InvalidCredentialsError struct {
	AttemptsRemaining int
}

func (e *InvalidCredentialsError) Error() string {
	if e.AttemptsRemaining < 0 {
		return "invalid credentials"
	}
	if e.AttemptsRemaining == 1 {
		return "invalid credentials. 1 attempt remaining"
	}
	return fmt.Sprintf("invalid credentials. %d attempts remaining", e.AttemptsRemaining)
}
