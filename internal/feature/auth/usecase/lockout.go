package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"auth_backend/internal/feature/auth/domain/entity"
)

// LockoutStatus はアカウントロック判定の結果です。
type LockoutStatus struct {
	IsLocked bool
	// Reason はロック中の場合のみ設定される利用者向けメッセージです。
	Reason string
}

// LockoutPolicy は連続ログイン失敗によるアカウントロックの状態遷移を司ります。
// 状態は {Unlocked, Locked} の2つ。最大失敗回数に達すると Locked へ遷移し、
// ロック期間の経過後は次のステータス確認時に遅延評価で Unlocked へ戻ります。
type LockoutPolicy struct {
	users           UserRepository
	maxAttempts     int
	lockoutDuration time.Duration

	// now はテストで時計を差し替えるためのフックです。
	now func() time.Time
}

// NewLockoutPolicy はLockoutPolicyの新しいインスタンスを生成します。
func NewLockoutPolicy(users UserRepository, maxAttempts int, lockoutDuration time.Duration) *LockoutPolicy {
	return &LockoutPolicy{
		users:           users,
		maxAttempts:     maxAttempts,
		lockoutDuration: lockoutDuration,
		now:             time.Now,
	}
}

// MaxAttempts はロックまでの最大失敗回数を返します。
func (p *LockoutPolicy) MaxAttempts() int {
	return p.maxAttempts
}

// LockoutDuration はロック期間を返します。
func (p *LockoutPolicy) LockoutDuration() time.Duration {
	return p.lockoutDuration
}

// CheckStatus はアカウントが現在ロック中かを判定します。
// ロック期間が経過している場合は副作用としてロック状態を解除・永続化し、
// 未ロックとして返します（自己修復）。
func (p *LockoutPolicy) CheckStatus(ctx context.Context, user *entity.User) (LockoutStatus, error) {
	if !user.IsLocked {
		return LockoutStatus{IsLocked: false}, nil
	}

	unlockAt, ok := user.CanUnlockAt(p.lockoutDuration)
	if !ok {
		// ロックフラグだけ立っていてタイムスタンプがない不整合は解除して自己修復する
		if err := p.unlock(ctx, user); err != nil {
			return LockoutStatus{}, err
		}
		return LockoutStatus{IsLocked: false}, nil
	}

	now := p.now()
	if !now.Before(unlockAt) {
		if err := p.unlock(ctx, user); err != nil {
			return LockoutStatus{}, err
		}
		return LockoutStatus{IsLocked: false}, nil
	}

	minutes := int(math.Ceil(unlockAt.Sub(now).Minutes()))
	reason := fmt.Sprintf("Account is locked. Try again in %d minutes.", minutes)
	if minutes == 1 {
		reason = "Account is locked. Try again in 1 minute."
	}

	return LockoutStatus{IsLocked: true, Reason: reason}, nil
}

// RecordFailure はログイン失敗を1回記録します。
// カウンターの加算はSQLのアトミックインクリメントで行い、同一アカウントへの
// 並行失敗でもロック発動を取りこぼしません。最大回数に達した場合はロックへ
// 遷移し、trueを返します。ロック通知メールの送信は呼び出し側の責務です。
func (p *LockoutPolicy) RecordFailure(ctx context.Context, user *entity.User) (bool, error) {
	attempts, err := p.users.IncrementFailedAttempts(ctx, user.ID)
	if err != nil {
		return false, err
	}
	user.FailedLoginAttempts = attempts

	if attempts < p.maxAttempts {
		return false, nil
	}

	now := p.now()
	user.IsLocked = true
	user.LockedAt = &now
	if err := p.users.Update(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

// RecordSuccess はログイン成功を記録します。
// 失敗カウンターとロック状態を無条件でリセットします。
func (p *LockoutPolicy) RecordSuccess(ctx context.Context, user *entity.User) error {
	return p.unlock(ctx, user)
}

// unlock はロック状態と失敗カウンターをクリアして永続化します。
func (p *LockoutPolicy) unlock(ctx context.Context, user *entity.User) error {
	user.IsLocked = false
	user.LockedAt = nil
	user.FailedLoginAttempts = 0
	return p.users.Update(ctx, user)
}
