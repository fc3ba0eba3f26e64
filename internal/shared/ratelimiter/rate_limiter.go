package ratelimiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter は、モデル呼び出しなどの操作の頻度を制限します。
// interval あたり limit 回までをトークンバケットで許可し、複数のリクエストから同時に呼び出しても安全です。
type RateLimiter struct {
	limit    int           // interval あたりの上限
	interval time.Duration // どの単位で補充するか
	limiter  *rate.Limiter
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// limitが0以下の場合はnilを返し、呼び出し側は制限なしとして扱います。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 || interval <= 0 {
		return nil
	}
	return &RateLimiter{
		limit:    limit,
		interval: interval,
		limiter:  rate.NewLimiter(rate.Every(interval/time.Duration(limit)), limit),
	}
}

// Wait は枠が空くまで待機します。待機中にctxがキャンセルされた場合はエラーを返します。
// nilのレシーバは常に即座に返ります。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}
	return rl.limiter.Wait(ctx)
}

// Limit はinterval あたりの上限を返します。
func (rl *RateLimiter) Limit() int {
	if rl == nil {
		return 0
	}
	return rl.limit
}
