package ratelimit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/CCxPL/task-management-system/internal/observability/logger"
)

const (
	loginRate  = 0.2
	loginBurst = 5
)

// LoginLimiter throttles credential attempts per client IP. Without a
// configured redis backend it is a no-op that allows everything.
type LoginLimiter struct {
	bucket *TokenBucket
}

func NewLoginLimiter(bucket *TokenBucket) *LoginLimiter {
	return &LoginLimiter{bucket: bucket}
}

// Allow reports whether a login attempt from ip may proceed, and how long
// to wait when it may not.
func (l *LoginLimiter) Allow(ctx context.Context, ip string) (bool, time.Duration) {
	if l == nil || l.bucket == nil || ip == "" {
		return true, 0
	}

	res, err := l.bucket.Allow(ctx, "ratelimit:login:"+ip, loginRate, loginBurst)
	if err != nil {
		// Redis being down must not lock users out.
		logger.FromContext(ctx).Warn("login rate limiter unavailable", zap.Error(err))
		return true, 0
	}
	return res.Allowed, res.RetryAfter
}
