package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Window is the fixed sliding-window length.
const Window = 60 * time.Second

// Limiter is a sliding-window rate limiter over Redis sorted sets. Each
// request timestamp is a member scored by its Unix time; counting members
// inside the window gives the current request count. The whole
// prune/count/add sequence runs in one transactional pipeline, so the
// check is race-free across concurrent requests and across processes
// sharing the store.
type Limiter struct {
	rdb *redis.Client
}

func NewLimiter(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

// Check admits or rejects one request for identifier under maxRequests per
// window. It returns (allowed, remaining, resetAt). resetAt is always
// now+window: an upper bound on when capacity frees up, not the exact
// expiry of the oldest entry. A store error is returned so callers can
// fail open.
func (l *Limiter) Check(ctx context.Context, identifier string, maxRequests int) (bool, int, int64, error) {
	now := time.Now()
	nowScore := float64(now.UnixNano()) / float64(time.Second)
	key := "ratelimit:" + identifier
	member := strconv.FormatFloat(nowScore, 'f', -1, 64)

	var countCmd *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatFloat(nowScore-Window.Seconds(), 'f', -1, 64))
		countCmd = pipe.ZCard(ctx, key)
		pipe.ZAdd(ctx, key, redis.Z{Score: nowScore, Member: member})
		pipe.Expire(ctx, key, Window+time.Second)
		return nil
	})

	resetAt := now.Unix() + int64(Window.Seconds())
	if err != nil {
		return false, 0, resetAt, err
	}

	count := int(countCmd.Val())
	if count >= maxRequests {
		// Roll back the speculative add so a rejected request does not
		// consume quota.
		l.rdb.ZRem(ctx, key, member)
		return false, 0, resetAt, nil
	}

	remaining := maxRequests - count - 1
	if remaining < 0 {
		remaining = 0
	}
	return true, remaining, resetAt, nil
}
