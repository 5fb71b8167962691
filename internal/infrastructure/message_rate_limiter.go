package infrastructure

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MessageRateLimiter is a token bucket per sender key
// ("telegram:42", "whatsapp:9198...").
type MessageRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*senderLimiter
	rate     rate.Limit
	burst    int
	idleTTL  time.Duration
}

type senderLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMessageRateLimiter allows perSecond messages per sender with the
// given burst. Run must be started to evict idle senders.
func NewMessageRateLimiter(perSecond float64, burst int) *MessageRateLimiter {
	return &MessageRateLimiter{
		limiters: make(map[string]*senderLimiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		idleTTL:  10 * time.Minute,
	}
}

// Allow consumes one token for sender.
func (rl *MessageRateLimiter) Allow(sender string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[sender]
	if !ok {
		entry = &senderLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[sender] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// Run evicts idle senders until ctx is done.
func (rl *MessageRateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(rl.idleTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.evictIdle(now)
		}
	}
}

func (rl *MessageRateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for sender, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > rl.idleTTL {
			delete(rl.limiters, sender)
		}
	}
}

// ActiveSenders is the number of tracked sender buckets.
func (rl *MessageRateLimiter) ActiveSenders() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}
