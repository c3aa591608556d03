package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// Caller tiers driving the rate-limit thresholds. Anonymous is implicit:
// it is never stored, only assigned to callers without a key.
const (
	TierAnonymous     = "anonymous"
	TierAuthenticated = "authenticated"
	TierPremium       = "premium"
)

// ApiKey holds the persisted form of an API key. Only the HMAC-SHA256
// digest of the raw key is ever stored; the raw key is shown once at
// creation time.
type ApiKey struct {
	ID         int64     `json:"id"`
	KeyHash    string    `json:"-"`
	Name       string    `json:"name"`
	Tier       string    `json:"tier"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt null.Time `json:"last_used_at"`
}

type CreateKeyDTO struct {
	Name string `json:"name" binding:"required,max=100"`
	Tier string `json:"tier"`
}

type CreateKeyResponse struct {
	ApiKey
	RawKey string `json:"raw_key"`
}
