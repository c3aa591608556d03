package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MK023/TorinoParking/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownKey(t *testing.T) {
	digest := HashAPIKey("salt", "tp_known")
	repo := &fakeKeyRepo{digests: map[string]string{digest: domain.TierPremium}}
	c := NewApiKeyCache(repo, "salt", time.Hour, zerolog.Nop())

	tier, ok := c.Lookup(context.Background(), "tp_known")
	require.True(t, ok)
	assert.Equal(t, domain.TierPremium, tier)

	// Successful lookups record usage.
	assert.Equal(t, []string{digest}, repo.touched)
}

func TestLookupUnknownKey(t *testing.T) {
	repo := &fakeKeyRepo{digests: map[string]string{}}
	c := NewApiKeyCache(repo, "salt", time.Hour, zerolog.Nop())

	_, ok := c.Lookup(context.Background(), "tp_unknown")
	assert.False(t, ok)
	assert.Empty(t, repo.touched)
}

func TestLookupRefreshesOnlyWhenStale(t *testing.T) {
	digest := HashAPIKey("salt", "tp_known")
	repo := &fakeKeyRepo{digests: map[string]string{digest: domain.TierAuthenticated}}
	c := NewApiKeyCache(repo, "salt", time.Hour, zerolog.Nop())

	for i := 0; i < 5; i++ {
		_, ok := c.Lookup(context.Background(), "tp_known")
		require.True(t, ok)
	}
	assert.Equal(t, 1, repo.findCalls)
}

func TestLookupKeepsStaleMappingOnRefreshError(t *testing.T) {
	digest := HashAPIKey("salt", "tp_known")
	repo := &fakeKeyRepo{digests: map[string]string{digest: domain.TierAuthenticated}}
	// Zero TTL forces a refresh attempt on every lookup.
	c := NewApiKeyCache(repo, "salt", 0, zerolog.Nop())

	_, ok := c.Lookup(context.Background(), "tp_known")
	require.True(t, ok)

	repo.digestsErr = errors.New("connection refused")
	tier, ok := c.Lookup(context.Background(), "tp_known")
	require.True(t, ok)
	assert.Equal(t, domain.TierAuthenticated, tier)
}

func TestRefreshReplacesDigests(t *testing.T) {
	oldDigest := HashAPIKey("salt", "tp_old")
	repo := &fakeKeyRepo{digests: map[string]string{oldDigest: domain.TierAuthenticated}}
	c := NewApiKeyCache(repo, "salt", time.Hour, zerolog.Nop())

	require.NoError(t, c.Refresh(context.Background()))

	// Revocation drops the digest on the next refresh.
	repo.digests = map[string]string{}
	require.NoError(t, c.Refresh(context.Background()))
	_, ok := c.Lookup(context.Background(), "tp_old")
	assert.False(t, ok)
}
