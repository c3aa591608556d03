package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/MK023/TorinoParking/internal/domain"
	"github.com/MK023/TorinoParking/internal/repository"
)

// HashAPIKey derives the hex HMAC-SHA256 digest of a raw key under the
// application salt. Only this digest is ever persisted.
func HashAPIKey(salt, rawKey string) string {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(rawKey))
	return hex.EncodeToString(mac.Sum(nil))
}

func generateRawKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating key material: %w", err)
	}
	return "tp_" + base64.RawURLEncoding.EncodeToString(buf), nil
}

type ApiKeyService struct {
	repo repository.ApiKeyRepository
	salt string
}

func NewApiKeyService(repo repository.ApiKeyRepository, salt string) *ApiKeyService {
	return &ApiKeyService{repo: repo, salt: salt}
}

// Create mints a new key. The raw key is returned exactly once and never
// stored; the repository only sees its digest.
func (s *ApiKeyService) Create(ctx context.Context, name, tier string) (string, *domain.ApiKey, error) {
	rawKey, err := generateRawKey()
	if err != nil {
		return "", nil, err
	}
	key := &domain.ApiKey{
		KeyHash: HashAPIKey(s.salt, rawKey),
		Name:    name,
		Tier:    tier,
	}
	created, err := s.repo.Create(ctx, key)
	if err != nil {
		return "", nil, err
	}
	return rawKey, created, nil
}

func (s *ApiKeyService) List(ctx context.Context) ([]domain.ApiKey, error) {
	return s.repo.FindAll(ctx)
}

func (s *ApiKeyService) Revoke(ctx context.Context, id int64) error {
	return s.repo.Revoke(ctx, id)
}
