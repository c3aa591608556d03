package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MK023/TorinoParking/internal/domain"
	"github.com/MK023/TorinoParking/internal/repository"
)

type pgApiKeyRepository struct {
	db *sql.DB
}

func NewPgApiKeyRepository(db *sql.DB) repository.ApiKeyRepository {
	return &pgApiKeyRepository{db: db}
}

func (r *pgApiKeyRepository) Create(ctx context.Context, key *domain.ApiKey) (*domain.ApiKey, error) {
	query := `INSERT INTO api_keys (key_hash, name, tier, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, is_active, created_at`
	err := r.db.QueryRowContext(ctx, query, key.KeyHash, key.Name, key.Tier).
		Scan(&key.ID, &key.IsActive, &key.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ApiKeyRepository.Create: %w", err)
	}
	key.CreatedAt = key.CreatedAt.In(time.UTC)
	return key, nil
}

func (r *pgApiKeyRepository) FindActiveDigests(ctx context.Context) (map[string]string, error) {
	query := `SELECT key_hash, tier FROM api_keys WHERE is_active = TRUE`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ApiKeyRepository.FindActiveDigests: %w", err)
	}
	defer rows.Close()

	digests := make(map[string]string)
	for rows.Next() {
		var hash, tier string
		if err := rows.Scan(&hash, &tier); err != nil {
			return nil, fmt.Errorf("ApiKeyRepository.FindActiveDigests (scanning row): %w", err)
		}
		digests[hash] = tier
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ApiKeyRepository.FindActiveDigests (rows error): %w", err)
	}
	return digests, nil
}

func (r *pgApiKeyRepository) FindAll(ctx context.Context) ([]domain.ApiKey, error) {
	query := `SELECT id, key_hash, name, tier, is_active, created_at, last_used_at
		FROM api_keys ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ApiKeyRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var keys []domain.ApiKey
	for rows.Next() {
		var k domain.ApiKey
		if err := rows.Scan(&k.ID, &k.KeyHash, &k.Name, &k.Tier, &k.IsActive, &k.CreatedAt, &k.LastUsedAt); err != nil {
			return nil, fmt.Errorf("ApiKeyRepository.FindAll (scanning row): %w", err)
		}
		k.CreatedAt = k.CreatedAt.In(time.UTC)
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ApiKeyRepository.FindAll (rows error): %w", err)
	}
	return keys, nil
}

func (r *pgApiKeyRepository) Revoke(ctx context.Context, id int64) error {
	query := `UPDATE api_keys SET is_active = FALSE WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ApiKeyRepository.Revoke: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ApiKeyRepository.Revoke (rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgApiKeyRepository) TouchLastUsed(ctx context.Context, digest string) error {
	query := `UPDATE api_keys SET last_used_at = NOW() WHERE key_hash = $1`
	if _, err := r.db.ExecContext(ctx, query, digest); err != nil {
		return fmt.Errorf("ApiKeyRepository.TouchLastUsed: %w", err)
	}
	return nil
}
