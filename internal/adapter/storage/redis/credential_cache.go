package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nps-merchant-gateway/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

const credentialKey = "nps:credential"

// cachedCredential mirrors domain.Credential including the sealed columns,
// which the domain type hides from JSON. Only ciphertext is ever cached.
type cachedCredential struct {
	ID              int64     `json:"id"`
	MerchantID      string    `json:"merchant_id"`
	MerchantName    string    `json:"merchant_name"`
	APIUsername     string    `json:"api_username"`
	APIPasswordEnc  string    `json:"api_password_enc"`
	SharedSecretEnc string    `json:"shared_secret_enc"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CredentialCache implements ports.CredentialCache with a single Redis key.
type CredentialCache struct {
	client *goredis.Client
	key    string
}

// NewCredentialCache creates a Redis-backed credential cache.
func NewCredentialCache(client *goredis.Client) *CredentialCache {
	return &CredentialCache{client: client, key: credentialKey}
}

// Get returns the cached credential, or nil, nil on a miss.
func (c *CredentialCache) Get(ctx context.Context) (*domain.Credential, error) {
	val, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis credential get: %w", err)
	}

	var cc cachedCredential
	if err := json.Unmarshal(val, &cc); err != nil {
		return nil, fmt.Errorf("redis credential decode: %w", err)
	}
	return &domain.Credential{
		ID:              cc.ID,
		MerchantID:      cc.MerchantID,
		MerchantName:    cc.MerchantName,
		APIUsername:     cc.APIUsername,
		APIPasswordEnc:  cc.APIPasswordEnc,
		SharedSecretEnc: cc.SharedSecretEnc,
		CreatedAt:       cc.CreatedAt,
		UpdatedAt:       cc.UpdatedAt,
	}, nil
}

// Set stores cred with ttl.
func (c *CredentialCache) Set(ctx context.Context, cred *domain.Credential, ttl time.Duration) error {
	b, err := json.Marshal(cachedCredential{
		ID:              cred.ID,
		MerchantID:      cred.MerchantID,
		MerchantName:    cred.MerchantName,
		APIUsername:     cred.APIUsername,
		APIPasswordEnc:  cred.APIPasswordEnc,
		SharedSecretEnc: cred.SharedSecretEnc,
		CreatedAt:       cred.CreatedAt,
		UpdatedAt:       cred.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("redis credential encode: %w", err)
	}
	if err := c.client.Set(ctx, c.key, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis credential set: %w", err)
	}
	return nil
}

// Invalidate drops the cached entry. Deleting a missing key is not an error.
func (c *CredentialCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("redis credential invalidate: %w", err)
	}
	return nil
}
