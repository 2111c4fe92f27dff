package redis

import (
	"context"
	"testing"
	"time"

	"nps-merchant-gateway/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestCredentialCache_Miss(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewCredentialCache(client)

	got, err := cache.Get(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestCredentialCache_SetGet(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewCredentialCache(client)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	cred := &domain.Credential{
		ID:              1,
		MerchantID:      "M1",
		MerchantName:    "Acme",
		APIUsername:     "acme_api",
		APIPasswordEnc:  "aa11",
		SharedSecretEnc: "bb22",
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	require.NoError(t, cache.Set(ctx, cred, 5*time.Minute))
	assert.Equal(t, 5*time.Minute, mr.TTL("nps:credential"))

	got, err := cache.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "bb22", got.SharedSecretEnc, "sealed columns survive the round trip")
	assert.Equal(t, "aa11", got.APIPasswordEnc)
	assert.True(t, now.Equal(got.CreatedAt))

	raw, err := mr.Get("nps:credential")
	require.NoError(t, err)
	assert.NotContains(t, raw, "s3cr3t")
}

func TestCredentialCache_Expiry(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewCredentialCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &domain.Credential{ID: 1}, time.Minute))
	mr.FastForward(2 * time.Minute)

	got, err := cache.Get(ctx)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestCredentialCache_Invalidate(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewCredentialCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &domain.Credential{ID: 1}, time.Minute))
	require.NoError(t, cache.Invalidate(ctx))
	assert.False(t, mr.Exists("nps:credential"))

	assert.NoError(t, cache.Invalidate(ctx), "invalidating an empty cache is fine")
}

func TestCredentialCache_CorruptEntry(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewCredentialCache(client)

	require.NoError(t, mr.Set("nps:credential", "{not json"))

	_, err := cache.Get(context.Background())
	assert.ErrorContains(t, err, "decode")
}

func TestCredentialCache_Unavailable(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewCredentialCache(client)
	mr.Close()

	_, err := cache.Get(context.Background())
	assert.Error(t, err)
}
