package redis_test

import (
	"context"
	"crypto/rand"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/tafel/pkg/adapters/redis"
	"github.com/aretw0/tafel/pkg/domain"
	"github.com/aretw0/tafel/pkg/persistence"
	"github.com/aretw0/tafel/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return mr, backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newMiniredis(t)
	ports.RunSessionStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_SealedContract(t *testing.T) {
	_, client := newMiniredis(t)

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	codec, err := persistence.NewSealedCodec(nil, persistence.EncryptionConfig{ActiveKey: key})
	require.NoError(t, err)

	ports.RunSessionStoreContract(t, redis.NewFromClient(client, redis.WithCodec(codec)))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newMiniredis(t)

	store := redis.NewFromClient(client, redis.WithTTL(30*time.Minute))
	ctx := context.Background()
	clientID := "192.0.2.10"

	session := domain.NewSession(clientID)
	session.Stage = domain.StageWaitingForEmail
	require.NoError(t, store.Save(ctx, clientID, session))

	assert.Equal(t, 30*time.Minute, mr.TTL(redis.DefaultPrefix+clientID))

	mr.FastForward(31 * time.Minute)

	_, err := store.Load(ctx, clientID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newMiniredis(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	clientID := "my-client"

	require.NoError(t, store.Save(ctx, clientID, domain.NewSession(clientID)))

	assert.True(t, mr.Exists("custom:app:my-client"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	raw, err := mr.Get("custom:app:my-client")
	require.NoError(t, err)
	assert.True(t, strings.Contains(raw, `"stage":"initial"`))

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, clientID)
}

func TestRedisStore_Ping(t *testing.T) {
	mr, client := newMiniredis(t)
	store := redis.NewFromClient(client)

	assert.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
