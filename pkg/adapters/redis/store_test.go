package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/mbtassist/pkg/adapters/redis"
	"github.com/aretw0/mbtassist/pkg/domain"
	"github.com/aretw0/mbtassist/pkg/ports"
	"github.com/aretw0/mbtassist/pkg/project"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)

	store := redis.NewFromClient(client)
	ports.RunProjectStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	name := "project-ttl"

	err := store.Save(ctx, name, &project.Document{Version: project.CurrentVersion})
	require.NoError(t, err)

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, name)

	// Fast forward miniredis for key expiration.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, name)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	// Index pruning compares against wall clock time.
	time.Sleep(1200 * time.Millisecond)

	names, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	err := store.Save(ctx, "checkout", &project.Document{Version: project.CurrentVersion})
	require.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:checkout"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:apps:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"checkout"}, list)
}

func TestRedisStore_ReservedLookingNames(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"Default Prefix", ""},
		{"Prefix Without Colon", "app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newClient(t)
			store := redis.NewFromClient(client, redis.WithPrefix(tt.prefix))
			ctx := context.Background()

			for _, name := range []string{"login", "index", "s:index"} {
				require.NoError(t, store.Save(ctx, name, &project.Document{Version: project.CurrentVersion, Name: name}))
			}

			list, err := store.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"index", "login", "s:index"}, list)

			doc, err := store.Load(ctx, "index")
			require.NoError(t, err)
			assert.Equal(t, "index", doc.Name)
		})
	}
}

func TestRedisStore_LockerKeysDoNotCollide(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "lock:project:login", &project.Document{Version: project.CurrentVersion}))

	lockCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlock, err := store.Locker().Lock(lockCtx, "project:login", time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("mbt:projects:lock:project:login"))
	require.NoError(t, unlock(ctx))

	_, err = store.Load(ctx, "lock:project:login")
	assert.NoError(t, err)
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)

	require.NoError(t, mr.Set(redis.DefaultPrefix+"broken", "{not json"))

	_, err := store.Load(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrProjectNotFound)
}
