package template

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nestly/internal/agreement"
	id "nestly/pkg/domain"
	"nestly/pkg/platform/sentinel"
)

type countingStore struct {
	inner agreement.TemplateStore
	gets  int
}

func (c *countingStore) FindByID(ctx context.Context, templateID id.TemplateID) (*agreement.Template, error) {
	c.gets++
	return c.inner.FindByID(ctx, templateID)
}

func (c *countingStore) FindDefault(ctx context.Context) (*agreement.Template, error) {
	c.gets++
	return c.inner.FindDefault(ctx)
}

func newCachedFixture(t *testing.T) (*CachedStore, *countingStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mem := NewMemory()
	require.NoError(t, Seed(context.Background(), mem))
	counting := &countingStore{inner: mem}
	return NewCached(counting, client, time.Minute, nil), counting, mr
}

func TestCachedStore_ReadThrough(t *testing.T) {
	cached, counting, _ := newCachedFixture(t)
	ctx := context.Background()

	first, err := cached.FindDefault(ctx)
	require.NoError(t, err)
	second, err := cached.FindDefault(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, counting.gets, "second read served from cache")
}

func TestCachedStore_TTLExpiry(t *testing.T) {
	cached, counting, mr := newCachedFixture(t)
	ctx := context.Background()

	_, err := cached.FindDefault(ctx)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = cached.FindDefault(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, counting.gets, "expired entry reloads from the inner store")
}

func TestCachedStore_FailsOpenWhenRedisDown(t *testing.T) {
	cached, counting, mr := newCachedFixture(t)
	ctx := context.Background()
	mr.Close()

	tpl, err := cached.FindDefault(ctx)
	require.NoError(t, err)
	assert.NotNil(t, tpl)
	assert.Equal(t, 1, counting.gets)
}

func TestCachedStore_CorruptEntryReloads(t *testing.T) {
	cached, counting, mr := newCachedFixture(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(cacheKeyDefault, "not json"))
	tpl, err := cached.FindDefault(ctx)
	require.NoError(t, err)
	assert.NotNil(t, tpl)
	assert.Equal(t, 1, counting.gets)
}

func TestCachedStore_MissPropagatesNotFound(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cached := NewCached(NewMemory(), client, time.Minute, nil)
	_, err := cached.FindDefault(context.Background())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
