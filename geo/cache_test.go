package geo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGeocoder struct {
	calls atomic.Int32
	addr  string
	err   error
	delay time.Duration
}

func (g *countingGeocoder) ReverseGeocode(context.Context, float64, float64) (string, error) {
	g.calls.Add(1)
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	return g.addr, g.err
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedGeocoderStoresResult(t *testing.T) {
	mr, client := newTestRedis(t)
	upstream := &countingGeocoder{addr: "MG Road, New Delhi"}
	g := NewCachedGeocoder(upstream, client, time.Hour)

	for i := 0; i < 3; i++ {
		addr, err := g.ReverseGeocode(context.Background(), 28.700001, 77.100004)
		require.NoError(t, err)
		assert.Equal(t, "MG Road, New Delhi", addr)
	}
	assert.EqualValues(t, 1, upstream.calls.Load())

	key := g.CacheKey(28.700001, 77.100004)
	assert.Equal(t, "geocode:28.70000,77.10000", key)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestCachedGeocoderSkipsEmptyAndErrors(t *testing.T) {
	mr, client := newTestRedis(t)

	empty := &countingGeocoder{}
	g := NewCachedGeocoder(empty, client, 0)
	addr, err := g.ReverseGeocode(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Empty(t, addr)
	assert.False(t, mr.Exists(g.CacheKey(1, 2)))

	failing := &countingGeocoder{err: errors.New("boom")}
	g = NewCachedGeocoder(failing, client, 0)
	_, err = g.ReverseGeocode(context.Background(), 3, 4)
	require.Error(t, err)
	assert.False(t, mr.Exists(g.CacheKey(3, 4)))
}

func TestCachedGeocoderSurvivesRedisOutage(t *testing.T) {
	mr, client := newTestRedis(t)
	mr.Close()

	upstream := &countingGeocoder{addr: "Park Street"}
	g := NewCachedGeocoder(upstream, client, 0)

	addr, err := g.ReverseGeocode(context.Background(), 22.55, 88.35)
	require.NoError(t, err)
	assert.Equal(t, "Park Street", addr)
}

func TestCachedGeocoderWithoutRedisDeduplicates(t *testing.T) {
	upstream := &countingGeocoder{addr: "Main St", delay: 100 * time.Millisecond}
	g := NewCachedGeocoder(upstream, nil, 0)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			addr, err := g.ReverseGeocode(context.Background(), 10, 20)
			assert.NoError(t, err)
			assert.Equal(t, "Main St", addr)
		}()
	}
	wg.Wait()

	assert.Less(t, upstream.calls.Load(), int32(5))
}
