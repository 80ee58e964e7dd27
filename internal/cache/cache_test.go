package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"findata/internal/model"
)

func resolved(symbol string) model.ResolvedSeries {
	return model.ResolvedSeries{
		Symbol:     symbol,
		Provenance: model.ProvenanceFreeAPI,
		Bars:       []model.PriceBar{{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 10}},
	}
}

func TestKey(t *testing.T) {
	require.Equal(t, "findata:series:TCS:30", Key("TCS", 30))
}

func TestMemory_TTL(t *testing.T) {
	now := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	c := NewMemory(time.Minute, 0)
	c.Now = func() time.Time { return now }
	ctx := context.Background()

	_, ok := c.Get(ctx, "a")
	require.False(t, ok)

	c.Set(ctx, "a", resolved("A"))
	got, ok := c.Get(ctx, "a")
	require.True(t, ok)
	require.Equal(t, resolved("A"), got)

	now = now.Add(time.Minute)
	_, ok = c.Get(ctx, "a")
	require.False(t, ok, "expired at TTL")
}

func TestMemory_MaxItems(t *testing.T) {
	c := NewMemory(time.Hour, 2)
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c", "d"} {
		c.Set(ctx, k, resolved(k))
	}
	require.Equal(t, 2, c.Len())
	_, ok := c.Get(ctx, "d")
	require.True(t, ok, "newest entry survives eviction")
}

func TestMemory_ZeroTTLDisables(t *testing.T) {
	c := NewMemory(0, 0)
	c.Set(context.Background(), "a", resolved("A"))
	require.Equal(t, 0, c.Len())
}

func TestRedis_UnreachableIsMiss(t *testing.T) {
	r := NewRedis("127.0.0.1:1", time.Minute)
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	r.Set(ctx, "a", resolved("A"))
	_, ok := r.Get(ctx, "a")
	require.False(t, ok)
}
