package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return New(NewClient(mr.Addr()), time.Minute)
}

func TestCache_SetGetJSON(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	c.SetJSON(ctx, MenuCatalogKey, payload{Name: "pancakes", Count: 3})

	var got payload
	require.True(t, c.GetJSON(ctx, MenuCatalogKey, &got))
	assert.Equal(t, "pancakes", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestCache_Miss(t *testing.T) {
	c := newTestCache(t)

	var got payload
	assert.False(t, c.GetJSON(context.Background(), "missing", &got))
}

func TestCache_Invalidate(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	c.SetJSON(ctx, MenuCatalogKey, payload{Name: "x"})
	c.Invalidate(ctx, MenuCatalogKey)

	var got payload
	assert.False(t, c.GetJSON(ctx, MenuCatalogKey, &got))
}

func TestCache_NilSafe(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	assert.NotPanics(t, func() {
		c.SetJSON(ctx, "k", payload{})
		c.Invalidate(ctx, "k")
	})

	var got payload
	assert.False(t, c.GetJSON(ctx, "k", &got))
}
