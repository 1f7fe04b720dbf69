package cache_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanketexe/legal-chatbot/internal/cache"
	"github.com/sanketexe/legal-chatbot/internal/domain"
)

func cases(id string) []domain.RelevantCase {
	return []domain.RelevantCase{{ID: id, Title: "Case " + id, Relevance: 0.8}}
}

func TestQueryCache(t *testing.T) {
	t.Run("should miss on an unknown key", func(t *testing.T) {
		c := cache.NewQueryCache(10)

		_, ok := c.Get("divorce grounds", 5)

		require.False(t, ok)
		require.Zero(t, c.Len())
	})

	t.Run("should return what was put", func(t *testing.T) {
		c := cache.NewQueryCache(10)
		c.Put("divorce grounds", 5, cases("a"))

		got, ok := c.Get("divorce grounds", 5)

		require.True(t, ok)
		require.Equal(t, cases("a"), got)
		require.Equal(t, 1, c.Len())
	})

	t.Run("should key entries by query and topK", func(t *testing.T) {
		c := cache.NewQueryCache(10)
		c.Put("divorce grounds", 5, cases("a"))

		_, ok := c.Get("divorce grounds", 3)
		require.False(t, ok)

		_, ok = c.Get("divorce settlement", 5)
		require.False(t, ok)
	})

	t.Run("should overwrite an existing key", func(t *testing.T) {
		c := cache.NewQueryCache(10)
		c.Put("divorce grounds", 5, cases("a"))
		c.Put("divorce grounds", 5, cases("b"))

		got, ok := c.Get("divorce grounds", 5)

		require.True(t, ok)
		require.Equal(t, cases("b"), got)
		require.Equal(t, 1, c.Len())
	})

	t.Run("should evict the oldest entry at capacity", func(t *testing.T) {
		c := cache.NewQueryCache(3)
		for i := 0; i < 4; i++ {
			c.Put(fmt.Sprintf("query %d", i), 5, cases(fmt.Sprintf("%d", i)))
		}

		require.Equal(t, 3, c.Len())

		_, ok := c.Get("query 0", 5)
		require.False(t, ok)

		_, ok = c.Get("query 3", 5)
		require.True(t, ok)
	})

	t.Run("should refresh recency on get", func(t *testing.T) {
		c := cache.NewQueryCache(2)
		c.Put("first", 5, cases("1"))
		c.Put("second", 5, cases("2"))

		// Touch "first" so "second" becomes the eviction candidate.
		_, ok := c.Get("first", 5)
		require.True(t, ok)

		c.Put("third", 5, cases("3"))

		_, ok = c.Get("first", 5)
		require.True(t, ok)

		_, ok = c.Get("second", 5)
		require.False(t, ok)
	})

	t.Run("should fall back to the default capacity", func(t *testing.T) {
		c := cache.NewQueryCache(0)

		for i := 0; i < 101; i++ {
			c.Put(fmt.Sprintf("query %d", i), 5, cases(fmt.Sprintf("%d", i)))
		}

		require.Equal(t, 100, c.Len())
	})
}
