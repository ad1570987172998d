package kv

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_GetSet(t *testing.T) {
	s := New[string, int]()

	s.Set("foo", 42)
	val, ok := s.Get("foo")
	assert.True(t, ok)
	assert.Equal(t, 42, val)

	_, ok = s.Get("bar")
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	s := New[string, string]()
	s.Set("key", "value")

	s.Delete("key")

	_, ok := s.Get("key")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStore_Upsert(t *testing.T) {
	s := New[string, int]()

	got := s.Upsert("n", func(old int, exists bool) int {
		assert.False(t, exists)
		return old + 1
	})
	assert.Equal(t, 1, got)

	got = s.Upsert("n", func(old int, exists bool) int {
		assert.True(t, exists)
		return old + 1
	})
	assert.Equal(t, 2, got)
}

func TestStore_KeysSorted(t *testing.T) {
	s := New[string, int]()
	s.Set("c", 3)
	s.Set("a", 1)
	s.Set("b", 2)

	assert.Equal(t, []string{"a", "b", "c"}, s.Keys())
}

func TestStore_Concurrent(t *testing.T) {
	s := New[int, int]()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Set(n, n*2)
			_, _ = s.Get(n)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
}
