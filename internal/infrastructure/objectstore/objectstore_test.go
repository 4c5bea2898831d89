package objectstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestStore(ttl time.Duration) (*ObjectStore[int], *clock) {
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := New[int](nil, ttl)
	s.now = c.now
	return s, c
}

func TestObjectStore_PutGetDeleteKeepsOrder(t *testing.T) {
	s, _ := newTestStore(0)

	s.Put("b", 2)
	s.Put("a", 1)
	s.Put("c", 3)
	s.Put("b", 20)

	keys, vals := s.List()
	assert.Equal(t, []string{"b", "a", "c"}, keys)
	assert.Equal(t, []int{20, 1, 3}, vals)

	require.True(t, s.Delete("a"))
	assert.False(t, s.Delete("a"))

	keys, _ = s.List()
	assert.Equal(t, []string{"b", "c"}, keys)

	v, ok := s.Get("c")
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, s.Len())
}

func TestObjectStore_IdleExpiry(t *testing.T) {
	s, c := newTestStore(time.Minute)

	s.Put("a", 1)
	s.Put("b", 2)

	c.t = c.t.Add(45 * time.Second)
	require.True(t, s.Touch("b"))

	c.t = c.t.Add(30 * time.Second)
	_, ok := s.Get("a")
	assert.False(t, ok, "a idle for 75s")
	_, ok = s.Get("b")
	assert.True(t, ok, "b touched 30s ago")
	assert.False(t, s.Touch("a"))

	assert.Equal(t, []string{"a"}, s.Sweep())
	assert.Equal(t, 1, s.Len())
}

func TestObjectStore_NoExpiryWithoutTTL(t *testing.T) {
	s, c := newTestStore(0)
	s.Put("a", 1)
	c.t = c.t.Add(24 * time.Hour)

	_, ok := s.Get("a")
	assert.True(t, ok)
	assert.Nil(t, s.Sweep())
}
