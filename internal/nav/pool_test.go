package nav

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birnsj/Project9-V1-sub002/internal/geom"
)

func TestPathPoolReusesAndCaps(t *testing.T) {
	pool := NewPathPool(1, 4)
	a := pool.Get()
	b := pool.Get()
	a = append(a, geom.Vec2{X: 1})
	pool.Put(a)
	pool.Put(b)
	require.Equal(t, 1, pool.Free())

	c := pool.Get()
	assert.Empty(t, c)
	reused, allocated := pool.Counts()
	assert.Equal(t, uint64(1), reused)
	assert.Equal(t, uint64(2), allocated)
}

func TestPathPoolCloneIntoIsIndependent(t *testing.T) {
	pool := NewPathPool(4, 4)
	src := Path{{X: 1}, {X: 2}}
	dst := pool.CloneInto(src)
	dst[0] = geom.Vec2{X: 9}
	assert.Equal(t, geom.Vec2{X: 1}, src[0])
}

func TestPathPoolPutNil(t *testing.T) {
	pool := NewPathPool(4, 4)
	pool.Put(nil)
	assert.Zero(t, pool.Free())
}

func TestPathLast(t *testing.T) {
	_, ok := Path(nil).Last()
	assert.False(t, ok)
	last, ok := Path{{X: 1}, {X: 2}}.Last()
	require.True(t, ok)
	assert.Equal(t, geom.Vec2{X: 2}, last)
}

func TestCacheDisabledWithZeroDuration(t *testing.T) {
	cache := newPathCache(0, time.Second)
	now := time.Unix(0, 0)
	key := newCacheKey(geom.Cell{}, geom.Cell{X: 1})
	cache.store(key, Path{{X: 1}}, nil, now)
	_, ok := cache.lookup(key, now)
	assert.False(t, ok)
	assert.Zero(t, cache.len())
}
