package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache_SetGet(t *testing.T) {
	c := New(10)

	key := Key("xpath", "//h1/text()")
	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, "compiled")
	v, ok := c.Get(key)
	assert.True(t, ok)
	assert.Equal(t, "compiled", v)
	assert.Equal(t, 1, c.Len())
}

func TestCache_KeyDistinguishesMethod(t *testing.T) {
	// The same expression under different methods must not collide.
	assert.NotEqual(t, Key("xpath", "div.byline"), Key("css", "div.byline"))
	assert.Equal(t, Key("xpath", "//h1"), Key("xpath", "//h1"))
}

func TestCache_EvictsAtCapacity(t *testing.T) {
	c := New(5)
	for i := 0; i < 20; i++ {
		c.Set(Key("xpath", fmt.Sprintf("//p[%d]", i)), i)
	}
	assert.LessOrEqual(t, c.Len(), 5)
}

func TestCache_Overwrite(t *testing.T) {
	c := New(10)
	key := Key("css", "p.para")
	c.Set(key, 1)
	c.Set(key, 2)

	v, _ := c.Get(key)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}
