package automaton

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContext_TypedAccess(t *testing.T) {
	c := NewContext()
	c.SetInt("i", 3)
	c.SetLong("l", 1<<40)
	c.SetFloat("f", 1.5)
	c.SetBool("b", true)
	c.SetString("s", "x")
	c.SetObject("o", []int{1})

	assert.Equal(t, 3, c.GetInt("i", 0))
	assert.Equal(t, int64(1<<40), c.GetLong("l", 0))
	assert.Equal(t, float32(1.5), c.GetFloat("f", 0))
	assert.True(t, c.GetBool("b", false))
	assert.Equal(t, "x", c.GetString("s", ""))
	assert.Equal(t, []int{1}, c.GetObject("o", nil))
	assert.Equal(t, []string{"b", "f", "i", "l", "o", "s"}, c.Keys())
	assert.Equal(t, 6, c.Len())
}

func TestContext_Defaults(t *testing.T) {
	c := NewContext()
	c.SetString("n", "not a number")

	assert.Equal(t, 7, c.GetInt("missing", 7))
	assert.Equal(t, 7, c.GetInt("n", 7), "type mismatch falls back to the default")
	assert.Equal(t, int64(0), c.GetLong("n", 0))
	assert.Equal(t, "d", c.GetObject("missing", "d"))
	assert.False(t, c.Has("missing"))
}

func TestContext_Remove(t *testing.T) {
	c := NewContext()
	c.SetInt("a", 1)
	c.Remove("a")
	c.Remove("never")

	assert.False(t, c.Has("a"))
	assert.Zero(t, c.Len())
}

func TestContext_ZeroValue(t *testing.T) {
	var c Context
	c.SetBool("ok", true)
	assert.True(t, c.GetBool("ok", false))
}

func TestContext_Concurrent(t *testing.T) {
	c := NewContext()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			for range 100 {
				c.SetInt("shared", i)
				_ = c.GetInt("shared", 0)
				_ = c.Keys()
			}
		})
	}
	wg.Wait()
	assert.True(t, c.Has("shared"))
}
