package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	s := NewStore(1, 20)
	assert.False(t, s.Active(1))

	first := s.Begin(1, "add_panel", 0, nil)
	assert.True(t, s.Active(1))
	assert.False(t, s.Active(2))

	second := s.Begin(1, "add_panel", 0, nil)
	assert.NotEqual(t, first.ConversationID, second.ConversationID)

	got, ok := s.Get(1)
	require.True(t, ok)
	assert.Same(t, second, got)

	assert.True(t, s.End(1))
	assert.False(t, s.End(1))
	assert.False(t, s.Active(1))
}

func TestNavDefaultsToMain(t *testing.T) {
	s := NewStore(1, 20)
	assert.Equal(t, NavMain, s.Nav(5))
	s.SetNav(5, NavShop)
	assert.Equal(t, NavShop, s.Nav(5))
}

func TestSelectionToggleIsInvolution(t *testing.T) {
	sel := NewSelection[uint]()
	assert.True(t, sel.Toggle(3))
	assert.True(t, sel.Toggle(1))
	assert.Equal(t, []uint{3, 1}, sel.Values())

	assert.False(t, sel.Toggle(3))
	assert.Equal(t, []uint{1}, sel.Values())
	assert.True(t, sel.Toggle(3))
	assert.Equal(t, []uint{1, 3}, sel.Values())

	sel.Toggle(7)
	sel.Toggle(7)
	assert.Equal(t, []uint{1, 3}, sel.Values())
	assert.False(t, sel.Contains(7))

	sel.Clear()
	assert.Zero(t, sel.Len())
}

func TestLockSerialisesPerUser(t *testing.T) {
	s := NewStore(1, 20)
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := s.Lock(9)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestAllowBurst(t *testing.T) {
	s := NewStore(0.001, 3)
	assert.True(t, s.Allow(1))
	assert.True(t, s.Allow(1))
	assert.True(t, s.Allow(1))
	assert.False(t, s.Allow(1))
	assert.True(t, s.Allow(2), "limiters are per user")
}
