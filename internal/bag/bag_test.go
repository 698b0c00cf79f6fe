package bag

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBag_zeroValue(t *testing.T) {
	var b Bag[string]
	assert.Equal(t, 0, b.Len())
	assert.Nil(t, b.Values())
	_, ok := b.Remove(1)
	assert.False(t, ok)
	assert.Nil(t, b.Clear())
}

func TestBag_putRemove(t *testing.T) {
	var b Bag[string]
	k1 := b.Put(`a`)
	k2 := b.Put(`a`)
	k3 := b.Put(`b`)
	require.NotEqual(t, k1, k2)
	require.NotZero(t, k1)
	require.Equal(t, 3, b.Len())

	v, ok := b.Remove(k2)
	require.True(t, ok)
	require.Equal(t, `a`, v)

	_, ok = b.Remove(k2)
	require.False(t, ok, `second remove should fail`)

	values := b.Values()
	sort.Strings(values)
	assert.Equal(t, []string{`a`, `b`}, values)

	cleared := b.Clear()
	assert.Len(t, cleared, 2)
	assert.Equal(t, 0, b.Len())

	_, ok = b.Remove(k3)
	assert.False(t, ok)

	// keys are never reused
	assert.Greater(t, b.Put(`c`), k3)
}
