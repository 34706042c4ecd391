package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashDeterministic(t *testing.T) {
	a := Hash("salt", "203.0.113.7")
	b := Hash("salt", "203.0.113.7")
	assert.Equal(t, a, b)
	assert.Len(t, a, HexLength)
}

func TestHashDistinctInputs(t *testing.T) {
	seen := map[string]string{}
	for _, addr := range []string{"203.0.113.7", "203.0.113.8", "198.51.100.1", "2001:db8::1", "", "localhost"} {
		h := Hash("salt", addr)
		assert.Len(t, h, HexLength)
		prev, dup := seen[h]
		assert.False(t, dup, "collision between %q and %q", prev, addr)
		seen[h] = addr
	}
}

func TestHashSaltChangesOutput(t *testing.T) {
	assert.NotEqual(t, Hash("salt-a", "203.0.113.7"), Hash("salt-b", "203.0.113.7"))
}

func TestHashNeverEchoesInput(t *testing.T) {
	h := Hash("salt", "203.0.113.7")
	assert.NotContains(t, h, "203.0.113.7")
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid(Hash("salt", "203.0.113.7")))
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("203.0.113.7"))
	assert.False(t, IsValid("ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789"[:64]))
	assert.False(t, IsValid(Hash("salt", "x")+"00"))
}
