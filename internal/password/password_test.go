package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	h := New(WithCost(4))

	digest, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "$2"))

	assert.True(t, h.Compare("secret123", digest))
	assert.False(t, h.Compare("wrongpassword", digest))
}

func TestHash_DistinctDigests(t *testing.T) {
	h := New(WithCost(4))

	first, err := h.Hash("secret123")
	require.NoError(t, err)
	second, err := h.Hash("secret123")
	require.NoError(t, err)

	// Salted hashing must never produce the same digest twice
	assert.NotEqual(t, first, second)
	assert.True(t, h.Compare("secret123", first))
	assert.True(t, h.Compare("secret123", second))
}

func TestCompare_MalformedDigest(t *testing.T) {
	h := New()

	assert.False(t, h.Compare("secret123", "not-a-bcrypt-digest"))
	assert.False(t, h.Compare("secret123", ""))
}

func TestHash_InvalidCost(t *testing.T) {
	h := New(WithCost(99))

	_, err := h.Hash("secret123")
	assert.Error(t, err)
}
