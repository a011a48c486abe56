package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeFormat(t *testing.T) {
	g := New()

	for i := 0; i < 100; i++ {
		code, err := g.Code()
		require.NoError(t, err)
		assert.Len(t, code, DefaultLength)
		assert.True(t, g.Valid(code), "unexpected characters in %q", code)
	}
}

func TestCodesAreUnique(t *testing.T) {
	// Not a proof, just a sanity check that we aren't returning constants.
	g := New()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code := g.MustCode()
		assert.False(t, seen[code], "duplicate code %q after %d draws", code, i)
		seen[code] = true
	}
}

func TestWithLength(t *testing.T) {
	g := New().WithLength(12)
	assert.Len(t, g.MustCode(), 12)

	// Below minimum clamps to 4.
	g = New().WithLength(1)
	assert.Len(t, g.MustCode(), 4)
}

func TestValid(t *testing.T) {
	g := New()
	assert.True(t, g.Valid("ABCD1234"))
	assert.False(t, g.Valid("abcd1234")) // lowercase not in alphabet
	assert.False(t, g.Valid("ABC123"))   // wrong length
	assert.False(t, g.Valid("ABCD12_4"))
}
