// Package codegen generates short random codes for single-use coupons.
package codegen

import (
	"crypto/rand"
	"fmt"
)

// Alphabet is uppercase letters and digits, matching the printed-coupon format.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultLength is the standard discount code length.
const DefaultLength = 8

// Generator produces random codes. The zero value is not usable; use New.
type Generator struct {
	alphabet string
	length   int
}

// New creates a generator with the default alphabet and length.
func New() *Generator {
	return &Generator{alphabet: Alphabet, length: DefaultLength}
}

// WithLength overrides the code length (minimum 4).
func (g *Generator) WithLength(n int) *Generator {
	if n < 4 {
		n = 4
	}
	return &Generator{alphabet: g.alphabet, length: n}
}

// Code returns a new random code.
// Uses crypto/rand; modulo bias is avoided by rejection sampling.
func (g *Generator) Code() (string, error) {
	out := make([]byte, g.length)
	// Largest multiple of len(alphabet) below 256.
	limit := byte(256 / len(g.alphabet) * len(g.alphabet))

	buf := make([]byte, g.length*2)
	filled := 0
	for filled < g.length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out[filled] = g.alphabet[int(b)%len(g.alphabet)]
			filled++
			if filled == g.length {
				break
			}
		}
	}
	return string(out), nil
}

// MustCode returns a new code, panicking on entropy failure.
// Entropy exhaustion is not a recoverable condition for callers.
func (g *Generator) MustCode() string {
	code, err := g.Code()
	if err != nil {
		panic(err)
	}
	return code
}

// Valid reports whether s has the expected length and alphabet.
func (g *Generator) Valid(s string) bool {
	if len(s) != g.length {
		return false
	}
	for i := 0; i < len(s); i++ {
		found := false
		for j := 0; j < len(g.alphabet); j++ {
			if s[i] == g.alphabet[j] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
