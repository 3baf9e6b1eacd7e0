package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{"alice@example.com", "a.b+tag@sub.example.org", "x@localhost"}
	invalid := []string{"", "alice", "alice@", "@example.com", " alice@example.com", "Alice <alice@example.com>"}

	for _, s := range valid {
		assert.True(t, IsValidEmail(s), s)
	}
	for _, s := range invalid {
		assert.False(t, IsValidEmail(s), s)
	}
}

func TestIsValidPassword(t *testing.T) {
	assert.False(t, IsValidPassword(""))
	assert.False(t, IsValidPassword("12345"))
	assert.True(t, IsValidPassword("123456"))
	assert.True(t, IsValidPassword(strings.Repeat("x", MaxPasswordLength)))
	assert.False(t, IsValidPassword(strings.Repeat("x", MaxPasswordLength+1)))
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("3f2504e0-4f89-11d3-9a0c-0305e82c3301"))
	assert.False(t, IsValidUUID(""))
	assert.False(t, IsValidUUID("not-a-uuid"))
	assert.False(t, IsValidUUID("3F2504E0-4F89-11D3-9A0C-0305E82C3301"))
}
