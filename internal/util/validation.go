package util

import (
	"net/mail"
	"regexp"
	"strings"
)

// Password length bounds in bytes. bcrypt refuses input longer than 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func IsValidUUID(s string) bool {
	if s == "" {
		return false
	}
	return uuidRegex.MatchString(s)
}

// IsValidEmail accepts a bare address with a dotless or dotted domain.
// Display names ("Alice <a@b.c>") are rejected.
func IsValidEmail(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && addr.Name == ""
}

func IsValidPassword(s string) bool {
	return len(s) >= MinPasswordLength && len(s) <= MaxPasswordLength
}
