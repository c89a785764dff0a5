package models

import "strings"

// Account is an opaque identity: an investor, a property owner, the
// platform owner or the treasury. Accounts compare case-insensitively.
type Account string

// ParseAccount normalizes a raw identity string.
func ParseAccount(raw string) Account {
	return Account(strings.ToLower(strings.TrimSpace(raw)))
}

// IsZero reports whether the account is the null identity: empty, or a
// 0x-prefixed hex string made only of zeros.
func (a Account) IsZero() bool {
	s := strings.ToLower(strings.TrimSpace(string(a)))
	if s == "" {
		return true
	}
	if !strings.HasPrefix(s, "0x") {
		return false
	}
	return strings.Trim(s[2:], "0") == ""
}

// Equal compares two accounts after normalization.
func (a Account) Equal(b Account) bool {
	return ParseAccount(string(a)) == ParseAccount(string(b))
}

func (a Account) String() string { return string(a) }
