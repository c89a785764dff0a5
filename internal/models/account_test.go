package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccount_IsZero(t *testing.T) {
	tests := []struct {
		account Account
		want    bool
	}{
		{"", true},
		{"   ", true},
		{"0x", true},
		{"0x0", true},
		{"0x0000000000000000000000000000000000000000", true},
		{"0X0000", true},
		{"0x01", false},
		{"0xabc", false},
		{"alice", false},
		{"000", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.account.IsZero(), "account %q", tt.account)
	}
}

func TestAccount_Equal(t *testing.T) {
	assert.True(t, Account("0xABC").Equal("0xabc"))
	assert.True(t, Account(" 0xabc ").Equal("0xABC"))
	assert.False(t, Account("0xabc").Equal("0xabd"))
	assert.Equal(t, Account("0xabc"), ParseAccount(" 0xABC"))
}

func TestParseStatus(t *testing.T) {
	for _, s := range []Status{StatusOpen, StatusFunded, StatusExpired, StatusCancelled} {
		got, err := ParseStatus(string(s))
		assert.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseStatus("pending")
	assert.Error(t, err)

	assert.False(t, StatusOpen.IsTerminal())
	assert.True(t, StatusFunded.IsTerminal())
	assert.True(t, StatusExpired.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestProperty_Derived(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	deadline := now.Add(time.Hour)
	p := Property{TotalTokens: 1000, TokensSold: 10, Deadline: &deadline}

	assert.Equal(t, int64(990), p.TokensAvailable())
	assert.False(t, p.DeadlineElapsed(now))
	assert.True(t, p.DeadlineElapsed(deadline))
	assert.False(t, Property{}.DeadlineElapsed(now))

	clone := p.Clone()
	*clone.Deadline = now
	assert.Equal(t, now.Add(time.Hour), *p.Deadline)
}

func TestInvestment_SignedTokens(t *testing.T) {
	assert.Equal(t, int64(5), Investment{Kind: KindInvestment, Tokens: 5}.SignedTokens())
	assert.Equal(t, int64(-5), Investment{Kind: KindRefund, Tokens: 5}.SignedTokens())
}
