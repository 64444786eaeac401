package common

import (
	"fmt"
	"testing"

	"tourney/domain/services"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567.5, "1,234,567.50"},
		{20.004, "20"},
		{-1500.25, "-1,500.25"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.amount), "FormatAmount(%v)", tt.amount)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc…", Truncate("abcdef", 4))
	assert.Equal(t, "", Truncate("abcdef", 0))
}

func TestUserMessage(t *testing.T) {
	msg, expected := UserMessage(fmt.Errorf("failed to register: %w", services.ErrTournamentFull))
	assert.True(t, expected)
	assert.Equal(t, "Tournament is full", msg)

	msg, expected = UserMessage(NewInvalidInput("Amount must be positive"))
	assert.True(t, expected)
	assert.Equal(t, "Amount must be positive", msg)

	msg, expected = UserMessage(fmt.Errorf("failed to commit transaction: connection reset"))
	assert.False(t, expected)
	assert.Equal(t, genericErrorMessage, msg)
}
