package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationCode(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	for range 50 {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Flatwhite9")
	require.NoError(t, err)

	assert.NotEqual(t, "Flatwhite9", hash)
	assert.True(t, CheckPassword(hash, "Flatwhite9"))
	assert.False(t, CheckPassword(hash, "flatwhite9"))
	assert.False(t, CheckPassword("not-a-hash", "Flatwhite9"))
}
