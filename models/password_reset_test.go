package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordResetIsValid(t *testing.T) {
	valid := PasswordReset{Used: false, ExpiresAt: time.Now().Add(10 * time.Minute)}
	assert.True(t, valid.IsValid())

	used := PasswordReset{Used: true, ExpiresAt: time.Now().Add(10 * time.Minute)}
	assert.False(t, used.IsValid())

	expired := PasswordReset{Used: false, ExpiresAt: time.Now().Add(-time.Minute)}
	assert.False(t, expired.IsValid())
}

func TestGenerateVerificationCode(t *testing.T) {
	code, err := GenerateVerificationCode()
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, ch := range code {
		assert.GreaterOrEqual(t, ch, '0')
		assert.LessOrEqual(t, ch, '9')
	}
}
