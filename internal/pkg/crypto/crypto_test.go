package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgErrors "bugtrack/pkg/errors"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Secret123")
	require.NoError(t, err)
	require.NotEqual(t, "Secret123", hash)

	assert.True(t, CheckPassword("Secret123", hash))
	assert.False(t, CheckPassword("Secret124", hash))
	assert.False(t, CheckPassword("", hash))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		confirm  string
		wantMsg  string
	}{
		{"合法密码", "Secret123", "Secret123", ""},
		{"长度不足", "Ab1", "Ab1", "Password must contain at least 8 characters."},
		{"缺少数字", "Secretabc", "Secretabc", "Password must contain at least 1 digit and 1 uppercase character."},
		{"缺少大写", "secret123", "secret123", "Password must contain at least 1 digit and 1 uppercase character."},
		{"两次不一致", "Secret123", "Secret124", "Passwords do not match."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, tt.confirm)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr, ok := err.(*pkgErrors.AppError)
			require.True(t, ok)
			assert.Equal(t, pkgErrors.CodeValidationError, appErr.Code)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}
