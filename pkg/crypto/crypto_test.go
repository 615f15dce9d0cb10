package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInviteCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		code, err := GenerateInviteCode()
		require.NoError(t, err)
		assert.Len(t, code, 22)

		raw, err := base64.RawURLEncoding.DecodeString(code)
		require.NoError(t, err)
		assert.Len(t, raw, InviteCodeBytes)

		_, dup := seen[code]
		assert.False(t, dup, "duplicate code %q", code)
		seen[code] = struct{}{}
	}
}

func TestCodePrefix(t *testing.T) {
	assert.Equal(t, "***", CodePrefix("abc"))
	assert.Equal(t, "abcdef...", CodePrefix("abcdefghijkl"))
}
