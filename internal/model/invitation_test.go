package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvitation_EmailMatches(t *testing.T) {
	inv := &Invitation{Email: "A@B.com"}
	assert.True(t, inv.EmailMatches("a@b.com"))
	assert.True(t, inv.EmailMatches(" A@B.COM "))
	assert.False(t, inv.EmailMatches("a@c.com"))
}

func TestInvitation_ExpiredAt(t *testing.T) {
	exp := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	inv := &Invitation{ExpiresAt: &exp}
	assert.False(t, inv.ExpiredAt(exp))
	assert.True(t, inv.ExpiredAt(exp.Add(time.Nanosecond)))
}

func TestInvitation_JSONUsesISOTimestamps(t *testing.T) {
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	exp := created.Add(48 * time.Hour)
	inv := Invitation{
		ID:        uuid.MustParse("1b4e28ba-2fa1-11d2-883f-0016d3cca427"),
		Email:     "admin@example.com",
		Code:      "abc",
		CreatedAt: created,
		ExpiresAt: &exp,
		Version:   3,
	}

	raw, err := json.Marshal(inv)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "2026-05-01T12:00:00Z", out["created_at"])
	assert.Equal(t, "2026-05-03T12:00:00Z", out["expires_at"])
	assert.Equal(t, false, out["used"])
	assert.NotContains(t, out, "version")
	assert.NotContains(t, out, "Version")
}
