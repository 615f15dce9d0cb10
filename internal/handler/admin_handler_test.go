package handler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/model"
)

func TestNewInvitationView_NormalizesTimesToUTC(t *testing.T) {
	zone := time.FixedZone("UTC+5:30", 5*3600+1800)
	created := time.Date(2024, 3, 1, 15, 30, 0, 0, zone)
	expires := created.Add(7 * 24 * time.Hour)

	view := newInvitationView(model.Invitation{
		ID:        uuid.New(),
		Email:     "a@example.com",
		Code:      "code",
		CreatedAt: created,
		ExpiresAt: &expires,
	})

	assert.Equal(t, time.UTC, view.CreatedAt.Location())
	require.NotNil(t, view.ExpiresAt)
	assert.Equal(t, time.UTC, view.ExpiresAt.Location())
	assert.True(t, view.ExpiresAt.Equal(expires))
	// The source record is left untouched.
	assert.Equal(t, zone, expires.Location())

	body, err := json.Marshal(view)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"created_at":"2024-03-01T10:00:00Z"`)
	assert.Contains(t, string(body), `"expires_at":"2024-03-08T10:00:00Z"`)
}

func TestNewInvitationView_NoExpiry(t *testing.T) {
	view := newInvitationView(model.Invitation{ID: uuid.New(), CreatedAt: time.Now()})
	assert.Nil(t, view.ExpiresAt)
}
