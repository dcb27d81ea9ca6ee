package server

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/hirematch/hirematch-api/internal/store"
)

func TestEmailsByUser(t *testing.T) {
	withEmail := uuid.New()
	withoutEmail := uuid.New()
	email := "candidate@example.com"
	users := []store.User{
		{ID: withEmail, Email: &email},
		{ID: withoutEmail},
	}

	byID := emailsByUser(users)

	assert.Equal(t, map[uuid.UUID]string{withEmail: email}, byID)
	_, ok := byID[withoutEmail]
	assert.False(t, ok, "users without an email stay out of the map")
}
