package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rewards-mini-app-backend/internal/features/raffle/models"
)

func participants(ids ...int64) []models.Participant {
	out := make([]models.Participant, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Participant{UserID: id, JoinedAt: time.Now()})
	}
	return out
}

func TestSameParticipants(t *testing.T) {
	assert.True(t, sameParticipants(nil, nil))
	assert.True(t, sameParticipants(participants(1, 2), participants(1, 2)))

	// Участник, вступивший после снимка, означает неполный набор WATCH-ключей:
	// транзакция обязана начаться заново
	assert.False(t, sameParticipants(participants(1), participants(1, 2)))
	assert.False(t, sameParticipants(participants(1, 2), participants(1, 3)))
	assert.False(t, sameParticipants(participants(1, 2), participants(1)))
}
