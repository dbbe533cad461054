package dtos

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfhost/botpanel-backend/pkg/domain/entities"
)

func TestNewDeploymentResponseMasksSecrets(t *testing.T) {
	record := &entities.DeploymentRecord{
		ID:        uuid.New(),
		CatalogID: "wolf-bot",
		Name:      "WOLF-BOT",
		Status:    entities.StatusRunning,
		Config: map[string]string{
			"SESSION_ID":   "abcdef123456",
			"BOT_TOKEN":    "tok",
			"API_KEY":      "longapikeyvalue",
			"PHONE_NUMBER": "+254700000000",
			"PREFIX":       ".",
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	response := NewDeploymentResponse(record)

	assert.Equal(t, "****3456", response.Config["SESSION_ID"])
	assert.Equal(t, "****", response.Config["BOT_TOKEN"])
	assert.Equal(t, "****alue", response.Config["API_KEY"])
	assert.Equal(t, "+254700000000", response.Config["PHONE_NUMBER"])
	assert.Equal(t, ".", response.Config["PREFIX"])

	// Masking is presentation-only.
	assert.Equal(t, "abcdef123456", record.Config["SESSION_ID"])
}

func TestNewDeploymentResponseTimestamps(t *testing.T) {
	created := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	record := &entities.DeploymentRecord{
		ID:        uuid.New(),
		CatalogID: "wolf-bot",
		Status:    entities.StatusQueued,
		CreatedAt: created,
		UpdatedAt: created.Add(time.Minute),
	}

	response := NewDeploymentResponse(record)

	assert.Equal(t, "2025-03-14T09:26:53Z", response.CreatedAt)
	assert.Equal(t, "2025-03-14T09:27:53Z", response.UpdatedAt)
	assert.Equal(t, record.ID.String(), response.ID)
}

func TestNewDeploymentResponses(t *testing.T) {
	records := []*entities.DeploymentRecord{
		{ID: uuid.New(), CatalogID: "wolf-bot", Status: entities.StatusQueued},
		{ID: uuid.New(), CatalogID: "nova-md", Status: entities.StatusFailed},
	}

	responses := NewDeploymentResponses(records)
	require.Len(t, responses, 2)
	assert.Equal(t, records[0].ID.String(), responses[0].ID)
	assert.Equal(t, records[1].ID.String(), responses[1].ID)

	assert.Empty(t, NewDeploymentResponses(nil))
}
