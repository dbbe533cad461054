package dtos

import (
	"regexp"
	"time"

	"github.com/wolfhost/botpanel-backend/pkg/domain/entities"
)

// CreateDeploymentRequest is the API payload for deploying a catalog entry.
type CreateDeploymentRequest struct {
	CatalogID string            `json:"catalogId" binding:"required"`
	Name      string            `json:"name"`
	UserID    string            `json:"userId"`
	Config    map[string]string `json:"config"`
}

// DeploymentResponse is the polling view of a record. Config values whose
// keys look like secrets are masked at presentation time; storage keeps
// them verbatim.
type DeploymentResponse struct {
	ID        string                    `json:"id"`
	CatalogID string                    `json:"catalogId"`
	Name      string                    `json:"name"`
	UserID    string                    `json:"userId,omitempty"`
	Status    entities.DeploymentStatus `json:"status"`
	Config    map[string]string         `json:"config"`
	Logs      []entities.LogEntry       `json:"logs"`
	Handle    *entities.BackendHandle   `json:"handle,omitempty"`
	Metrics   entities.MetricsSnapshot  `json:"metrics"`
	CreatedAt string                    `json:"createdAt"`
	UpdatedAt string                    `json:"updatedAt"`
}

var secretKeyPattern = regexp.MustCompile(`(?i)(key|token|secret|password|session)`)

func maskValue(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}

// NewDeploymentResponse builds the presentation view of a record.
func NewDeploymentResponse(record *entities.DeploymentRecord) *DeploymentResponse {
	config := make(map[string]string, len(record.Config))
	for k, v := range record.Config {
		if secretKeyPattern.MatchString(k) {
			config[k] = maskValue(v)
		} else {
			config[k] = v
		}
	}
	return &DeploymentResponse{
		ID:        record.ID.String(),
		CatalogID: record.CatalogID,
		Name:      record.Name,
		UserID:    record.UserID,
		Status:    record.Status,
		Config:    config,
		Logs:      record.Logs,
		Handle:    record.Handle,
		Metrics:   record.Metrics,
		CreatedAt: record.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: record.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// NewDeploymentResponses maps a record list for the list endpoint.
func NewDeploymentResponses(records []*entities.DeploymentRecord) []*DeploymentResponse {
	out := make([]*DeploymentResponse, 0, len(records))
	for _, record := range records {
		out = append(out, NewDeploymentResponse(record))
	}
	return out
}
