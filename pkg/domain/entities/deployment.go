package entities

import (
	"time"

	"github.com/google/uuid"
)

// LogEntry is one line of deployment output or orchestrator commentary.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
}

// MetricsSnapshot is a best-effort view of the running bot's resource usage.
type MetricsSnapshot struct {
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryMB      float64 `json:"memoryMb"`
	UptimeSeconds int64   `json:"uptimeSeconds"`
	RequestCount  int64   `json:"requestCount"`
}

// BackendHandle identifies the live resource backing a deployment. Exactly
// one of the backend-specific fields is meaningful, discriminated by Kind.
// A record only carries a handle while its status is Deploying or Running.
type BackendHandle struct {
	Kind BackendKind `json:"kind"`

	// Local process backend.
	PID int `json:"pid,omitempty"`

	// Remote panel backend.
	ServerID   int    `json:"serverId,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	PanelURL   string `json:"panelUrl,omitempty"`
}

// DeploymentRecord is the authoritative state of one bot deployment.
type DeploymentRecord struct {
	ID        uuid.UUID         `json:"id"`
	CatalogID string            `json:"catalogId"`
	Name      string            `json:"name"`
	UserID    string            `json:"userId,omitempty"`
	Status    DeploymentStatus  `json:"status"`
	Config    map[string]string `json:"config"`
	Logs      []LogEntry        `json:"logs"`
	Handle    *BackendHandle    `json:"handle,omitempty"`
	Metrics   MetricsSnapshot   `json:"metrics"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Clone returns a copy that shares no mutable state with the original, so
// pollers can hold on to it while the pipeline keeps appending.
func (r *DeploymentRecord) Clone() *DeploymentRecord {
	out := *r
	out.Logs = make([]LogEntry, len(r.Logs))
	copy(out.Logs, r.Logs)
	out.Config = make(map[string]string, len(r.Config))
	for k, v := range r.Config {
		out.Config[k] = v
	}
	if r.Handle != nil {
		handle := *r.Handle
		out.Handle = &handle
	}
	return &out
}
