package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wolfhost/botpanel-backend/internal/consts"
	"github.com/wolfhost/botpanel-backend/internal/logger"
	"github.com/wolfhost/botpanel-backend/pkg/domain/entities"
)

// PersistenceSink receives best-effort copies of registry mutations. The
// in-memory view stays authoritative; sink failures are logged and ignored.
type PersistenceSink interface {
	SaveDeployment(record *entities.DeploymentRecord) error
	DeleteDeployment(id uuid.UUID) error
}

// Registry is the single source of truth for deployment records. It holds no
// business logic about how a deployment runs; the orchestrator drives all
// status transitions.
type Registry struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*entities.DeploymentRecord
	sink    PersistenceSink
}

func New(sink PersistenceSink) *Registry {
	return &Registry{
		records: make(map[uuid.UUID]*entities.DeploymentRecord),
		sink:    sink,
	}
}

// Create allocates a new queued record with empty logs and zeroed metrics.
func (r *Registry) Create(catalogID, name, userID string, config map[string]string) *entities.DeploymentRecord {
	cfg := make(map[string]string, len(config))
	for k, v := range config {
		cfg[k] = v
	}
	now := time.Now()
	record := &entities.DeploymentRecord{
		ID:        uuid.New(),
		CatalogID: catalogID,
		Name:      name,
		UserID:    userID,
		Status:    entities.StatusQueued,
		Config:    cfg,
		Logs:      make([]entities.LogEntry, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.records[record.ID] = record
	snapshot := record.Clone()
	r.mu.Unlock()

	r.persist(snapshot)
	return snapshot
}

// Restore seeds the registry with previously persisted records, typically at
// startup. Nothing is written back to the sink.
func (r *Registry) Restore(records []*entities.DeploymentRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range records {
		r.records[record.ID] = record.Clone()
	}
}

// Get returns a copy of the record, or false when the id is unknown.
func (r *Registry) Get(id uuid.UUID) (*entities.DeploymentRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return nil, false
	}
	return record.Clone(), true
}

// List returns all records, newest first, ties broken by id.
func (r *Registry) List() []*entities.DeploymentRecord {
	r.mu.RLock()
	out := make([]*entities.DeploymentRecord, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// SetStatus overwrites the record's status. It does not validate transition
// legality; the orchestrator only calls it at legal points. Terminal states
// release the backend handle, keeping the handle invariant mechanical.
func (r *Registry) SetStatus(id uuid.UUID, status entities.DeploymentStatus) (*entities.DeploymentRecord, bool) {
	r.mu.Lock()
	record, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		return nil, false
	}
	if record.Status != status {
		record.Status = status
		if status.Terminal() {
			record.Handle = nil
		}
		r.touch(record)
	}
	snapshot := record.Clone()
	r.mu.Unlock()

	r.persist(snapshot)
	return snapshot, true
}

// AppendLog appends one entry with the current timestamp, evicting from the
// front once the cap is exceeded. Unknown ids are a no-op: logging must
// never fail a deployment.
func (r *Registry) AppendLog(id uuid.UUID, level entities.LogLevel, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return
	}
	record.Logs = append(record.Logs, entities.LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
	})
	if overflow := len(record.Logs) - consts.MaxLogEntries; overflow > 0 {
		record.Logs = record.Logs[overflow:]
	}
	r.touch(record)
}

// SetHandle attaches the live backend resource to the record. Terminal
// records never carry a handle, so attaching to one is refused.
func (r *Registry) SetHandle(id uuid.UUID, handle *entities.BackendHandle) bool {
	r.mu.Lock()
	record, ok := r.records[id]
	if !ok || record.Status.Terminal() {
		r.mu.Unlock()
		return false
	}
	record.Handle = handle
	r.touch(record)
	snapshot := record.Clone()
	r.mu.Unlock()

	r.persist(snapshot)
	return true
}

// UpdateMetrics stores a best-effort metrics snapshot.
func (r *Registry) UpdateMetrics(id uuid.UUID, metrics entities.MetricsSnapshot) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return false
	}
	record.Metrics = metrics
	r.touch(record)
	return true
}

// Delete removes the record and reports whether it existed. The caller is
// responsible for releasing any backend resource first.
func (r *Registry) Delete(id uuid.UUID) bool {
	r.mu.Lock()
	_, ok := r.records[id]
	if ok {
		delete(r.records, id)
	}
	r.mu.Unlock()

	if ok && r.sink != nil {
		if err := r.sink.DeleteDeployment(id); err != nil {
			logger.Warn("failed to delete persisted deployment",
				zap.String("deploymentId", id.String()),
				zap.Error(err))
		}
	}
	return ok
}

// touch must be called with the write lock held. UpdatedAt never moves
// backwards even if the wall clock does.
func (r *Registry) touch(record *entities.DeploymentRecord) {
	now := time.Now()
	if now.Before(record.UpdatedAt) {
		now = record.UpdatedAt
	}
	record.UpdatedAt = now
}

func (r *Registry) persist(snapshot *entities.DeploymentRecord) {
	if r.sink == nil {
		return
	}
	if err := r.sink.SaveDeployment(snapshot); err != nil {
		logger.Warn("failed to persist deployment",
			zap.String("deploymentId", snapshot.ID.String()),
			zap.Error(err))
	}
}
