package registry

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfhost/botpanel-backend/internal/consts"
	"github.com/wolfhost/botpanel-backend/pkg/domain/entities"
)

func TestRegistryCreate(t *testing.T) {
	reg := New(nil)

	record := reg.Create("wolf-bot", "WOLF-BOT", "user-1", map[string]string{"SESSION_ID": "abc"})

	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.Equal(t, entities.StatusQueued, record.Status)
	assert.Empty(t, record.Logs)
	assert.Equal(t, entities.MetricsSnapshot{}, record.Metrics)
	assert.Nil(t, record.Handle)
	assert.False(t, record.CreatedAt.IsZero())
	assert.Equal(t, record.CreatedAt, record.UpdatedAt)

	got, ok := reg.Get(record.ID)
	require.True(t, ok)
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, "abc", got.Config["SESSION_ID"])
}

func TestRegistryGetUnknown(t *testing.T) {
	reg := New(nil)
	_, ok := reg.Get(uuid.New())
	assert.False(t, ok)
}

func TestRegistryListNewestFirst(t *testing.T) {
	reg := New(nil)

	first := reg.Create("wolf-bot", "a", "", nil)
	time.Sleep(2 * time.Millisecond)
	second := reg.Create("wolf-bot", "b", "", nil)
	time.Sleep(2 * time.Millisecond)
	third := reg.Create("wolf-bot", "c", "", nil)

	records := reg.List()
	require.Len(t, records, 3)
	assert.Equal(t, third.ID, records[0].ID)
	assert.Equal(t, second.ID, records[1].ID)
	assert.Equal(t, first.ID, records[2].ID)
}

func TestRegistryLogCapFIFO(t *testing.T) {
	reg := New(nil)
	record := reg.Create("wolf-bot", "WOLF-BOT", "", nil)

	total := consts.MaxLogEntries + 17
	for i := 0; i < total; i++ {
		reg.AppendLog(record.ID, entities.LogLevelInfo, fmt.Sprintf("line %d", i))
	}

	got, ok := reg.Get(record.ID)
	require.True(t, ok)
	require.Len(t, got.Logs, consts.MaxLogEntries)
	// Oldest entries are the ones evicted.
	assert.Equal(t, "line 17", got.Logs[0].Message)
	assert.Equal(t, fmt.Sprintf("line %d", total-1), got.Logs[len(got.Logs)-1].Message)
}

func TestRegistryAppendLogUnknownIDIsNoop(t *testing.T) {
	reg := New(nil)
	assert.NotPanics(t, func() {
		reg.AppendLog(uuid.New(), entities.LogLevelError, "nobody home")
	})
}

func TestRegistryAppendLogOrdering(t *testing.T) {
	reg := New(nil)
	record := reg.Create("wolf-bot", "WOLF-BOT", "", nil)

	for i := 0; i < 50; i++ {
		reg.AppendLog(record.ID, entities.LogLevelInfo, fmt.Sprintf("entry %d", i))
	}

	got, _ := reg.Get(record.ID)
	for i, entry := range got.Logs {
		assert.Equal(t, fmt.Sprintf("entry %d", i), entry.Message)
	}
}

func TestRegistrySetStatus(t *testing.T) {
	reg := New(nil)
	record := reg.Create("wolf-bot", "WOLF-BOT", "", nil)

	updated, ok := reg.SetStatus(record.ID, entities.StatusDeploying)
	require.True(t, ok)
	assert.Equal(t, entities.StatusDeploying, updated.Status)

	_, ok = reg.SetStatus(uuid.New(), entities.StatusFailed)
	assert.False(t, ok)
}

func TestRegistrySetStatusIdempotent(t *testing.T) {
	reg := New(nil)
	record := reg.Create("wolf-bot", "WOLF-BOT", "", nil)

	first, _ := reg.SetStatus(record.ID, entities.StatusDeploying)
	second, _ := reg.SetStatus(record.ID, entities.StatusDeploying)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
}

func TestRegistryTerminalStatusClearsHandle(t *testing.T) {
	reg := New(nil)
	record := reg.Create("wolf-bot", "WOLF-BOT", "", nil)

	reg.SetStatus(record.ID, entities.StatusDeploying)
	require.True(t, reg.SetHandle(record.ID, &entities.BackendHandle{
		Kind: entities.BackendLocal,
		PID:  4242,
	}))
	reg.SetStatus(record.ID, entities.StatusRunning)

	got, _ := reg.Get(record.ID)
	require.NotNil(t, got.Handle)
	assert.Equal(t, 4242, got.Handle.PID)

	reg.SetStatus(record.ID, entities.StatusStopped)
	got, _ = reg.Get(record.ID)
	assert.Nil(t, got.Handle)
}

func TestRegistrySetHandleRefusedOnTerminal(t *testing.T) {
	reg := New(nil)
	record := reg.Create("wolf-bot", "WOLF-BOT", "", nil)
	reg.SetStatus(record.ID, entities.StatusStopped)

	attached := reg.SetHandle(record.ID, &entities.BackendHandle{
		Kind: entities.BackendLocal,
		PID:  99,
	})
	assert.False(t, attached)

	got, _ := reg.Get(record.ID)
	assert.Nil(t, got.Handle)
}

func TestRegistryUpdatedAtMonotonic(t *testing.T) {
	reg := New(nil)
	record := reg.Create("wolf-bot", "WOLF-BOT", "", nil)

	previous := record.UpdatedAt
	mutations := []func(){
		func() { reg.SetStatus(record.ID, entities.StatusDeploying) },
		func() { reg.AppendLog(record.ID, entities.LogLevelInfo, "step") },
		func() { reg.UpdateMetrics(record.ID, entities.MetricsSnapshot{UptimeSeconds: 1}) },
		func() { reg.SetStatus(record.ID, entities.StatusRunning) },
		func() { reg.AppendLog(record.ID, entities.LogLevelSuccess, "up") },
	}
	for _, mutate := range mutations {
		mutate()
		got, ok := reg.Get(record.ID)
		require.True(t, ok)
		assert.False(t, got.UpdatedAt.Before(previous))
		previous = got.UpdatedAt
	}
}

func TestRegistryDelete(t *testing.T) {
	reg := New(nil)
	record := reg.Create("wolf-bot", "WOLF-BOT", "", nil)

	assert.True(t, reg.Delete(record.ID))
	assert.False(t, reg.Delete(record.ID))

	_, ok := reg.Get(record.ID)
	assert.False(t, ok)
	assert.Empty(t, reg.List())
}

func TestRegistryConcurrentAppends(t *testing.T) {
	reg := New(nil)
	record := reg.Create("wolf-bot", "WOLF-BOT", "", nil)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				reg.AppendLog(record.ID, entities.LogLevelInfo, fmt.Sprintf("w%d-%d", worker, i))
				reg.Get(record.ID)
			}
		}(w)
	}
	wg.Wait()

	got, ok := reg.Get(record.ID)
	require.True(t, ok)
	assert.Len(t, got.Logs, 8*50)
}

type recordingSink struct {
	mu      sync.Mutex
	saves   []uuid.UUID
	deletes []uuid.UUID
}

func (s *recordingSink) SaveDeployment(record *entities.DeploymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, record.ID)
	return nil
}

func (s *recordingSink) DeleteDeployment(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, id)
	return nil
}

func TestRegistryPersistsMutations(t *testing.T) {
	sink := &recordingSink{}
	reg := New(sink)

	record := reg.Create("wolf-bot", "WOLF-BOT", "", nil)
	reg.SetStatus(record.ID, entities.StatusDeploying)
	reg.SetHandle(record.ID, &entities.BackendHandle{Kind: entities.BackendLocal, PID: 1})
	reg.Delete(record.ID)

	assert.Len(t, sink.saves, 3)
	assert.Equal(t, []uuid.UUID{record.ID}, sink.deletes)
}

func TestRegistryRestoreDoesNotPersist(t *testing.T) {
	sink := &recordingSink{}
	reg := New(sink)

	reg.Restore([]*entities.DeploymentRecord{{ID: uuid.New(), Status: entities.StatusStopped}})

	assert.Empty(t, sink.saves)
}

func TestRegistryRestore(t *testing.T) {
	reg := New(nil)
	restored := &entities.DeploymentRecord{
		ID:        uuid.New(),
		CatalogID: "wolf-bot",
		Name:      "WOLF-BOT",
		Status:    entities.StatusFailed,
		Logs:      []entities.LogEntry{{Level: entities.LogLevelError, Message: "crashed"}},
		CreatedAt: time.Now().Add(-time.Hour),
		UpdatedAt: time.Now().Add(-time.Hour),
	}

	reg.Restore([]*entities.DeploymentRecord{restored})

	got, ok := reg.Get(restored.ID)
	require.True(t, ok)
	assert.Equal(t, entities.StatusFailed, got.Status)
	require.Len(t, got.Logs, 1)
	assert.Equal(t, "crashed", got.Logs[0].Message)
}

func TestRegistrySnapshotsAreIsolated(t *testing.T) {
	reg := New(nil)
	record := reg.Create("wolf-bot", "WOLF-BOT", "", map[string]string{"A": "1"})

	snapshot, _ := reg.Get(record.ID)
	snapshot.Config["A"] = "mutated"
	snapshot.Logs = append(snapshot.Logs, entities.LogEntry{Message: "rogue"})

	fresh, _ := reg.Get(record.ID)
	assert.Equal(t, "1", fresh.Config["A"])
	assert.Empty(t, fresh.Logs)
}
