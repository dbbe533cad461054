package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wolfhost/botpanel-backend/internal/consts"
	"github.com/wolfhost/botpanel-backend/internal/logger"
	"github.com/wolfhost/botpanel-backend/internal/utils"
	"github.com/wolfhost/botpanel-backend/pkg/catalog"
	"github.com/wolfhost/botpanel-backend/pkg/domain/entities"
	"github.com/wolfhost/botpanel-backend/pkg/domain/errs"
	"github.com/wolfhost/botpanel-backend/pkg/metrics"
	"github.com/wolfhost/botpanel-backend/pkg/panel"
	"github.com/wolfhost/botpanel-backend/pkg/registry"
	"github.com/wolfhost/botpanel-backend/pkg/runner"
)

type TaskManager interface {
	Start()
	AddTask(task entities.Task)
	Stop()
}

// EntitlementChecker is the billing-side collaborator consulted around
// deploys. It is not part of the deployment state machine.
type EntitlementChecker interface {
	CanDeploy(ctx context.Context, userID string) bool
	Debit(ctx context.Context, userID, catalogID string) error
}

type allowAll struct{}

func (allowAll) CanDeploy(context.Context, string) bool      { return true }
func (allowAll) Debit(context.Context, string, string) error { return nil }

// Config tunes the orchestrator. Zero values fall back to the defaults in
// internal/consts.
type Config struct {
	Backend         entities.BackendKind
	WorkspaceRoot   string
	StopGrace       time.Duration
	PollInterval    time.Duration
	MetricsInterval time.Duration
}

// DeploymentService drives the deployment state machine: it creates registry
// records, runs the provisioning pipeline asynchronously and keeps the
// registry updated as the backend reports progress.
type DeploymentService struct {
	registry    *registry.Registry
	catalog     catalog.Source
	entitlement EntitlementChecker
	panel       *panel.Client
	taskManager TaskManager
	cfg         Config

	// Live pipeline control state (cancel funcs, process handles) keyed by
	// deployment id. The serializable part of the handle lives on the record.
	active sync.Map
}

// activeDeployment is the live control state of one in-flight pipeline. mu
// serializes stop requests against the pipeline's status promotions: once
// stopRequested is set under mu, the pipeline can no longer move the record
// out of Stopped.
type activeDeployment struct {
	cancel        context.CancelFunc
	stopRequested atomic.Bool

	mu     sync.Mutex
	handle *runner.Handle
}

func NewDeploymentService(
	reg *registry.Registry,
	catalogSource catalog.Source,
	entitlement EntitlementChecker,
	panelClient *panel.Client,
	taskManager TaskManager,
	cfg Config,
) *DeploymentService {
	if cfg.Backend == "" {
		cfg.Backend = entities.BackendLocal
	}
	if cfg.WorkspaceRoot == "" {
		cfg.WorkspaceRoot = utils.GetWorkspaceRoot()
	}
	if cfg.StopGrace == 0 {
		cfg.StopGrace = consts.StopGracePeriod
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = consts.PanelPollInterval
	}
	if cfg.MetricsInterval == 0 {
		cfg.MetricsInterval = consts.MetricsInterval
	}
	if entitlement == nil {
		entitlement = allowAll{}
	}

	service := &DeploymentService{
		registry:    reg,
		catalog:     catalogSource,
		entitlement: entitlement,
		panel:       panelClient,
		taskManager: taskManager,
		cfg:         cfg,
	}

	service.taskManager.Start()

	return service
}

// DeployRequest carries a validated-at-the-edge deploy intent.
type DeployRequest struct {
	CatalogID string
	Name      string
	UserID    string
	Config    map[string]string
}

// Deploy validates the request against the catalog entry's schema, creates a
// queued record and schedules the pipeline. It returns without waiting for
// any pipeline step.
func (s *DeploymentService) Deploy(ctx context.Context, request DeployRequest) (*entities.DeploymentRecord, error) {
	entry, err := s.catalog.Get(request.CatalogID)
	if err != nil {
		return nil, err
	}

	if !s.entitlement.CanDeploy(ctx, request.UserID) {
		return nil, &errs.NotEntitledError{UserID: request.UserID}
	}

	config := resolveConfig(entry, request.Config)
	if missing := missingRequiredKeys(entry, config); len(missing) > 0 {
		return nil, &errs.ValidationError{MissingKeys: missing}
	}

	name := request.Name
	if name == "" {
		name = entry.Name
	}

	record := s.registry.Create(entry.ID, name, request.UserID, config)
	logger.Info("Deployment created",
		zap.String("deploymentId", record.ID.String()),
		zap.String("catalogId", entry.ID))

	pipelineCtx, cancel := context.WithCancel(context.Background())
	act := &activeDeployment{cancel: cancel}
	s.active.Store(record.ID, act)

	s.taskManager.AddTask(func() {
		switch s.cfg.Backend {
		case entities.BackendPanel:
			s.runPanelPipeline(pipelineCtx, record.ID, entry, config, act)
		default:
			s.runLocalPipeline(pipelineCtx, record.ID, entry, config, act)
		}
	})

	if err := s.entitlement.Debit(ctx, request.UserID, entry.ID); err != nil {
		logger.Warn("failed to debit user for deployment",
			zap.String("deploymentId", record.ID.String()),
			zap.Error(err))
	}

	return record, nil
}

// Get returns one deployment record for polling.
func (s *DeploymentService) Get(id uuid.UUID) (*entities.DeploymentRecord, error) {
	record, ok := s.registry.Get(id)
	if !ok {
		return nil, &errs.NotFoundError{Entity: "deployment", ID: id.String()}
	}
	return record, nil
}

// List returns all deployment records, newest first.
func (s *DeploymentService) List() []*entities.DeploymentRecord {
	return s.registry.List()
}

// Catalog exposes the read-only template source to the API layer.
func (s *DeploymentService) Catalog() catalog.Source {
	return s.catalog
}

// Stop requests graceful termination. The record transitions to Stopped as
// soon as termination has been requested; the caller never waits for the
// process to actually die. Stopping an already-terminal deployment is a
// no-op that returns the current record.
func (s *DeploymentService) Stop(id uuid.UUID) (*entities.DeploymentRecord, error) {
	record, ok := s.registry.Get(id)
	if !ok {
		return nil, &errs.NotFoundError{Entity: "deployment", ID: id.String()}
	}

	if record.Status.Terminal() {
		s.registry.AppendLog(id, entities.LogLevelInfo, "Stop requested but no live process found")
		current, _ := s.registry.Get(id)
		return current, nil
	}

	if value, live := s.active.Load(id); live {
		act := value.(*activeDeployment)
		act.mu.Lock()
		act.stopRequested.Store(true)
		handle := act.handle
		act.mu.Unlock()
		if handle != nil {
			handle.Terminate(s.cfg.StopGrace)
		} else {
			// No process yet: cancel aborts the pipeline between (or
			// inside) setup steps, or stops the panel poll loop.
			act.cancel()
		}
		s.active.Delete(id)
	}

	// Re-read: the pipeline may have attached a handle while this stop was
	// in flight.
	if current, ok := s.registry.Get(id); ok {
		record = current
	}
	if record.Handle != nil && record.Handle.Kind == entities.BackendPanel && s.panel != nil {
		if err := s.panel.DeleteServer(context.Background(), record.Handle.ServerID); err != nil {
			logger.Warn("failed to delete panel server on stop",
				zap.String("deploymentId", id.String()),
				zap.Error(err))
			s.registry.AppendLog(id, entities.LogLevelWarn, "Panel server deletion failed: "+err.Error())
		}
	}

	s.registry.AppendLog(id, entities.LogLevelInfo, "Stop requested, terminating deployment")
	updated, _ := s.registry.SetStatus(id, entities.StatusStopped)
	return updated, nil
}

// Remove forcibly terminates any live resource, cleans up the workspace and
// drops the record. Missing backend resources are tolerated; an unknown id
// returns false.
func (s *DeploymentService) Remove(id uuid.UUID) bool {
	record, ok := s.registry.Get(id)
	if !ok {
		return false
	}

	if value, live := s.active.LoadAndDelete(id); live {
		act := value.(*activeDeployment)
		act.mu.Lock()
		act.stopRequested.Store(true)
		handle := act.handle
		act.mu.Unlock()
		if handle != nil {
			handle.Kill()
		}
		act.cancel()
	}

	if record.Handle != nil && record.Handle.Kind == entities.BackendPanel && s.panel != nil {
		if err := s.panel.DeleteServer(context.Background(), record.Handle.ServerID); err != nil {
			logger.Warn("failed to delete panel server on remove",
				zap.String("deploymentId", id.String()),
				zap.Error(err))
		}
	}

	dir := utils.GetDeploymentWorkspace(s.cfg.WorkspaceRoot, id)
	if err := utils.RemoveDeploymentWorkspace(s.cfg.WorkspaceRoot, dir); err != nil {
		logger.Warn("failed to remove deployment workspace",
			zap.String("deploymentId", id.String()),
			zap.Error(err))
	}

	return s.registry.Delete(id)
}

// ---- local backend ----

func (s *DeploymentService) runLocalPipeline(
	ctx context.Context,
	id uuid.UUID,
	entry *entities.CatalogEntry,
	config map[string]string,
	act *activeDeployment,
) {
	// The task may have waited behind busy workers; a stop that already
	// landed left the record Stopped, which must stay final.
	act.mu.Lock()
	if s.canceled(ctx, act) {
		act.mu.Unlock()
		return
	}
	s.registry.SetStatus(id, entities.StatusDeploying)
	act.mu.Unlock()

	dir, err := utils.PrepareDeploymentWorkspace(s.cfg.WorkspaceRoot, id)
	if err != nil {
		s.failDeployment(id, fmt.Sprintf("Failed to prepare workspace: %v", err))
		return
	}

	sink := func(level entities.LogLevel, message string) {
		s.registry.AppendLog(id, level, message)
	}

	steps := []struct {
		label   string
		command runner.Command
	}{
		{"Cloning repository " + entry.Repository, fetchCommand(entry, dir)},
		{"Installing dependencies", installCommand(entry, dir)},
	}

	for _, step := range steps {
		if s.canceled(ctx, act) {
			return
		}
		s.registry.AppendLog(id, entities.LogLevelInfo, step.label)
		if err := runner.Run(ctx, step.command, sink); err != nil {
			if s.canceled(ctx, act) {
				return
			}
			s.failDeployment(id, fmt.Sprintf("Pipeline step failed: %v", err))
			return
		}
	}

	if s.canceled(ctx, act) {
		return
	}

	s.registry.AppendLog(id, entities.LogLevelInfo, "Starting bot process")
	handle, err := runner.Start(ctx, startCommand(entry, dir, config), sink)
	if err != nil {
		if s.canceled(ctx, act) {
			return
		}
		s.failDeployment(id, fmt.Sprintf("Failed to start bot process: %v", err))
		return
	}

	act.mu.Lock()
	if act.stopRequested.Load() {
		act.mu.Unlock()
		// A stop raced the spawn; the record is already Stopped.
		handle.Kill()
		return
	}
	act.handle = handle
	s.registry.SetHandle(id, &entities.BackendHandle{
		Kind: entities.BackendLocal,
		PID:  handle.PID,
	})
	s.registry.AppendLog(id, entities.LogLevelSuccess, "Bot is up and running")
	s.registry.SetStatus(id, entities.StatusRunning)
	act.mu.Unlock()

	go s.superviseProcess(id, handle, act, time.Now())
}

// superviseProcess observes the bot for its whole lifetime: samples metrics
// while it runs and drives the Running -> {Stopped|Failed} transition when
// it eventually exits.
func (s *DeploymentService) superviseProcess(
	id uuid.UUID,
	handle *runner.Handle,
	act *activeDeployment,
	startedAt time.Time,
) {
	ticker := time.NewTicker(s.cfg.MetricsInterval)
	defer ticker.Stop()
	defer act.cancel()

	for {
		select {
		case result := <-handle.Done:
			s.active.Delete(id)
			if act.stopRequested.Load() {
				s.registry.AppendLog(id, entities.LogLevelInfo,
					fmt.Sprintf("Process exited after stop request (code %d)", result.Code))
				return
			}
			if result.Code == 0 {
				s.registry.AppendLog(id, entities.LogLevelInfo, "Process exited cleanly (code 0)")
				s.registry.SetStatus(id, entities.StatusStopped)
			} else {
				crash := &errs.RuntimeCrashError{Code: result.Code}
				s.registry.AppendLog(id, entities.LogLevelError, crash.Error())
				s.registry.SetStatus(id, entities.StatusFailed)
			}
			return
		case <-ticker.C:
			if snapshot, err := metrics.Sample(handle.PID, startedAt); err == nil {
				s.registry.UpdateMetrics(id, snapshot)
			}
		}
	}
}

// ---- remote panel backend ----

func (s *DeploymentService) runPanelPipeline(
	ctx context.Context,
	id uuid.UUID,
	entry *entities.CatalogEntry,
	config map[string]string,
	act *activeDeployment,
) {
	if err := s.panel.Configured(); err != nil {
		s.failDeployment(id, err.Error())
		return
	}

	act.mu.Lock()
	if s.canceled(ctx, act) {
		act.mu.Unlock()
		return
	}
	s.registry.SetStatus(id, entities.StatusDeploying)
	act.mu.Unlock()
	s.registry.AppendLog(id, entities.LogLevelInfo, "Requesting server from hosting panel")

	record, ok := s.registry.Get(id)
	if !ok {
		// Removed while queued.
		return
	}
	// The create call runs to completion even when the pipeline is being
	// canceled: aborting it mid-flight could leave an untracked server
	// behind. If a stop won the race the server is released right below.
	server, err := s.panel.CreateServer(context.Background(), panel.CreateServerInput{
		Name:    record.Name,
		RepoURL: entry.Repository,
		Env:     config,
	})
	if err != nil {
		if s.canceled(ctx, act) {
			return
		}
		s.failDeployment(id, "Panel server creation failed: "+err.Error())
		return
	}

	act.mu.Lock()
	if act.stopRequested.Load() {
		act.mu.Unlock()
		if err := s.panel.DeleteServer(context.Background(), server.ID); err != nil {
			logger.Warn("failed to delete panel server after stop",
				zap.String("deploymentId", id.String()),
				zap.Error(err))
		}
		return
	}
	s.registry.SetHandle(id, &entities.BackendHandle{
		Kind:       entities.BackendPanel,
		ServerID:   server.ID,
		Identifier: server.Identifier,
		PanelURL:   s.panel.PanelURL(server),
	})
	act.mu.Unlock()
	s.registry.AppendLog(id, entities.LogLevelInfo,
		fmt.Sprintf("Server %s created, waiting for install to finish", server.Identifier))

	go s.pollPanelServer(ctx, id, server.ID, act)
}

func (s *DeploymentService) pollPanelServer(ctx context.Context, id uuid.UUID, serverID int, act *activeDeployment) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	failures := 0
	running := false

	for {
		select {
		case <-ctx.Done():
			s.active.Delete(id)
			return
		case <-ticker.C:
			server, err := s.panel.GetServer(ctx, serverID)
			if err != nil {
				if s.canceled(ctx, act) {
					s.active.Delete(id)
					return
				}
				failures++
				s.registry.AppendLog(id, entities.LogLevelWarn, "Status poll failed: "+err.Error())
				if failures >= consts.PanelPollFailureLimit {
					s.failDeployment(id, "Hosting panel unreachable, giving up on this deployment")
					return
				}
				continue
			}
			failures = 0

			switch server.State {
			case panel.StateInstalling:
				// Still deploying.
			case panel.StateRunning:
				if !running {
					running = true
					s.registry.AppendLog(id, entities.LogLevelSuccess, "Server is running")
					s.registry.SetStatus(id, entities.StatusRunning)
				}
			case panel.StateSuspended:
				s.registry.AppendLog(id, entities.LogLevelWarn, "Server suspended by the hosting panel")
			default:
				s.failDeployment(id, fmt.Sprintf("Server reported state %q", server.State))
				return
			}
		}
	}
}

// ---- helpers ----

func (s *DeploymentService) canceled(ctx context.Context, act *activeDeployment) bool {
	return act.stopRequested.Load() || ctx.Err() != nil
}

// failDeployment records the explanatory error log before flipping the
// status, so pollers never see Failed without its cause. It also retires the
// live pipeline state, since a failed deployment has nothing left to control.
func (s *DeploymentService) failDeployment(id uuid.UUID, message string) {
	s.registry.AppendLog(id, entities.LogLevelError, message)
	s.registry.SetStatus(id, entities.StatusFailed)
	s.active.Delete(id)
}

func resolveConfig(entry *entities.CatalogEntry, supplied map[string]string) map[string]string {
	config := make(map[string]string, len(supplied))
	for k, v := range supplied {
		config[k] = v
	}
	for name, field := range entry.Schema {
		if config[name] == "" && field.Default != "" {
			config[name] = field.Default
		}
	}
	return config
}

func missingRequiredKeys(entry *entities.CatalogEntry, config map[string]string) []string {
	missing := make([]string, 0)
	for name, field := range entry.Schema {
		if field.Required && strings.TrimSpace(config[name]) == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

func fetchCommand(entry *entities.CatalogEntry, dir string) runner.Command {
	if len(entry.FetchCommand) > 0 {
		return runner.Command{Name: entry.FetchCommand[0], Args: entry.FetchCommand[1:], Dir: dir}
	}
	return runner.Command{
		Name: "git",
		Args: []string{"clone", "--depth", "1", entry.Repository, "."},
		Dir:  dir,
	}
}

func installCommand(entry *entities.CatalogEntry, dir string) runner.Command {
	if len(entry.InstallCommand) > 0 {
		return runner.Command{Name: entry.InstallCommand[0], Args: entry.InstallCommand[1:], Dir: dir}
	}
	return runner.Command{
		Name: "npm",
		Args: []string{"install", "--no-audit", "--no-fund"},
		Dir:  dir,
	}
}

func startCommand(entry *entities.CatalogEntry, dir string, config map[string]string) runner.Command {
	command := runner.Command{Name: "npm", Args: []string{"start"}, Dir: dir, Env: config}
	if len(entry.StartCommand) > 0 {
		command.Name = entry.StartCommand[0]
		command.Args = entry.StartCommand[1:]
	}
	return command
}
