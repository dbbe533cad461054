package entities

// DeploymentStatus is the lifecycle state of one deployment.
//
// Legal transitions: Queued -> Deploying -> {Running | Failed},
// Running -> {Stopped | Failed}. A stop request while Queued or Deploying
// goes straight to Stopped. Stopped and Failed are terminal.
type DeploymentStatus string

const (
	StatusQueued    DeploymentStatus = "Queued"
	StatusDeploying DeploymentStatus = "Deploying"
	StatusRunning   DeploymentStatus = "Running"
	StatusStopped   DeploymentStatus = "Stopped"
	StatusFailed    DeploymentStatus = "Failed"
)

// Terminal reports whether the status ends the deployment's lifetime.
func (s DeploymentStatus) Terminal() bool {
	return s == StatusStopped || s == StatusFailed
}

// LogLevel is the severity of a deployment log entry.
type LogLevel string

const (
	LogLevelInfo    LogLevel = "info"
	LogLevelWarn    LogLevel = "warn"
	LogLevelError   LogLevel = "error"
	LogLevelSuccess LogLevel = "success"
)

// BackendKind selects how a deployment is provisioned.
type BackendKind string

const (
	BackendLocal BackendKind = "local"
	BackendPanel BackendKind = "panel"
)
