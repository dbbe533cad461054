package errs

import (
	"fmt"
	"strings"
)

// ValidationError reports required configuration fields that were missing
// from a deploy request. No record is created when it is returned.
type ValidationError struct {
	MissingKeys []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required configuration fields: %s", strings.Join(e.MissingKeys, ", "))
}

// Is enables errors.Is() comparison for ValidationError
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// NotFoundError represents an operation against an unknown entity id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Entity)
}

// Is enables errors.Is() comparison for NotFoundError
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// PipelineStepError means a setup command exited non-zero.
type PipelineStepError struct {
	Command string
	Code    int
}

func (e *PipelineStepError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
}

// SpawnError means a command could not be started at all.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// RuntimeCrashError means the long-lived bot process exited abnormally after
// it had reached Running.
type RuntimeCrashError struct {
	Code int
}

func (e *RuntimeCrashError) Error() string {
	return fmt.Sprintf("process exited with code %d", e.Code)
}

// BackendUnavailableError means the hosting panel is not configured or not
// reachable, before any resource was provisioned.
type BackendUnavailableError struct {
	Reason string
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("hosting panel unavailable: %s", e.Reason)
}

// Is enables errors.Is() comparison for BackendUnavailableError
func (e *BackendUnavailableError) Is(target error) bool {
	_, ok := target.(*BackendUnavailableError)
	return ok
}

// PanelAPIError carries a non-2xx panel response, with enough of the body to
// diagnose the failure.
type PanelAPIError struct {
	StatusCode int
	Body       string
}

func (e *PanelAPIError) Error() string {
	return fmt.Sprintf("panel request failed: status=%d body=%s", e.StatusCode, e.Body)
}

// NotEntitledError means the user is not allowed to deploy.
type NotEntitledError struct {
	UserID string
}

func (e *NotEntitledError) Error() string {
	return fmt.Sprintf("user %s is not entitled to deploy", e.UserID)
}
