package errs

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := &ValidationError{MissingKeys: []string{"PHONE_NUMBER", "SESSION_ID"}}

	assert.Equal(t, "missing required configuration fields: PHONE_NUMBER, SESSION_ID", err.Error())
	assert.True(t, errors.Is(err, &ValidationError{}))
}

func TestNotFoundError(t *testing.T) {
	withID := &NotFoundError{Entity: "deployment", ID: "abc-123"}
	assert.Equal(t, "deployment abc-123 not found", withID.Error())

	withoutID := &NotFoundError{Entity: "catalog entry"}
	assert.Equal(t, "catalog entry not found", withoutID.Error())

	assert.True(t, errors.Is(withID, &NotFoundError{}))
}

func TestPipelineStepError(t *testing.T) {
	err := &PipelineStepError{Command: "npm", Code: 127}
	assert.Equal(t, "npm exited with code 127", err.Error())
}

func TestSpawnErrorUnwraps(t *testing.T) {
	err := &SpawnError{Command: "git", Err: exec.ErrNotFound}
	assert.ErrorIs(t, err, exec.ErrNotFound)
	assert.Contains(t, err.Error(), "git")
}

func TestRuntimeCrashError(t *testing.T) {
	err := &RuntimeCrashError{Code: 3}
	assert.Equal(t, "process exited with code 3", err.Error())
}

func TestBackendUnavailableError(t *testing.T) {
	err := &BackendUnavailableError{Reason: "PANEL_URL not configured"}
	assert.Contains(t, err.Error(), "PANEL_URL not configured")
	assert.True(t, errors.Is(err, &BackendUnavailableError{}))
}

func TestPanelAPIError(t *testing.T) {
	err := &PanelAPIError{StatusCode: 422, Body: `{"errors":[]}`}
	assert.Contains(t, err.Error(), "422")
}
