package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWorkspaceRootEnvOverride(t *testing.T) {
	t.Setenv("WORKSPACE_ROOT", "/tmp/custom-workspaces")
	assert.Equal(t, "/tmp/custom-workspaces", GetWorkspaceRoot())
}

func TestPrepareDeploymentWorkspaceFresh(t *testing.T) {
	root := t.TempDir()
	id := uuid.New()

	dir, err := PrepareDeploymentWorkspace(root, id)
	require.NoError(t, err)
	assert.Equal(t, GetDeploymentWorkspace(root, id), dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPrepareDeploymentWorkspaceClearsLeftovers(t *testing.T) {
	root := t.TempDir()
	id := uuid.New()

	dir, err := PrepareDeploymentWorkspace(root, id)
	require.NoError(t, err)
	leftover := filepath.Join(dir, "node_modules")
	require.NoError(t, os.MkdirAll(leftover, 0o755))

	dir, err = PrepareDeploymentWorkspace(root, id)
	require.NoError(t, err)

	_, err = os.Stat(leftover)
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveDeploymentWorkspace(t *testing.T) {
	root := t.TempDir()
	id := uuid.New()
	dir, err := PrepareDeploymentWorkspace(root, id)
	require.NoError(t, err)

	require.NoError(t, RemoveDeploymentWorkspace(root, dir))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveDeploymentWorkspaceRefusesEscape(t *testing.T) {
	root := t.TempDir()

	assert.Error(t, RemoveDeploymentWorkspace(root, root))
	assert.Error(t, RemoveDeploymentWorkspace(root, filepath.Join(root, "..")))
	assert.Error(t, RemoveDeploymentWorkspace(root, "/etc"))
	assert.NoError(t, RemoveDeploymentWorkspace(root, ""))
}
