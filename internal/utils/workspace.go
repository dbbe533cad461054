package utils

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// GetWorkspaceRoot returns the directory under which all per-deployment
// workspaces live. Overridable via WORKSPACE_ROOT.
func GetWorkspaceRoot() string {
	if root := os.Getenv("WORKSPACE_ROOT"); root != "" {
		return root
	}
	rootDir, _ := os.Getwd()
	return path.Join(rootDir, "storage", "workspaces")
}

// GetDeploymentWorkspace returns the working directory owned by one
// deployment's pipeline task.
func GetDeploymentWorkspace(root string, deploymentID uuid.UUID) string {
	return path.Join(root, deploymentID.String())
}

// PrepareDeploymentWorkspace creates a fresh, empty workspace directory for
// the deployment, removing any leftovers from a previous run of the same id.
func PrepareDeploymentWorkspace(root string, deploymentID uuid.UUID) (string, error) {
	dir := GetDeploymentWorkspace(root, deploymentID)
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("cleanup workspace: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}
	return dir, nil
}

// RemoveDeploymentWorkspace deletes a workspace directory. It refuses to
// touch paths outside the workspace root.
func RemoveDeploymentWorkspace(root string, dir string) error {
	if dir == "" {
		return nil
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." || rel == "" || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("refusing to remove path outside workspace root")
	}
	return os.RemoveAll(dir)
}
