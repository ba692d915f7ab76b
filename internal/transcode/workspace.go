package transcode

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// WorkspacePrefix is the directory name prefix for per-job scratch
// workspaces. The startup sweep uses it to recognize orphans.
const WorkspacePrefix = "vidforge-transcode-"

// Workspace is a per-job scratch directory holding the downloaded source
// and encoded renditions until they are uploaded.
type Workspace struct {
	dir    string
	logger *slog.Logger
}

// NewWorkspace creates a scratch directory under root named
// vidforge-transcode-<videoID>-<uuid>. The UUID suffix keeps reruns of the
// same video from colliding.
func NewWorkspace(root string, videoID string, logger *slog.Logger) (*Workspace, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if root == "" {
		root = os.TempDir()
	}

	dir := filepath.Join(root, fmt.Sprintf("%s%s-%s", WorkspacePrefix, videoID, uuid.NewString()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}

	return &Workspace{dir: dir, logger: logger}, nil
}

// Dir returns the workspace directory path.
func (w *Workspace) Dir() string {
	return w.dir
}

// SourcePath returns the local path for the downloaded source file.
func (w *Workspace) SourcePath() string {
	return filepath.Join(w.dir, "source")
}

// RenditionPath returns the local output path for a rendition.
func (w *Workspace) RenditionPath(quality string) string {
	return filepath.Join(w.dir, quality+".mp4")
}

// ManifestPath returns the local path for the master playlist.
func (w *Workspace) ManifestPath() string {
	return filepath.Join(w.dir, "master.m3u8")
}

// Remove deletes the workspace. Failures are logged, never propagated:
// leaked scratch space must not fail an otherwise successful job, and the
// startup sweep reclaims it later.
func (w *Workspace) Remove() {
	if err := os.RemoveAll(w.dir); err != nil {
		w.logger.Warn("failed to remove workspace",
			slog.String("dir", w.dir),
			slog.String("error", err.Error()),
		)
	}
}
