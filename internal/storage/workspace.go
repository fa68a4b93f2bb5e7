package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Workspace manages the per-task working area: the saved upload, split
// chunk files and per-stage intermediates live under a directory named
// after the task id.
type Workspace struct {
	root string
}

// NewWorkspace creates a Workspace rooted at dir.
func NewWorkspace(root string) *Workspace {
	return &Workspace{root: root}
}

// TaskDir returns (and creates if needed) the working directory for a task.
func (w *Workspace) TaskDir(id uuid.UUID) (string, error) {
	dir := filepath.Join(w.root, id.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create task dir: %w", err)
	}
	return dir, nil
}

// SaveUpload copies the submitted audio into the task's working area
// and returns the stored path.
func (w *Workspace) SaveUpload(id uuid.UUID, filename string, src io.Reader) (string, error) {
	dir, err := w.TaskDir(id)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, filepath.Base(filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("save upload: %w", err)
	}
	return path, nil
}

// ChunkPath returns the file path for a split chunk by index.
func (w *Workspace) ChunkPath(id uuid.UUID, index int) string {
	return filepath.Join(w.root, id.String(), fmt.Sprintf("chunk_%03d.wav", index))
}

// WriteChunk persists chunk audio data under the task's working area.
func (w *Workspace) WriteChunk(id uuid.UUID, index int, data []byte) error {
	if _, err := w.TaskDir(id); err != nil {
		return err
	}
	return os.WriteFile(w.ChunkPath(id, index), data, 0o644)
}

// Remove deletes the task's entire working area.
func (w *Workspace) Remove(id uuid.UUID) error {
	return os.RemoveAll(filepath.Join(w.root, id.String()))
}
