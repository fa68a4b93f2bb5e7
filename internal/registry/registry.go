// Package registry owns all task state. Every read returns a snapshot
// copy and every mutation goes through Update, so no caller ever sees a
// partially-updated task.
package registry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dhru84/Audio-Translation-Pipeline/internal/domain"
	errpkg "github.com/dhru84/Audio-Translation-Pipeline/internal/errors"
)

// Registry is the synchronized store of task state, backed by a JSON
// state file for restart visibility. Chunk audio is never persisted;
// only task snapshots are.
type Registry struct {
	mu     sync.RWMutex
	tasks  map[uuid.UUID]*domain.Task
	file   string
	fileMu sync.Mutex
	logger *slog.Logger
}

// New creates a Registry and loads tasks from the state file if it
// exists. Tasks that were mid-flight when the process died cannot be
// resumed (their chunk audio lived in memory), so they are marked
// failed on load.
func New(stateFile string, logger *slog.Logger) (*Registry, error) {
	r := &Registry{
		tasks:  make(map[uuid.UUID]*domain.Task),
		file:   filepath.Clean(stateFile),
		logger: logger,
	}

	if err := r.restore(); err != nil {
		return nil, fmt.Errorf("failed to load state from file: %w", err)
	}

	logger.Info("task registry initialized", "state_file", r.file, "tasks_count", len(r.tasks))
	return r, nil
}

func (r *Registry) restore() error {
	data, err := os.ReadFile(r.file)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Info("state file does not exist, starting with empty state", "state_file", r.file)
			return nil
		}
		return fmt.Errorf("read state file: %w", err)
	}
	if len(data) == 0 {
		r.logger.Warn("state file is empty")
		return nil
	}

	var tasks []*domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return fmt.Errorf("unmarshal state file: %w", err)
	}

	stale := 0
	for _, task := range tasks {
		if !task.Status.Terminal() {
			task.Status = domain.TaskStatusFailed
			task.Error = "processing interrupted by server restart"
			task.UpdatedAt = time.Now()
			stale++
		}
		r.tasks[task.ID] = task
	}
	if stale > 0 {
		r.logger.Warn("marked interrupted tasks as failed", "count", stale)
		if err := r.persist(); err != nil {
			return err
		}
	}

	r.logger.Info("state loaded from file", "tasks_count", len(tasks))
	return nil
}

// persist writes a snapshot of all tasks to the state file. Task values
// are copied under the read lock so concurrent Updates cannot mutate
// them mid-marshal, and fileMu serializes the write/rename so two
// persists never interleave on the temp file.
func (r *Registry) persist() error {
	r.mu.RLock()
	tasks := make([]domain.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		tasks = append(tasks, *task)
	}
	r.mu.RUnlock()

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}

	r.fileMu.Lock()
	defer r.fileMu.Unlock()

	tempFile := r.file + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("write temporary state file: %w", err)
	}
	if err := os.Rename(tempFile, r.file); err != nil {
		return fmt.Errorf("rename temporary state file: %w", err)
	}
	return nil
}

// Create allocates a new queued task under the given id. It never
// blocks on processing; starting the pipeline is the driver's job.
func (r *Registry) Create(id uuid.UUID, cfg domain.TaskConfig) (domain.Task, error) {
	now := time.Now()
	task := &domain.Task{
		ID:        id,
		Status:    domain.TaskStatusQueued,
		Phase:     domain.PhaseQueued,
		Percent:   domain.ProgressPercent(domain.PhaseQueued, 0, 0),
		Config:    cfg,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	if _, exists := r.tasks[id]; exists {
		r.mu.Unlock()
		return domain.Task{}, fmt.Errorf("task %s already exists", id)
	}
	r.tasks[id] = task
	snapshot := *task
	r.mu.Unlock()

	if err := r.persist(); err != nil {
		return domain.Task{}, fmt.Errorf("save state after creating task: %w", err)
	}

	r.logger.Debug("task created", "task_id", id)
	return snapshot, nil
}

// Get returns a read-only snapshot of a task.
func (r *Registry) Get(id uuid.UUID) (domain.Task, error) {
	r.mu.RLock()
	task, exists := r.tasks[id]
	if !exists {
		r.mu.RUnlock()
		return domain.Task{}, errpkg.ErrTaskNotFound
	}
	snapshot := *task
	r.mu.RUnlock()
	return snapshot, nil
}

// Update applies a mutation to a task, serialized against all other
// reads and writes. It enforces the task state machine and keeps the
// reported percentage monotonically non-decreasing: if recomputation
// yields a lower value than last reported, the last value wins.
// Terminal tasks reject further mutation.
func (r *Registry) Update(id uuid.UUID, mutate func(*domain.Task)) (domain.Task, error) {
	r.mu.Lock()
	task, exists := r.tasks[id]
	if !exists {
		r.mu.Unlock()
		return domain.Task{}, errpkg.ErrTaskNotFound
	}
	if task.Status.Terminal() {
		r.mu.Unlock()
		return domain.Task{}, errpkg.ErrTaskFinished
	}

	before := *task
	mutate(task)

	if !domain.ValidTransition(before.Status, task.Status) {
		to := task.Status
		*task = before
		r.mu.Unlock()
		return domain.Task{}, fmt.Errorf("invalid transition: %s -> %s", before.Status, to)
	}

	percent := domain.ProgressPercent(task.Phase, task.ChunksDone, task.ChunksTotal)
	if percent < before.Percent {
		percent = before.Percent
	}
	task.Percent = percent
	task.UpdatedAt = time.Now()

	snapshot := *task
	r.mu.Unlock()

	if err := r.persist(); err != nil {
		return domain.Task{}, fmt.Errorf("save state after updating task: %w", err)
	}

	r.logger.Debug("task updated", "task_id", id, "status", snapshot.Status, "percent", snapshot.Percent)
	return snapshot, nil
}

// TasksByStatus returns snapshots of all tasks with the given status.
func (r *Registry) TasksByStatus(status domain.TaskStatus) []domain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []domain.Task
	for _, task := range r.tasks {
		if task.Status == status {
			filtered = append(filtered, *task)
		}
	}
	return filtered
}
