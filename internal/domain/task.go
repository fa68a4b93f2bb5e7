package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a translation task.
type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// ValidTransition enforces the allowed task state machine edges:
// queued -> processing -> {completed | failed}.
func ValidTransition(from, to TaskStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case TaskStatusQueued:
		return to == TaskStatusProcessing || to == TaskStatusFailed
	case TaskStatusProcessing:
		return to == TaskStatusCompleted || to == TaskStatusFailed
	default:
		return false
	}
}

// TaskConfig is the immutable per-task configuration captured at
// submission time.
type TaskConfig struct {
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	APIKey         string `json:"-"`
	OutputDir      string `json:"output_dir"`
	InputFile      string `json:"input_file"`
}

// Task is one end-to-end audio translation job. The registry is the
// single owner of task state; everything else works on snapshots.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Status      TaskStatus `json:"status"`
	Phase       Phase      `json:"phase"`
	ChunksDone  int        `json:"chunks_done"`
	ChunksTotal int        `json:"chunks_total"`
	Percent     int        `json:"percent"`
	OutputPath  string     `json:"output_path,omitempty"`
	Error       string     `json:"error,omitempty"`
	Config      TaskConfig `json:"config"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ProgressLabel is the human-readable phase text shown to pollers.
func (t *Task) ProgressLabel() string {
	if t.Status == TaskStatusFailed {
		return "Failed"
	}
	return progressLabel(t.Phase, t.ChunksDone, t.ChunksTotal)
}
