package domain

import (
	"io"

	"github.com/google/uuid"
)

// Submission carries a validated upload into the pipeline service.
type Submission struct {
	APIKey         string `validate:"required"`
	SourceLanguage string `validate:"required,lang_code"`
	TargetLanguage string `validate:"required,lang_code"`
	OutputDir      string `validate:"required"`
	Filename       string `validate:"required"`
	Size           int64
	File           io.Reader `validate:"-"`
}

// SubmitResponse is returned from POST /convert on success.
type SubmitResponse struct {
	Message string    `json:"message"`
	TaskID  uuid.UUID `json:"task_id"`
}

// StatusResponse reflects the current registry snapshot of a task.
type StatusResponse struct {
	Status     TaskStatus `json:"status"`
	Progress   string     `json:"progress"`
	Percent    int        `json:"percent"`
	OutputFile string     `json:"output_file,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// StatusFromTask builds the poll response for a task snapshot.
func StatusFromTask(t Task) StatusResponse {
	return StatusResponse{
		Status:     t.Status,
		Progress:   t.ProgressLabel(),
		Percent:    t.Percent,
		OutputFile: t.OutputPath,
		Error:      t.Error,
	}
}
