package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dhru84/Audio-Translation-Pipeline/internal/domain"
	"github.com/dhru84/Audio-Translation-Pipeline/internal/metrics"
	"github.com/dhru84/Audio-Translation-Pipeline/internal/registry"
	"github.com/dhru84/Audio-Translation-Pipeline/internal/storage"
)

// Service is the boundary the HTTP layer talks to: it turns validated
// submissions into registered tasks and answers status queries.
type Service struct {
	registry  *registry.Registry
	workspace *storage.Workspace
	driver    *Driver
	logger    *slog.Logger
}

// NewService creates a Service.
func NewService(reg *registry.Registry, ws *storage.Workspace, driver *Driver, logger *slog.Logger) *Service {
	return &Service{registry: reg, workspace: ws, driver: driver, logger: logger}
}

// Submit stores the upload, registers a queued task and launches the
// pipeline. It returns as soon as the task exists; processing happens
// in the background.
func (s *Service) Submit(ctx context.Context, sub *domain.Submission) (domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return domain.Task{}, err
	}

	id := uuid.New()

	inputPath, err := s.workspace.SaveUpload(id, sub.Filename, sub.File)
	if err != nil {
		return domain.Task{}, fmt.Errorf("store upload: %w", err)
	}

	task, err := s.registry.Create(id, domain.TaskConfig{
		SourceLanguage: sub.SourceLanguage,
		TargetLanguage: sub.TargetLanguage,
		APIKey:         sub.APIKey,
		OutputDir:      sub.OutputDir,
		InputFile:      inputPath,
	})
	if err != nil {
		if rmErr := s.workspace.Remove(id); rmErr != nil {
			s.logger.Warn("failed to clean working area after create failure", "task_id", id, "error", rmErr)
		}
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}

	metrics.TasksCreated.Inc()
	s.logger.Info("task created",
		"task_id", task.ID,
		"source_language", sub.SourceLanguage,
		"target_language", sub.TargetLanguage,
		"file", sub.Filename,
	)

	s.driver.Launch(task)
	return task, nil
}

// Status returns the current registry snapshot of a task.
func (s *Service) Status(ctx context.Context, id uuid.UUID) (domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return domain.Task{}, err
	}
	return s.registry.Get(id)
}
