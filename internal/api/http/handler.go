package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dhru84/Audio-Translation-Pipeline/internal/domain"
	errpkg "github.com/dhru84/Audio-Translation-Pipeline/internal/errors"
	"github.com/dhru84/Audio-Translation-Pipeline/internal/metrics"
	"github.com/dhru84/Audio-Translation-Pipeline/internal/validation"
)

// Form parse buffer; the overall request size is capped separately by
// MaxBytesReader.
const multipartMemory = 32 << 20

// PipelineServiceI defines the interface for the task pipeline boundary.
type PipelineServiceI interface {
	Submit(ctx context.Context, sub *domain.Submission) (domain.Task, error)
	Status(ctx context.Context, id uuid.UUID) (domain.Task, error)
}

// TaskHandler handles HTTP requests for audio translation tasks.
type TaskHandler struct {
	service       PipelineServiceI
	validator     *validator.Validate
	maxUploadSize int64
	logger        *slog.Logger
}

// NewTaskHandler creates a TaskHandler with the provided service and logger.
func NewTaskHandler(service PipelineServiceI, maxUploadSize int64, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		service:       service,
		validator:     validation.New(),
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Convert handles POST /convert: validates the multipart submission and
// starts an asynchronous translation task. Validation failures are
// returned synchronously and never create a task.
func (h *TaskHandler) Convert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		metrics.ValidationRejections.Inc()
		h.logger.Warn("failed to parse submission", "error", err)
		writeError(w, http.StatusBadRequest, "invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("audio_file")
	if err != nil {
		metrics.ValidationRejections.Inc()
		writeError(w, http.StatusBadRequest, "no audio file uploaded")
		return
	}
	defer file.Close()

	sub := &domain.Submission{
		APIKey:         r.FormValue("api_key"),
		SourceLanguage: formValueOr(r, "source_language", "en-IN"),
		TargetLanguage: formValueOr(r, "target_language", "kn-IN"),
		OutputDir:      formValueOr(r, "output_directory", "output"),
		Filename:       header.Filename,
		Size:           header.Size,
		File:           file,
	}

	if err := validation.ValidateUpload(sub.Filename, sub.Size); err != nil {
		metrics.ValidationRejections.Inc()
		h.logger.Warn("upload rejected", "file", sub.Filename, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.validator.Struct(sub); err != nil {
		metrics.ValidationRejections.Inc()
		h.logger.Warn("validation failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.service.Submit(ctx, sub)
	if err != nil {
		h.logger.Error("failed to create task", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusAccepted, domain.SubmitResponse{
		Message: "Processing started",
		TaskID:  task.ID,
	})
}

// Status handles GET /status/{taskID}: returns the current registry
// snapshot for a task.
func (h *TaskHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task ID")
		return
	}

	task, err := h.service.Status(ctx, taskID)
	if err != nil {
		if errors.Is(err, errpkg.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		h.logger.Error("failed to get task", "task_id", taskID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, domain.StatusFromTask(task))
}

func formValueOr(r *http.Request, key, fallback string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
