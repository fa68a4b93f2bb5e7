package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhru84/Audio-Translation-Pipeline/internal/domain"
	errpkg "github.com/dhru84/Audio-Translation-Pipeline/internal/errors"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

type mockService struct {
	submitCalls int
	submitTask  domain.Task
	submitErr   error

	statusTask domain.Task
	statusErr  error
}

func (m *mockService) Submit(ctx context.Context, sub *domain.Submission) (domain.Task, error) {
	m.submitCalls++
	return m.submitTask, m.submitErr
}

func (m *mockService) Status(ctx context.Context, id uuid.UUID) (domain.Task, error) {
	return m.statusTask, m.statusErr
}

const testMaxUpload = 100 << 20

type formField struct {
	key, value string
}

// multipartBody builds a submission body with an audio_file part plus
// any extra form fields.
func multipartBody(t *testing.T, filename string, content []byte, fields ...formField) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("audio_file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)

	for _, f := range fields {
		require.NoError(t, mw.WriteField(f.key, f.value))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func defaultFields() []formField {
	return []formField{
		{"api_key", "test-key"},
		{"source_language", "en-IN"},
		{"target_language", "kn-IN"},
		{"output_directory", "output"},
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestConvert_Accepted(t *testing.T) {
	taskID := uuid.New()
	svc := &mockService{submitTask: domain.Task{ID: taskID, Status: domain.TaskStatusQueued}}
	h := NewTaskHandler(svc, testMaxUpload, newTestLogger())

	body, contentType := multipartBody(t, "speech.wav", []byte("RIFFdata"), defaultFields()...)
	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Convert(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "Processing started", resp["message"])
	assert.Equal(t, taskID.String(), resp["task_id"])
	assert.Equal(t, 1, svc.submitCalls)
}

func TestConvert_RejectsBadExtension(t *testing.T) {
	svc := &mockService{}
	h := NewTaskHandler(svc, testMaxUpload, newTestLogger())

	body, contentType := multipartBody(t, "speech.ogg", []byte("data"), defaultFields()...)
	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Convert(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "invalid file format")
	assert.Zero(t, svc.submitCalls, "a rejected upload must not create a task")
}

func TestConvert_RejectsEmptyFile(t *testing.T) {
	svc := &mockService{}
	h := NewTaskHandler(svc, testMaxUpload, newTestLogger())

	body, contentType := multipartBody(t, "speech.wav", nil, defaultFields()...)
	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Convert(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.submitCalls)
}

func TestConvert_RejectsMissingAPIKey(t *testing.T) {
	svc := &mockService{}
	h := NewTaskHandler(svc, testMaxUpload, newTestLogger())

	body, contentType := multipartBody(t, "speech.wav", []byte("RIFFdata"),
		formField{"source_language", "en-IN"},
		formField{"target_language", "kn-IN"},
	)
	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Convert(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.submitCalls)
}

func TestConvert_RejectsBadLanguageCode(t *testing.T) {
	svc := &mockService{}
	h := NewTaskHandler(svc, testMaxUpload, newTestLogger())

	body, contentType := multipartBody(t, "speech.wav", []byte("RIFFdata"),
		formField{"api_key", "test-key"},
		formField{"source_language", "english"},
		formField{"target_language", "kn-IN"},
	)
	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Convert(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.submitCalls)
}

func TestConvert_RejectsMissingFile(t *testing.T) {
	svc := &mockService{}
	h := NewTaskHandler(svc, testMaxUpload, newTestLogger())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("api_key", "test-key"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/convert", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	h.Convert(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "no audio file")
	assert.Zero(t, svc.submitCalls)
}

func statusRequest(id string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/status/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("taskID", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestStatus_ReturnsSnapshot(t *testing.T) {
	taskID := uuid.New()
	svc := &mockService{statusTask: domain.Task{
		ID:          taskID,
		Status:      domain.TaskStatusProcessing,
		Phase:       domain.PhaseChunks,
		ChunksDone:  1,
		ChunksTotal: 3,
		Percent:     40,
	}}
	h := NewTaskHandler(svc, testMaxUpload, newTestLogger())

	rec := httptest.NewRecorder()
	h.Status(rec, statusRequest(taskID.String()))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "processing", resp["status"])
	assert.Equal(t, float64(40), resp["percent"])
	assert.Equal(t, "Processing chunk 2/3", resp["progress"])
}

func TestStatus_CompletedIncludesOutput(t *testing.T) {
	taskID := uuid.New()
	svc := &mockService{statusTask: domain.Task{
		ID:         taskID,
		Status:     domain.TaskStatusCompleted,
		Phase:      domain.PhaseDone,
		Percent:    100,
		OutputPath: "output/final_translated_audio_kn.wav",
	}}
	h := NewTaskHandler(svc, testMaxUpload, newTestLogger())

	rec := httptest.NewRecorder()
	h.Status(rec, statusRequest(taskID.String()))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "completed", resp["status"])
	assert.Equal(t, "output/final_translated_audio_kn.wav", resp["output_file"])
}

func TestStatus_UnknownTask(t *testing.T) {
	svc := &mockService{statusErr: errpkg.ErrTaskNotFound}
	h := NewTaskHandler(svc, testMaxUpload, newTestLogger())

	rec := httptest.NewRecorder()
	h.Status(rec, statusRequest(uuid.NewString()))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatus_InvalidID(t *testing.T) {
	svc := &mockService{}
	h := NewTaskHandler(svc, testMaxUpload, newTestLogger())

	rec := httptest.NewRecorder()
	h.Status(rec, statusRequest("not-a-uuid"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
