package errors

import (
	"errors"
	"fmt"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrTaskFinished = errors.New("task already in terminal state")
	ErrEmptyAudio   = errors.New("audio stream is empty")
)

// Stage identifies the pipeline step a failure originated from.
type Stage string

const (
	StageSplit      Stage = "split"
	StageDenoise    Stage = "denoise"
	StageTranscribe Stage = "transcribe"
	StageTranslate  Stage = "translate"
	StageSynthesize Stage = "synthesize"
	StageMerge      Stage = "merge"
)

// ValidationError reports a rejected submission. No task is created
// when one of these is returned.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// SplitError reports a failure to partition the source audio.
type SplitError struct {
	Cause error
}

func (e *SplitError) Error() string { return fmt.Sprintf("split audio: %v", e.Cause) }
func (e *SplitError) Unwrap() error { return e.Cause }

// TranscriptionError reports a speech-to-text failure for one chunk.
type TranscriptionError struct {
	Cause error
}

func (e *TranscriptionError) Error() string { return fmt.Sprintf("transcribe: %v", e.Cause) }
func (e *TranscriptionError) Unwrap() error { return e.Cause }

// TranslationError reports a text translation failure for one chunk.
type TranslationError struct {
	Cause error
}

func (e *TranslationError) Error() string { return fmt.Sprintf("translate: %v", e.Cause) }
func (e *TranslationError) Unwrap() error { return e.Cause }

// SynthesisError reports a text-to-speech failure for one chunk.
type SynthesisError struct {
	Cause error
}

func (e *SynthesisError) Error() string { return fmt.Sprintf("synthesize: %v", e.Cause) }
func (e *SynthesisError) Unwrap() error { return e.Cause }

// MergeError reports a failure to assemble the final output.
type MergeError struct {
	Cause error
}

func (e *MergeError) Error() string { return fmt.Sprintf("merge chunks: %v", e.Cause) }
func (e *MergeError) Unwrap() error { return e.Cause }

// PipelineError carries the failing stage and, when the failure is
// scoped to a single chunk, that chunk's index. A nil ChunkIndex means
// the whole task failed (for example a split failure).
type PipelineError struct {
	ChunkIndex *int
	Stage      Stage
	Cause      error
}

func (e *PipelineError) Error() string {
	if e.ChunkIndex != nil {
		return fmt.Sprintf("chunk %d: stage %s: %v", *e.ChunkIndex, e.Stage, e.Cause)
	}
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Cause)
}

func (e *PipelineError) Unwrap() error { return e.Cause }

// ChunkFailure builds a PipelineError scoped to one chunk.
func ChunkFailure(index int, stage Stage, cause error) *PipelineError {
	return &PipelineError{ChunkIndex: &index, Stage: stage, Cause: cause}
}

// TaskFailure builds a PipelineError covering the whole task.
func TaskFailure(stage Stage, cause error) *PipelineError {
	return &PipelineError{Stage: stage, Cause: cause}
}
