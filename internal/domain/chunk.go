package domain

import (
	"time"

	"github.com/dhru84/Audio-Translation-Pipeline/internal/audio"
)

// ChunkStage marks how far a chunk has travelled through the pipeline.
type ChunkStage string

const (
	ChunkStageSplit       ChunkStage = "split"
	ChunkStageDenoised    ChunkStage = "denoised"
	ChunkStageTranscribed ChunkStage = "transcribed"
	ChunkStageTranslated  ChunkStage = "translated"
	ChunkStageSynthesized ChunkStage = "synthesized"
	ChunkStageFailed      ChunkStage = "failed"
)

// Span is a chunk's position on the source timeline.
type Span struct {
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
}

// Duration returns the original length of the span.
func (s Span) Duration() time.Duration {
	return s.End - s.Start
}

// Chunk is one fixed-duration segment of the source audio. Index is its
// stable identity: the merger reassembles strictly by index, never by
// completion order. A chunk belongs to exactly one task.
type Chunk struct {
	Index            int
	Span             Span
	Raw              audio.Clip
	Transcript       string
	TranslatedText   string
	SynthesizedAudio audio.Clip
	Stage            ChunkStage
}
