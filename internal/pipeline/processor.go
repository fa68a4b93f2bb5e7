package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dhru84/Audio-Translation-Pipeline/internal/audio"
	"github.com/dhru84/Audio-Translation-Pipeline/internal/domain"
	errpkg "github.com/dhru84/Audio-Translation-Pipeline/internal/errors"
	"github.com/dhru84/Audio-Translation-Pipeline/internal/metrics"
)

// SpeechToText transcribes chunk audio in the source language.
type SpeechToText interface {
	Transcribe(ctx context.Context, wavData []byte, language string) (string, error)
}

// Translator converts text between languages.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// TextToSpeech synthesizes speech for translated text. Pace adjusts
// speaking speed; the response is WAV data.
type TextToSpeech interface {
	Synthesize(ctx context.Context, text, targetLang string, pace float64, sampleRate int) ([]byte, error)
}

// Denoiser reduces background noise in a clip.
type Denoiser interface {
	Denoise(ctx context.Context, c audio.Clip) (audio.Clip, error)
}

// Alignment tolerance: synthesized audio within this fraction of the
// original span is accepted without stretching.
const durationTolerance = 0.05

// Speaking pace hint bounds for synthesis.
const (
	baseWordsPerMinute = 150
	minPace            = 0.6
	maxPace            = 1.8
)

// Processor runs one chunk through the four-stage transform:
// denoise -> transcribe -> translate -> synthesize, then aligns the
// synthesized duration to the chunk's original span.
type Processor struct {
	stt      SpeechToText
	tr       Translator
	tts      TextToSpeech
	denoiser Denoiser
	logger   *slog.Logger
}

// NewProcessor wires the external service clients into a Processor.
func NewProcessor(stt SpeechToText, tr Translator, tts TextToSpeech, denoiser Denoiser, logger *slog.Logger) *Processor {
	return &Processor{stt: stt, tr: tr, tts: tts, denoiser: denoiser, logger: logger}
}

// Process transforms the chunk in place. A denoise failure falls back
// to the raw segment and never fails the chunk; any other stage failure
// marks the chunk failed and returns a PipelineError carrying the chunk
// index and failing stage.
func (p *Processor) Process(ctx context.Context, chunk *domain.Chunk, cfg domain.TaskConfig) error {
	start := time.Now()

	working := chunk.Raw
	denoised, err := p.denoiser.Denoise(ctx, chunk.Raw)
	if err != nil {
		// Degrade, don't fail: quality loss here is less severe than
		// aborting the whole task.
		p.logger.Warn("denoise failed, falling back to raw audio",
			"chunk", chunk.Index, "error", err)
		metrics.DenoiseFallbacks.Inc()
	} else {
		working = denoised
		chunk.Stage = domain.ChunkStageDenoised
	}

	wavData, err := audio.EncodeWAV(working)
	if err != nil {
		return p.fail(chunk, errpkg.StageTranscribe, fmt.Errorf("encode chunk audio: %w", err))
	}

	transcript, err := p.stt.Transcribe(ctx, wavData, cfg.SourceLanguage)
	if err == nil && strings.TrimSpace(transcript) == "" {
		err = fmt.Errorf("empty transcript")
	}
	if err != nil {
		return p.fail(chunk, errpkg.StageTranscribe, &errpkg.TranscriptionError{Cause: err})
	}
	chunk.Transcript = transcript
	chunk.Stage = domain.ChunkStageTranscribed

	translated, err := p.tr.Translate(ctx, transcript, cfg.SourceLanguage, cfg.TargetLanguage)
	if err == nil && strings.TrimSpace(translated) == "" {
		err = fmt.Errorf("empty translation")
	}
	if err != nil {
		return p.fail(chunk, errpkg.StageTranslate, &errpkg.TranslationError{Cause: err})
	}
	chunk.TranslatedText = translated
	chunk.Stage = domain.ChunkStageTranslated

	pace := speechPace(translated, chunk.Span.Duration())
	synthData, err := p.tts.Synthesize(ctx, translated, cfg.TargetLanguage, pace, working.SampleRate)
	if err != nil {
		return p.fail(chunk, errpkg.StageSynthesize, &errpkg.SynthesisError{Cause: err})
	}

	synth, err := audio.DecodeWAVBytes(synthData)
	if err != nil {
		return p.fail(chunk, errpkg.StageSynthesize,
			&errpkg.SynthesisError{Cause: fmt.Errorf("decode synthesized audio: %w", err)})
	}

	// Clean up the generated speech before alignment, same fallback
	// policy as the input denoise.
	if cleaned, err := p.denoiser.Denoise(ctx, synth); err == nil {
		synth = cleaned
	}

	chunk.SynthesizedAudio = audio.FitToDuration(synth, chunk.Span.Duration(), durationTolerance)
	chunk.Stage = domain.ChunkStageSynthesized

	metrics.ChunksProcessed.Inc()
	metrics.ChunkDuration.Observe(time.Since(start).Seconds())
	p.logger.Debug("chunk processed",
		"chunk", chunk.Index,
		"span", chunk.Span.Duration(),
		"synthesized", chunk.SynthesizedAudio.Duration(),
		"pace", pace,
	)
	return nil
}

func (p *Processor) fail(chunk *domain.Chunk, stage errpkg.Stage, cause error) error {
	chunk.Stage = domain.ChunkStageFailed
	metrics.StageFailures.WithLabelValues(string(stage)).Inc()
	return errpkg.ChunkFailure(chunk.Index, stage, cause)
}

// speechPace estimates the speaking speed hint that makes the
// synthesized text land near the target duration, clamped to bounds
// that still sound natural.
func speechPace(text string, target time.Duration) float64 {
	words := len(strings.Fields(text))
	minutes := target.Minutes()
	if words == 0 || minutes <= 0 {
		return 1.0
	}

	pace := (float64(words) / minutes) / baseWordsPerMinute
	if pace < minPace {
		pace = minPace
	}
	if pace > maxPace {
		pace = maxPace
	}
	return pace
}
