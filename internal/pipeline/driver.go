package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dhru84/Audio-Translation-Pipeline/internal/audio"
	"github.com/dhru84/Audio-Translation-Pipeline/internal/domain"
	errpkg "github.com/dhru84/Audio-Translation-Pipeline/internal/errors"
	"github.com/dhru84/Audio-Translation-Pipeline/internal/metrics"
	"github.com/dhru84/Audio-Translation-Pipeline/internal/registry"
	"github.com/dhru84/Audio-Translation-Pipeline/internal/storage"
	"github.com/dhru84/Audio-Translation-Pipeline/internal/validation"
)

// ProcessorFactory builds a chunk processor bound to one task's API
// credential.
type ProcessorFactory func(apiKey string) *Processor

// Driver orchestrates the per-task pipeline: split -> per-chunk
// processing with bounded concurrency -> merge. Each task runs on its
// own goroutine so submission never blocks, and one task's failure or
// load never affects another's progress. All state changes go through
// the registry.
type Driver struct {
	registry     *registry.Registry
	workspace    *storage.Workspace
	splitter     Splitter
	merger       *Merger
	processorFor ProcessorFactory
	workers      int
	sampleRate   int
	logger       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDriver wires the pipeline components together. workers bounds
// in-flight chunk processing per task (external-service rate limits);
// sampleRate is the rate non-WAV uploads are converted to.
func NewDriver(
	reg *registry.Registry,
	ws *storage.Workspace,
	splitter Splitter,
	merger *Merger,
	processorFor ProcessorFactory,
	workers int,
	sampleRate int,
	logger *slog.Logger,
) *Driver {
	ctx, cancel := context.WithCancel(context.Background())
	return &Driver{
		registry:     reg,
		workspace:    ws,
		splitter:     splitter,
		merger:       merger,
		processorFor: processorFor,
		workers:      workers,
		sampleRate:   sampleRate,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Launch starts processing a queued task in the background and returns
// immediately.
func (d *Driver) Launch(task domain.Task) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(d.ctx, task)
	}()
}

func (d *Driver) run(ctx context.Context, task domain.Task) {
	id := task.ID
	logger := d.logger.With("task_id", id)
	logger.Info("processing task", "input", task.Config.InputFile)

	if _, err := d.registry.Update(id, func(t *domain.Task) {
		t.Status = domain.TaskStatusProcessing
		t.Phase = domain.PhaseSplitting
	}); err != nil {
		d.fail(id, err)
		return
	}

	clip, err := d.loadInput(ctx, task)
	if err != nil {
		d.fail(id, errpkg.TaskFailure(errpkg.StageSplit, err))
		return
	}

	// Normalize the source before splitting so every chunk sees
	// consistent levels.
	clip = audio.Normalize(clip)

	chunks, err := d.splitter.Split(clip)
	if err != nil {
		d.fail(id, err)
		return
	}
	logger.Info("audio split", "chunks", len(chunks), "duration", clip.Duration())
	d.persistChunks(id, chunks)

	if _, err := d.registry.Update(id, func(t *domain.Task) {
		t.Phase = domain.PhaseChunks
		t.ChunksTotal = len(chunks)
	}); err != nil {
		d.fail(id, err)
		return
	}

	processor := d.processorFor(task.Config.APIKey)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i := range chunks {
		i := i
		g.Go(func() error {
			// A sibling failure cancels the group: skip chunks that
			// have not started yet instead of wasting external calls.
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := processor.Process(gctx, &chunks[i], task.Config); err != nil {
				return err
			}
			if _, err := d.registry.Update(id, func(t *domain.Task) {
				t.ChunksDone++
			}); err != nil {
				logger.Error("failed to record chunk completion", "chunk", chunks[i].Index, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Processed sibling chunks are discarded along with the
		// working area; no partial output is ever exposed.
		d.fail(id, err)
		return
	}

	if _, err := d.registry.Update(id, func(t *domain.Task) {
		t.Phase = domain.PhaseMerging
	}); err != nil {
		d.fail(id, err)
		return
	}

	outputPath := OutputPath(task.Config.OutputDir, task.Config.TargetLanguage)
	if err := d.merger.Merge(chunks, outputPath); err != nil {
		d.fail(id, errpkg.TaskFailure(errpkg.StageMerge, err))
		return
	}

	if _, err := d.registry.Update(id, func(t *domain.Task) {
		t.Status = domain.TaskStatusCompleted
		t.Phase = domain.PhaseDone
		t.OutputPath = outputPath
	}); err != nil {
		// The completion transition did not land, so the output must
		// not survive either: a failed task never exposes a result.
		if rmErr := os.Remove(outputPath); rmErr != nil {
			logger.Warn("failed to remove output after completion failure", "error", rmErr)
		}
		d.fail(id, err)
		return
	}

	metrics.TasksCompleted.Inc()
	logger.Info("task completed", "output", outputPath)

	if err := d.workspace.Remove(id); err != nil {
		logger.Warn("failed to clean working area", "error", err)
	}
}

// loadInput decodes the saved upload, converting non-WAV formats
// through ffmpeg first.
func (d *Driver) loadInput(ctx context.Context, task domain.Task) (audio.Clip, error) {
	path := task.Config.InputFile
	if !validation.IsWAV(path) {
		dir, err := d.workspace.TaskDir(task.ID)
		if err != nil {
			return audio.Clip{}, err
		}
		converted, err := audio.ConvertToWAV(ctx, path, dir, d.sampleRate)
		if err != nil {
			return audio.Clip{}, fmt.Errorf("convert upload to wav: %w", err)
		}
		path = converted
	}
	return audio.DecodeWAVFile(path)
}

// persistChunks writes split chunk files into the task's working area.
// These are debugging artifacts; failure to write them never fails the
// task.
func (d *Driver) persistChunks(id uuid.UUID, chunks []domain.Chunk) {
	for _, c := range chunks {
		data, err := audio.EncodeWAV(c.Raw)
		if err == nil {
			err = d.workspace.WriteChunk(id, c.Index, data)
		}
		if err != nil {
			d.logger.Warn("failed to persist chunk file", "task_id", id, "chunk", c.Index, "error", err)
		}
	}
}

func (d *Driver) fail(id uuid.UUID, cause error) {
	if _, err := d.registry.Update(id, func(t *domain.Task) {
		t.Status = domain.TaskStatusFailed
		t.Error = cause.Error()
	}); err != nil {
		d.logger.Error("failed to record task failure", "task_id", id, "error", err)
	}
	metrics.TasksFailed.Inc()
	d.logger.Error("task failed", "task_id", id, "error", cause)

	if err := d.workspace.Remove(id); err != nil {
		d.logger.Warn("failed to clean working area", "task_id", id, "error", err)
	}
}

// Shutdown cancels all in-flight tasks and waits for their goroutines
// to drain, bounded by ctx.
func (d *Driver) Shutdown(ctx context.Context) error {
	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("pipeline driver shutdown completed")
		return nil
	case <-ctx.Done():
		d.logger.Warn("pipeline driver shutdown timed out")
		return ctx.Err()
	}
}
