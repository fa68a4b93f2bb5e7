package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhru84/Audio-Translation-Pipeline/internal/audio"
	"github.com/dhru84/Audio-Translation-Pipeline/internal/domain"
	errpkg "github.com/dhru84/Audio-Translation-Pipeline/internal/errors"
)

// Merger concatenates processed chunks, strictly by index, into the
// final output file and normalizes loudness across the whole stream.
type Merger struct {
	logger *slog.Logger
}

// NewMerger creates a Merger.
func NewMerger(logger *slog.Logger) *Merger {
	return &Merger{logger: logger}
}

// Merge validates that the chunks form a complete synthesized set,
// reassembles them in original order regardless of completion order,
// and writes the result to outputPath. It never silently skips a chunk.
func (m *Merger) Merge(chunks []domain.Chunk, outputPath string) error {
	if len(chunks) == 0 {
		return &errpkg.MergeError{Cause: fmt.Errorf("no chunks to merge")}
	}

	ordered := make([]domain.Chunk, len(chunks))
	copy(ordered, chunks)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	clips := make([]audio.Clip, 0, len(ordered))
	for i, c := range ordered {
		if c.Index != i {
			return &errpkg.MergeError{
				Cause: fmt.Errorf("chunk index %d missing (found %d at position %d)", i, c.Index, i),
			}
		}
		if c.Stage != domain.ChunkStageSynthesized {
			return &errpkg.MergeError{
				Cause: fmt.Errorf("chunk %d not synthesized (stage %s)", c.Index, c.Stage),
			}
		}
		clips = append(clips, c.SynthesizedAudio)
	}

	combined, err := audio.Concat(clips...)
	if err != nil {
		return &errpkg.MergeError{Cause: err}
	}
	combined = audio.Normalize(combined)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return &errpkg.MergeError{Cause: fmt.Errorf("create output directory: %w", err)}
	}
	if err := audio.EncodeWAVFile(combined, outputPath); err != nil {
		return &errpkg.MergeError{Cause: err}
	}

	m.logger.Info("merged audio chunks",
		"chunks", len(ordered),
		"duration", combined.Duration(),
		"output", outputPath,
	)
	return nil
}

// OutputPath returns the final artifact location for a task's target
// language under the caller-specified output directory. The language
// part of the filename drops the region ("kn-IN" -> "kn").
func OutputPath(outputDir, targetLang string) string {
	lang := strings.SplitN(targetLang, "-", 2)[0]
	return filepath.Join(outputDir, fmt.Sprintf("final_translated_audio_%s.wav", lang))
}
