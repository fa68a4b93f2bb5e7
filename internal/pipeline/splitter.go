package pipeline

import (
	"fmt"
	"time"

	"github.com/dhru84/Audio-Translation-Pipeline/internal/audio"
	"github.com/dhru84/Audio-Translation-Pipeline/internal/domain"
	errpkg "github.com/dhru84/Audio-Translation-Pipeline/internal/errors"
)

// Splitter partitions a decoded audio stream into fixed-duration
// ordered chunks. It is a pure function of the input audio and the
// chunk duration: chunk count is always ceil(total/chunk) and the
// produced indices are exactly 0..N-1 with no gaps or overlaps.
type Splitter struct {
	ChunkDuration time.Duration
	MinDuration   time.Duration
}

// NewSplitter returns a Splitter with the given chunk length. minDur is
// the shortest input accepted; zero-length streams are always rejected.
func NewSplitter(chunkDur, minDur time.Duration) Splitter {
	return Splitter{ChunkDuration: chunkDur, MinDuration: minDur}
}

// Split slices the clip into chunks. The final chunk may be shorter
// than the configured duration.
func (s Splitter) Split(clip audio.Clip) ([]domain.Chunk, error) {
	if clip.Empty() {
		return nil, &errpkg.SplitError{Cause: errpkg.ErrEmptyAudio}
	}

	total := clip.Duration()
	if total < s.MinDuration {
		return nil, &errpkg.SplitError{
			Cause: fmt.Errorf("audio too short: %s, need at least %s", total, s.MinDuration),
		}
	}

	var chunks []domain.Chunk
	for start := time.Duration(0); start < total; start += s.ChunkDuration {
		end := start + s.ChunkDuration
		if end > total {
			end = total
		}
		chunks = append(chunks, domain.Chunk{
			Index: len(chunks),
			Span:  domain.Span{Start: start, End: end},
			Raw:   clip.Slice(start, end),
			Stage: domain.ChunkStageSplit,
		})
	}
	return chunks, nil
}
