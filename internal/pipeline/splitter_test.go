package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhru84/Audio-Translation-Pipeline/internal/audio"
	errpkg "github.com/dhru84/Audio-Translation-Pipeline/internal/errors"
)

func testClip(sampleRate int, d time.Duration) audio.Clip {
	n := int(d.Seconds() * float64(sampleRate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5
	}
	return audio.Clip{SampleRate: sampleRate, Samples: samples}
}

func TestSplitter_65SecondsInto3Chunks(t *testing.T) {
	s := NewSplitter(30*time.Second, time.Second)

	chunks, err := s.Split(testClip(8000, 65*time.Second))
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.InDelta(t, 30.0, chunks[0].Span.Duration().Seconds(), 0.001)
	assert.InDelta(t, 30.0, chunks[1].Span.Duration().Seconds(), 0.001)
	assert.InDelta(t, 5.0, chunks[2].Span.Duration().Seconds(), 0.001)
}

func TestSplitter_IndicesContiguousAndDurationsSum(t *testing.T) {
	s := NewSplitter(30*time.Second, time.Second)

	for _, total := range []time.Duration{
		time.Second,
		30 * time.Second,
		31 * time.Second,
		2 * time.Minute,
	} {
		chunks, err := s.Split(testClip(8000, total))
		require.NoError(t, err, "total %s", total)

		var sum time.Duration
		for i, c := range chunks {
			assert.Equal(t, i, c.Index)
			assert.Equal(t, c.Span.Duration(), c.Raw.Duration())
			sum += c.Span.Duration()
		}
		assert.InDelta(t, total.Seconds(), sum.Seconds(), 0.01, "total %s", total)

		// No gaps or overlaps on the timeline.
		for i := 1; i < len(chunks); i++ {
			assert.Equal(t, chunks[i-1].Span.End, chunks[i].Span.Start)
		}
	}
}

func TestSplitter_RejectsEmptyAudio(t *testing.T) {
	s := NewSplitter(30*time.Second, time.Second)

	_, err := s.Split(audio.Clip{})
	var splitErr *errpkg.SplitError
	require.True(t, errors.As(err, &splitErr))
	assert.ErrorIs(t, err, errpkg.ErrEmptyAudio)
}

func TestSplitter_RejectsTooShortAudio(t *testing.T) {
	s := NewSplitter(30*time.Second, time.Second)

	_, err := s.Split(testClip(8000, 100*time.Millisecond))
	var splitErr *errpkg.SplitError
	assert.True(t, errors.As(err, &splitErr))
}
