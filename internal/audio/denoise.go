package audio

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Gate is a spectral-gate style noise reducer: it estimates the noise
// floor from the quietest windows of the clip and attenuates everything
// below a threshold derived from it. PropDecrease controls how hard
// below-threshold audio is reduced (0..1).
type Gate struct {
	PropDecrease float64
}

// NewGate returns a Gate with the reduction strength used by the
// pipeline by default.
func NewGate() Gate {
	return Gate{PropDecrease: 0.8}
}

// Denoise applies the gate to the clip. The context is honored between
// windows so a cancelled task does not keep burning CPU.
func (g Gate) Denoise(ctx context.Context, c Clip) (Clip, error) {
	if c.Empty() {
		return Clip{}, fmt.Errorf("cannot denoise empty clip")
	}

	// 20ms analysis windows.
	window := c.SampleRate / 50
	if window < 1 {
		window = 1
	}

	var rms []float64
	for i := 0; i < len(c.Samples); i += window {
		end := i + window
		if end > len(c.Samples) {
			end = len(c.Samples)
		}
		rms = append(rms, windowRMS(c.Samples[i:end]))
	}

	// Noise floor: mean energy of the quietest 10% of windows.
	sorted := append([]float64(nil), rms...)
	sort.Float64s(sorted)
	quiet := sorted[:maxInt(1, len(sorted)/10)]
	floor := 0.0
	for _, v := range quiet {
		floor += v
	}
	floor /= float64(len(quiet))
	threshold := floor * 2

	out := make([]float64, len(c.Samples))
	for w := 0; w < len(rms); w++ {
		if err := ctx.Err(); err != nil {
			return Clip{}, err
		}
		start := w * window
		end := start + window
		if end > len(c.Samples) {
			end = len(c.Samples)
		}
		gain := 1.0
		if rms[w] <= threshold {
			gain = 1 - g.PropDecrease
		}
		for i := start; i < end; i++ {
			out[i] = c.Samples[i] * gain
		}
	}
	return Clip{SampleRate: c.SampleRate, Samples: out}, nil
}

func windowRMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
