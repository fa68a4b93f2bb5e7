package audio

import (
	"fmt"
	"math"
	"time"
)

// Clip is decoded mono PCM audio held in memory. Samples are in the
// range [-1, 1].
type Clip struct {
	SampleRate int
	Samples    []float64
}

// Empty reports whether the clip carries no samples.
func (c Clip) Empty() bool {
	return len(c.Samples) == 0 || c.SampleRate <= 0
}

// Duration returns the playback length of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(c.Samples)) / float64(c.SampleRate) * float64(time.Second))
}

// Slice returns the portion of the clip between from and to. Bounds
// beyond the clip are clamped.
func (c Clip) Slice(from, to time.Duration) Clip {
	start := int(from.Seconds() * float64(c.SampleRate))
	end := int(to.Seconds() * float64(c.SampleRate))
	if start < 0 {
		start = 0
	}
	if end > len(c.Samples) {
		end = len(c.Samples)
	}
	if start >= end {
		return Clip{SampleRate: c.SampleRate}
	}
	out := make([]float64, end-start)
	copy(out, c.Samples[start:end])
	return Clip{SampleRate: c.SampleRate, Samples: out}
}

// Silence returns a clip of the given duration containing only silence.
func Silence(sampleRate int, d time.Duration) Clip {
	n := int(d.Seconds() * float64(sampleRate))
	if n < 0 {
		n = 0
	}
	return Clip{SampleRate: sampleRate, Samples: make([]float64, n)}
}

// Concat joins clips back to back. All clips must share a sample rate.
func Concat(clips ...Clip) (Clip, error) {
	if len(clips) == 0 {
		return Clip{}, fmt.Errorf("no clips to concatenate")
	}
	rate := clips[0].SampleRate
	total := 0
	for _, c := range clips {
		if c.SampleRate != rate {
			return Clip{}, fmt.Errorf("sample rate mismatch: %d vs %d", c.SampleRate, rate)
		}
		total += len(c.Samples)
	}
	out := make([]float64, 0, total)
	for _, c := range clips {
		out = append(out, c.Samples...)
	}
	return Clip{SampleRate: rate, Samples: out}, nil
}

// Normalize scales the clip so its peak sits at the target level,
// leaving a little headroom below full scale.
func Normalize(c Clip) Clip {
	const target = 0.95

	peak := 0.0
	for _, s := range c.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return c
	}
	gain := target / peak
	out := make([]float64, len(c.Samples))
	for i, s := range c.Samples {
		out[i] = s * gain
	}
	return Clip{SampleRate: c.SampleRate, Samples: out}
}

// TimeStretch changes playback speed by rate without preserving pitch:
// rate > 1 shortens the clip, rate < 1 lengthens it. Resampling is
// linear interpolation over the source samples.
func TimeStretch(c Clip, rate float64) Clip {
	if rate <= 0 || len(c.Samples) == 0 {
		return c
	}
	n := int(float64(len(c.Samples)) / rate)
	if n <= 0 {
		return Clip{SampleRate: c.SampleRate}
	}
	out := make([]float64, n)
	for i := range out {
		pos := float64(i) * rate
		j := int(pos)
		if j >= len(c.Samples)-1 {
			out[i] = c.Samples[len(c.Samples)-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = c.Samples[j]*(1-frac) + c.Samples[j+1]*frac
	}
	return Clip{SampleRate: c.SampleRate, Samples: out}
}

// Speed limits that keep stretched speech sounding natural.
const (
	minStretchRate = 0.9
	maxStretchRate = 1.5
)

// FitToDuration adjusts the clip so its duration matches target.
// Deviations within tolerance (a fraction, e.g. 0.05) are accepted
// as-is. Larger deviations are time-stretched with the rate clamped to
// natural speech limits, then padded with silence or trimmed to land
// exactly on target.
func FitToDuration(c Clip, target time.Duration, tolerance float64) Clip {
	if c.Empty() || target <= 0 {
		return c
	}
	actual := c.Duration()
	deviation := math.Abs(actual.Seconds()-target.Seconds()) / target.Seconds()
	if deviation <= tolerance {
		return c
	}

	rate := actual.Seconds() / target.Seconds()
	if rate < minStretchRate {
		rate = minStretchRate
	}
	if rate > maxStretchRate {
		rate = maxStretchRate
	}
	stretched := TimeStretch(c, rate)

	want := int(target.Seconds() * float64(c.SampleRate))
	if len(stretched.Samples) < want {
		pad := make([]float64, want-len(stretched.Samples))
		stretched.Samples = append(stretched.Samples, pad...)
	} else if len(stretched.Samples) > want {
		stretched.Samples = stretched.Samples[:want]
	}
	return stretched
}
