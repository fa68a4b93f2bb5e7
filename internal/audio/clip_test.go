package audio

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tone(sampleRate int, d time.Duration, amplitude float64) Clip {
	n := int(d.Seconds() * float64(sampleRate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate))
	}
	return Clip{SampleRate: sampleRate, Samples: samples}
}

func TestClip_Duration(t *testing.T) {
	c := tone(8000, 2*time.Second, 0.5)
	assert.InDelta(t, 2.0, c.Duration().Seconds(), 0.001)

	assert.Equal(t, time.Duration(0), Clip{}.Duration())
}

func TestClip_Slice(t *testing.T) {
	c := tone(8000, 10*time.Second, 0.5)

	s := c.Slice(2*time.Second, 5*time.Second)
	assert.InDelta(t, 3.0, s.Duration().Seconds(), 0.001)

	// Bounds beyond the clip are clamped.
	s = c.Slice(8*time.Second, 20*time.Second)
	assert.InDelta(t, 2.0, s.Duration().Seconds(), 0.001)

	s = c.Slice(20*time.Second, 30*time.Second)
	assert.True(t, s.Empty())
}

func TestConcat(t *testing.T) {
	a := Clip{SampleRate: 8000, Samples: []float64{0.1, 0.1}}
	b := Clip{SampleRate: 8000, Samples: []float64{0.2, 0.2}}

	merged, err := Concat(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.1, 0.2, 0.2}, merged.Samples)

	_, err = Concat(a, Clip{SampleRate: 16000, Samples: []float64{0.3}})
	assert.Error(t, err)

	_, err = Concat()
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	c := Clip{SampleRate: 8000, Samples: []float64{0.1, -0.2, 0.05}}
	n := Normalize(c)

	peak := 0.0
	for _, s := range n.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	assert.InDelta(t, 0.95, peak, 0.001)

	// All-silence input stays untouched.
	silent := Silence(8000, time.Second)
	assert.Equal(t, silent.Samples, Normalize(silent).Samples)
}

func TestTimeStretch(t *testing.T) {
	c := tone(8000, 4*time.Second, 0.5)

	faster := TimeStretch(c, 2.0)
	assert.InDelta(t, 2.0, faster.Duration().Seconds(), 0.01)

	slower := TimeStretch(c, 0.5)
	assert.InDelta(t, 8.0, slower.Duration().Seconds(), 0.01)
}

func TestFitToDuration_WithinTolerance(t *testing.T) {
	c := tone(8000, 29*time.Second, 0.5)

	// 29s vs 30s target is within 5%: accepted as-is.
	fitted := FitToDuration(c, 30*time.Second, 0.05)
	assert.InDelta(t, 29.0, fitted.Duration().Seconds(), 0.01)
}

func TestFitToDuration_StretchAndPad(t *testing.T) {
	// 20s of speech for a 30s span: stretch rate clamps at 0.9, the
	// rest is silence padding. Either way the result lands exactly on
	// target.
	c := tone(8000, 20*time.Second, 0.5)
	fitted := FitToDuration(c, 30*time.Second, 0.05)
	assert.InDelta(t, 30.0, fitted.Duration().Seconds(), 0.01)
}

func TestFitToDuration_CompressAndTrim(t *testing.T) {
	// 50s of speech for a 30s span: rate clamps at 1.5, the overshoot
	// is trimmed.
	c := tone(8000, 50*time.Second, 0.5)
	fitted := FitToDuration(c, 30*time.Second, 0.05)
	assert.InDelta(t, 30.0, fitted.Duration().Seconds(), 0.01)
}
