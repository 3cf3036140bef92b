package waveform_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resonancedb/resonancedb/pkg/errs"
	"github.com/resonancedb/resonancedb/pkg/waveform"
)

func TestComplexArithmetic(t *testing.T) {
	a := waveform.NewComplex(1, 2)
	b := waveform.NewComplex(3, -1)

	assert.Equal(t, waveform.NewComplex(4, 1), a.Add(b))
	assert.Equal(t, waveform.NewComplex(1*3-2*-1, 1*-1+2*3), a.Mul(b))
	assert.Equal(t, waveform.NewComplex(2, 4), a.Scale(2))
	assert.Equal(t, waveform.NewComplex(1, -2), a.Conjugate())
	assert.InDelta(t, math.Hypot(1, 2), a.Abs(), 1e-12)
	assert.InDelta(t, 5.0, a.AbsSquared(), 1e-12)
}

func TestFromPolarAndPhase(t *testing.T) {
	c := waveform.FromPolar(2, math.Pi/2)
	assert.InDelta(t, 0, c.Real, 1e-9)
	assert.InDelta(t, 2, c.Imag, 1e-9)
	assert.InDelta(t, math.Pi/2, c.Phase(), 1e-9)
}

func TestNewRejectsLengthMismatch(t *testing.T) {
	_, err := waveform.New([]float64{1, 2}, []float64{1})
	require.Error(t, err)
	assert.True(t, errs.IsPatternError(err))
}

func TestNewRejectsEmptyPattern(t *testing.T) {
	_, err := waveform.New(nil, nil)
	require.Error(t, err)
	assert.True(t, errs.IsPatternError(err))
}

func TestNewRejectsNonFiniteSamples(t *testing.T) {
	_, err := waveform.New([]float64{math.NaN()}, []float64{0})
	require.Error(t, err)

	_, err = waveform.New([]float64{0}, []float64{math.Inf(1)})
	require.Error(t, err)
}

func TestNewAcceptsValidPattern(t *testing.T) {
	p, err := waveform.New([]float64{1, 2, 3}, []float64{0, math.Pi / 2, math.Pi})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Len())
	assert.InDelta(t, 14.0, p.Energy(), 1e-9)
}

func TestWavePatternToComplex(t *testing.T) {
	p, err := waveform.New([]float64{1}, []float64{0})
	require.NoError(t, err)
	cs := p.ToComplex()
	require.Len(t, cs, 1)
	assert.InDelta(t, 1, cs[0].Real, 1e-9)
	assert.InDelta(t, 0, cs[0].Imag, 1e-9)
}

func TestMeanPhaseNormalizes(t *testing.T) {
	p, err := waveform.New([]float64{1, 1}, []float64{math.Pi, math.Pi})
	require.NoError(t, err)
	assert.InDelta(t, math.Pi, p.MeanPhase(), 1e-9)
}

func TestNormalizePhaseBoundaryCases(t *testing.T) {
	assert.InDelta(t, math.Pi, waveform.NormalizePhase(math.Pi), 1e-9)
	assert.InDelta(t, math.Pi, waveform.NormalizePhase(-math.Pi), 1e-9)
	assert.InDelta(t, 1.0, waveform.NormalizePhase(1.0), 1e-9)
	assert.InDelta(t, -2*math.Pi+4, waveform.NormalizePhase(4), 1e-9)
}

func TestWrapPhaseDeltaMatchesNormalizePhase(t *testing.T) {
	for _, x := range []float64{0, 1.5, -1.5, math.Pi, -math.Pi, 10} {
		assert.Equal(t, waveform.NormalizePhase(x), waveform.WrapPhaseDelta(x))
	}
}
