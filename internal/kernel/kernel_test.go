package kernel_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resonancedb/resonancedb/internal/kernel"
	"github.com/resonancedb/resonancedb/pkg/waveform"
)

func mustPattern(t *testing.T, amp, phase []float64) waveform.WavePattern {
	t.Helper()
	p, err := waveform.New(amp, phase)
	require.NoError(t, err)
	return p
}

func TestCompareIdenticalPatternsScoresOne(t *testing.T) {
	k := kernel.New()
	p := mustPattern(t, []float64{1, 2, 3}, []float64{0, 0.5, 1})

	score, err := k.Compare(p, p, kernel.CompareOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestCompareOppositePhasesScoresZero(t *testing.T) {
	k := kernel.New()
	a := mustPattern(t, []float64{1}, []float64{0})
	b := mustPattern(t, []float64{1}, []float64{math.Pi})

	score, err := k.Compare(a, b, kernel.CompareOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, score, 1e-9)
}

func TestComparePenalizesMagnitudeMismatch(t *testing.T) {
	k := kernel.New()
	a := mustPattern(t, []float64{1}, []float64{0})
	b := mustPattern(t, []float64{10}, []float64{0})

	score, err := k.Compare(a, b, kernel.CompareOptions{})
	require.NoError(t, err)
	assert.Less(t, score, 1.0)
	assert.Greater(t, score, 0.0)
}

func TestCompareRejectsLengthMismatch(t *testing.T) {
	k := kernel.New()
	a := mustPattern(t, []float64{1, 2}, []float64{0, 0})
	b := mustPattern(t, []float64{1}, []float64{0})

	_, err := k.Compare(a, b, kernel.CompareOptions{})
	require.Error(t, err)
}

func TestCompareIgnorePhaseCollapsesPhaseDifference(t *testing.T) {
	k := kernel.New()
	a := mustPattern(t, []float64{2}, []float64{0})
	b := mustPattern(t, []float64{2}, []float64{math.Pi})

	score, err := k.Compare(a, b, kernel.CompareOptions{IgnorePhase: true})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestCompareZeroEnergyPatternsScoreZero(t *testing.T) {
	k := kernel.New()
	a := mustPattern(t, []float64{0}, []float64{0})
	b := mustPattern(t, []float64{0}, []float64{0})

	score, err := k.Compare(a, b, kernel.CompareOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestCompareWithPhaseDeltaReportsSignedMeanDelta(t *testing.T) {
	k := kernel.New()
	a := mustPattern(t, []float64{1, 1}, []float64{0, 0})
	b := mustPattern(t, []float64{1, 1}, []float64{0.2, 0.4})

	_, delta, err := k.CompareWithPhaseDelta(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, delta, 1e-9)
}

func TestCompareWithPhaseDeltaWrapsAcrossBoundary(t *testing.T) {
	k := kernel.New()
	a := mustPattern(t, []float64{1}, []float64{-math.Pi + 0.1})
	b := mustPattern(t, []float64{1}, []float64{math.Pi - 0.1})

	_, delta, err := k.CompareWithPhaseDelta(a, b)
	require.NoError(t, err)
	// The short way around the circle is -0.2, not +2*pi-0.2.
	assert.InDelta(t, -0.2, delta, 1e-9)
}

func TestCompareWithPhaseDeltaRejectsLengthMismatch(t *testing.T) {
	k := kernel.New()
	a := mustPattern(t, []float64{1, 2}, []float64{0, 0})
	b := mustPattern(t, []float64{1}, []float64{0})

	_, _, err := k.CompareWithPhaseDelta(a, b)
	require.Error(t, err)
}

func TestZoneClassifierClassifiesCoreFringeShadow(t *testing.T) {
	zc := kernel.NewZoneClassifier()

	assert.Equal(t, kernel.ZoneCore, zc.Classify(0.9, 0.1))
	assert.Equal(t, kernel.ZoneFringe, zc.Classify(0.5, 1.0))
	assert.Equal(t, kernel.ZoneShadow, zc.Classify(0.1, 1.0))
}

func TestZoneClassifierComputeScoreIsMonotonicInEnergy(t *testing.T) {
	zc := kernel.NewZoneClassifier()

	low := zc.ComputeScore(0.1, 0.0)
	high := zc.ComputeScore(0.9, 0.0)
	assert.Less(t, low, high)
}

func TestZoneClassifierComputeScoreDecaysWithPhaseDelta(t *testing.T) {
	zc := kernel.NewZoneClassifier()

	aligned := zc.ComputeScore(0.9, 0.0)
	misaligned := zc.ComputeScore(0.9, math.Pi)
	assert.Greater(t, aligned, misaligned)
}

func TestZoneClassifierComputeScoreClampsOutOfRangeEnergy(t *testing.T) {
	zc := kernel.NewZoneClassifier()

	assert.Equal(t, zc.ComputeScore(0, 0), zc.ComputeScore(-5, 0))
	assert.Equal(t, zc.ComputeScore(1, 0), zc.ComputeScore(5, 0))
}
