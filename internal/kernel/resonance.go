// Package kernel implements the ResonanceKernel pairwise scoring
// primitive and the ResonanceZoneClassifier that labels and scores a
// (energy, phaseShift) pair.
package kernel

import (
	"math"

	"github.com/resonancedb/resonancedb/pkg/errs"
	"github.com/resonancedb/resonancedb/pkg/waveform"
)

// CompareOptions configures Compare.
type CompareOptions struct {
	// IgnorePhase collapses each complex sample to (|c|, 0) before
	// scoring, so the comparison depends only on amplitude.
	IgnorePhase bool
}

// Resonance is the pairwise scoring primitive: immutable, stateless,
// callable concurrently from multiple query goroutines.
type Resonance struct{}

// New returns a Resonance kernel.
func New() *Resonance {
	return &Resonance{}
}

// Compare returns the interference energy between A and B in [0, 1]: the
// product of a normalized interference ratio and an AM-GM magnitude-match
// ratio, so two patterns of very different total energy cannot score 1
// even when perfectly aligned.
func (k *Resonance) Compare(a, b waveform.WavePattern, opts CompareOptions) (float64, error) {
	if a.Len() != b.Len() {
		return 0, errs.NewPatternError(
			errs.ErrPatternLengthMismatch, errs.ErrPatternLengthMismatch, errs.ErrorCodeLengthMismatch,
			"resonance kernel inputs have differing lengths",
		).WithDetail("lenA", a.Len()).WithDetail("lenB", b.Len())
	}

	sa := toComplex(a, opts.IgnorePhase)
	sb := toComplex(b, opts.IgnorePhase)

	ea, eb, interference := energies(sa, sb)
	if ea+eb == 0 {
		return 0, nil
	}

	interferenceRatio := 0.5 * interference / (ea + eb)
	amGMRatio := 2 * math.Sqrt(ea*eb) / (ea + eb)

	return interferenceRatio * amGMRatio, nil
}

// CompareWithPhaseDelta returns the same interference ratio as Compare
// (without the AM-GM penalty), plus the mean signed phase delta between B
// and A, wrapped to (-pi, pi].
func (k *Resonance) CompareWithPhaseDelta(a, b waveform.WavePattern) (energy float64, avgPhaseDelta float64, err error) {
	if a.Len() != b.Len() {
		return 0, 0, errs.NewPatternError(
			errs.ErrPatternLengthMismatch, errs.ErrPatternLengthMismatch, errs.ErrorCodeLengthMismatch,
			"resonance kernel inputs have differing lengths",
		).WithDetail("lenA", a.Len()).WithDetail("lenB", b.Len())
	}

	sa := toComplex(a, false)
	sb := toComplex(b, false)

	ea, eb, interference := energies(sa, sb)

	if ea+eb > 0 {
		energy = 0.5 * interference / (ea + eb)
	}

	n := a.Len()
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += waveform.WrapPhaseDelta(b.Phase[i] - a.Phase[i])
	}
	avgPhaseDelta = waveform.WrapPhaseDelta(sum / float64(n))

	return energy, avgPhaseDelta, nil
}

func toComplex(p waveform.WavePattern, ignorePhase bool) []waveform.Complex {
	c := p.ToComplex()
	if !ignorePhase {
		return c
	}
	out := make([]waveform.Complex, len(c))
	for i, v := range c {
		out[i] = waveform.NewComplex(v.Abs(), 0)
	}
	return out
}

func energies(sa, sb []waveform.Complex) (ea, eb, interference float64) {
	for i := range sa {
		ea += sa[i].AbsSquared()
		eb += sb[i].AbsSquared()
		interference += sa[i].Add(sb[i]).AbsSquared()
	}
	return ea, eb, interference
}
