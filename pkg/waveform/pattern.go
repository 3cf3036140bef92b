package waveform

import (
	"math"

	"github.com/resonancedb/resonancedb/pkg/errs"
)

// WavePattern is an immutable pair of equal-length real arrays interpreted
// elementwise as a discrete complex spectrum: Amp[i], Phase[i] describe the
// i'th complex sample in polar form.
type WavePattern struct {
	Amp   []float64
	Phase []float64
}

// New validates and constructs a WavePattern. It returns a PatternError
// wrapping ErrInvalidPattern if the arrays differ in length, are empty, or
// contain a non-finite value.
func New(amp, phase []float64) (WavePattern, error) {
	if len(amp) != len(phase) {
		return WavePattern{}, errs.NewPatternError(
			errs.ErrInvalidPattern, errs.ErrInvalidPattern, errs.ErrorCodeInvalidInput,
			"amplitude and phase arrays must have equal length",
		).WithField("amp,phase").WithDetail("ampLen", len(amp)).WithDetail("phaseLen", len(phase))
	}
	if len(amp) == 0 {
		return WavePattern{}, errs.NewPatternError(
			errs.ErrInvalidPattern, errs.ErrInvalidPattern, errs.ErrorCodeInvalidInput,
			"pattern must have at least one sample",
		).WithField("amp")
	}
	for i := range amp {
		if math.IsNaN(amp[i]) || math.IsInf(amp[i], 0) {
			return WavePattern{}, errs.NewPatternError(
				errs.ErrInvalidPattern, errs.ErrInvalidPattern, errs.ErrorCodeInvalidInput,
				"amplitude sample is not finite",
			).WithField("amp").WithDetail("index", i)
		}
		if math.IsNaN(phase[i]) || math.IsInf(phase[i], 0) {
			return WavePattern{}, errs.NewPatternError(
				errs.ErrInvalidPattern, errs.ErrInvalidPattern, errs.ErrorCodeInvalidInput,
				"phase sample is not finite",
			).WithField("phase").WithDetail("index", i)
		}
	}

	return WavePattern{Amp: amp, Phase: phase}, nil
}

// Len returns the number of samples in the pattern.
func (p WavePattern) Len() int {
	return len(p.Amp)
}

// ToComplex converts the pattern to a complex sequence: c[i] =
// (amp[i]*cos(phase[i]), amp[i]*sin(phase[i])).
func (p WavePattern) ToComplex() []Complex {
	out := make([]Complex, len(p.Amp))
	for i := range p.Amp {
		out[i] = FromPolar(p.Amp[i], p.Phase[i])
	}
	return out
}

// MeanPhase returns the mean of Phase[], normalized to (-pi, pi].
func (p WavePattern) MeanPhase() float64 {
	sum := 0.0
	for _, ph := range p.Phase {
		sum += ph
	}
	return NormalizePhase(sum / float64(len(p.Phase)))
}

// Energy returns sum(|c[i]|^2) over the pattern's complex representation.
func (p WavePattern) Energy() float64 {
	total := 0.0
	for _, a := range p.Amp {
		total += a * a
	}
	return total
}

// NormalizePhase shifts x by multiples of 2*pi until the result lies in
// (-pi, pi].
func NormalizePhase(x float64) float64 {
	const twoPi = 2 * math.Pi
	x = math.Mod(x+math.Pi, twoPi)
	if x <= 0 {
		x += twoPi
	}
	return x - math.Pi
}

// WrapPhaseDelta maps delta into (-pi, pi] via repeated +/-2*pi adjustment.
func WrapPhaseDelta(delta float64) float64 {
	return NormalizePhase(delta)
}
