// Package waveform defines the immutable value types the store operates
// on: a Complex number and a WavePattern (the amplitude/phase pair a
// pattern is persisted and compared as).
package waveform

import "math"

// Complex is an immutable complex number. All operations return a new
// value rather than mutating the receiver.
type Complex struct {
	Real float64
	Imag float64
}

// NewComplex constructs a Complex from its real and imaginary parts.
func NewComplex(real, imag float64) Complex {
	return Complex{Real: real, Imag: imag}
}

// FromPolar constructs a Complex from amplitude and phase (radians).
func FromPolar(amp, phase float64) Complex {
	return Complex{Real: amp * math.Cos(phase), Imag: amp * math.Sin(phase)}
}

// Add returns c + other.
func (c Complex) Add(other Complex) Complex {
	return Complex{Real: c.Real + other.Real, Imag: c.Imag + other.Imag}
}

// Mul returns c * other.
func (c Complex) Mul(other Complex) Complex {
	return Complex{
		Real: c.Real*other.Real - c.Imag*other.Imag,
		Imag: c.Real*other.Imag + c.Imag*other.Real,
	}
}

// Scale returns c scaled by a real factor.
func (c Complex) Scale(factor float64) Complex {
	return Complex{Real: c.Real * factor, Imag: c.Imag * factor}
}

// Conjugate returns the complex conjugate of c.
func (c Complex) Conjugate() Complex {
	return Complex{Real: c.Real, Imag: -c.Imag}
}

// Abs returns the magnitude of c.
func (c Complex) Abs() float64 {
	return math.Hypot(c.Real, c.Imag)
}

// AbsSquared returns the squared magnitude of c, avoiding the sqrt in Abs.
func (c Complex) AbsSquared() float64 {
	return c.Real*c.Real + c.Imag*c.Imag
}

// Phase returns atan2(Imag, Real).
func (c Complex) Phase() float64 {
	return math.Atan2(c.Imag, c.Real)
}
