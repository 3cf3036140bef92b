package kernel

import "math"

// Zone is the coarse resonance-alignment label Classify assigns.
type Zone string

const (
	ZoneCore   Zone = "CORE"
	ZoneFringe Zone = "FRINGE"
	ZoneShadow Zone = "SHADOW"
)

// lutSize is the lookup table resolution (LUT in the design notes).
const lutSize = 1000

// ZoneClassifier labels (energy, phaseShift) pairs and computes a smooth
// composite zone score, using precomputed sigmoid and gaussian lookup
// tables so neither transcendental function is evaluated per query.
type ZoneClassifier struct {
	sigmoid [lutSize + 1]float64
	gauss   [lutSize + 1]float64
}

// NewZoneClassifier precomputes the sigmoid (energy shaping) and gaussian
// (phase-alignment shaping, sigma = pi/8) lookup tables.
func NewZoneClassifier() *ZoneClassifier {
	const sigma = math.Pi / 8

	zc := &ZoneClassifier{}
	for i := 0; i <= lutSize; i++ {
		x := float64(i) / float64(lutSize)
		zc.sigmoid[i] = 1 / (1 + math.Exp(-10*(x-0.5)))

		phase := math.Pi * float64(i) / float64(lutSize)
		zc.gauss[i] = math.Exp(-(phase * phase) / (2 * sigma * sigma))
	}
	return zc
}

// Classify labels a (energy, phaseShift) pair as CORE, FRINGE, or SHADOW.
func (zc *ZoneClassifier) Classify(energy, phaseShift float64) Zone {
	a := math.Abs(math.Mod(phaseShift, 2*math.Pi))

	switch {
	case energy >= 0.85 && a <= math.Pi/8:
		return ZoneCore
	case energy >= 0.30:
		return ZoneFringe
	default:
		return ZoneShadow
	}
}

// ComputeScore returns a composite zone score in [0, 1]: the sigmoid-shaped
// energy times the gaussian-shaped phase alignment. phaseDelta is expected
// in [0, pi].
func (zc *ZoneClassifier) ComputeScore(energy, phaseDelta float64) float64 {
	e := clamp01(energy)
	eIdx := int(math.Round(e * lutSize))
	eIdx = clampIndex(eIdx)

	pIdx := int(math.Round((phaseDelta / math.Pi) * lutSize))
	pIdx = clampIndex(pIdx)

	return zc.sigmoid[eIdx] * zc.gauss[pIdx]
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func clampIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i > lutSize {
		return lutSize
	}
	return i
}
