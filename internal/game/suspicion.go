package game

import "math"

// SuspicionMeter is a guard's confidence that something is wrong.
// Level stays in [0, Max]; it decays linearly on ticks with no stimulus and
// is pinned to Max by direct detection or a received alert.
type SuspicionMeter struct {
	Level     float64
	Max       float64
	DecayRate float64 // units per second
}

// NewSuspicionMeter returns a meter at zero.
func NewSuspicionMeter(max, decayRate float64) SuspicionMeter {
	return SuspicionMeter{Max: max, DecayRate: decayRate}
}

// Decay applies one tick of linear decay.
func (sm *SuspicionMeter) Decay(dt float64) {
	sm.Level = math.Max(0, sm.Level-sm.DecayRate*dt)
}

// AddNoise accumulates suspicion from a noise stimulus at the given distance.
// Contribution is (1 - distance/noiseRadius) * dt * gain, zero outside the
// radius. Returns the amount actually added.
func (sm *SuspicionMeter) AddNoise(distance, noiseRadius, gain, dt float64) float64 {
	if noiseRadius <= 0 || distance > noiseRadius {
		return 0
	}
	add := (1 - distance/noiseRadius) * dt * gain
	if add <= 0 {
		return 0
	}
	before := sm.Level
	sm.Level = math.Min(sm.Max, sm.Level+add)
	return sm.Level - before
}

// Pin sets the meter to Max.
func (sm *SuspicionMeter) Pin() {
	sm.Level = sm.Max
}

// Ratio returns Level/Max in [0,1], for meters and bars.
func (sm *SuspicionMeter) Ratio() float64 {
	if sm.Max <= 0 {
		return 0
	}
	return clamp01(sm.Level / sm.Max)
}
