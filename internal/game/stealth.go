package game

import "math"

// StealthState tracks whether one agent counts as hidden, by sampling the
// light field at a fixed interval independent of the tick rate. Movement
// lowers the effective threshold, so a moving agent must stand in deeper
// shadow to stay hidden. The hidden flag only changes inside a sampling
// step, never from noise or other stimuli.
type StealthState struct {
	sampler *LightFieldSampler

	baseThreshold   float64 // [0,1]
	movementPenalty float64 // multiplier applied to the threshold while moving
	sampleInterval  float64 // seconds between illumination samples

	sinceSample  float64
	lightLevel   float64
	effThreshold float64
	hidden       bool
	primed       bool // first sample taken

	// OnHiddenChanged fires once per hidden flip, after the flag updates.
	// Nil is allowed.
	OnHiddenChanged func(hidden bool)
}

// NewStealthState builds a tracker over the given sampler.
func NewStealthState(sampler *LightFieldSampler, baseThreshold, movementPenalty, sampleInterval float64) *StealthState {
	return &StealthState{
		sampler:         sampler,
		baseThreshold:   clamp01(baseThreshold),
		movementPenalty: movementPenalty,
		sampleInterval:  sampleInterval,
	}
}

// Update advances the sampling clock and, when the interval has elapsed,
// resamples illumination at (x,y) and recomputes hidden. A flip invokes
// OnHiddenChanged exactly once.
func (st *StealthState) Update(x, y float64, isMoving bool, dt float64) {
	st.sinceSample += dt
	if st.primed && st.sinceSample < st.sampleInterval {
		return
	}
	if st.primed {
		st.sinceSample = math.Mod(st.sinceSample, st.sampleInterval)
	} else {
		st.sinceSample = 0
	}
	st.sampleOnce(x, y, isMoving, true)
}

// Prime takes the initial sample without firing a flip notification,
// establishing the baseline before the first tick.
func (st *StealthState) Prime(x, y float64, isMoving bool) {
	st.sampleOnce(x, y, isMoving, false)
}

func (st *StealthState) sampleOnce(x, y float64, isMoving bool, notify bool) {
	st.lightLevel = st.sampler.Sample(x, y)
	st.effThreshold = st.baseThreshold
	if isMoving {
		st.effThreshold = clamp01(st.baseThreshold * st.movementPenalty)
	}
	nowHidden := st.lightLevel < st.effThreshold
	flipped := st.primed && nowHidden != st.hidden
	st.hidden = nowHidden
	st.primed = true
	if flipped && notify && st.OnHiddenChanged != nil {
		st.OnHiddenChanged(nowHidden)
	}
}

// IsHidden reports the hidden flag from the last sample. Pure read.
func (st *StealthState) IsHidden() bool { return st.hidden }

// CurrentLight reports the illumination from the last sample. Pure read.
func (st *StealthState) CurrentLight() float64 { return st.lightLevel }

// EffectiveThreshold reports the threshold used by the last sample.
func (st *StealthState) EffectiveThreshold() float64 { return st.effThreshold }
