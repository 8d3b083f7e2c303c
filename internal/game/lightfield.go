package game

// LightFieldSampler aggregates registered lights into an illumination value
// at a point. Candidate lights are re-culled on a coarse interval around the
// last query position rather than on every call; the query margin covers
// drift between refreshes. A candidate that was unregistered since the last
// refresh is skipped at sample time.
type LightFieldSampler struct {
	set *LightSet

	ambient         float64 // moonlight floor added to every sample
	refreshInterval float64 // seconds between candidate rebuilds
	queryMargin     float64 // extra culling distance beyond each light radius

	sinceRefresh float64
	candidates   []LightID
	focusX       float64
	focusY       float64
	haveFocus    bool
}

// NewLightFieldSampler builds a sampler over the given light set.
func NewLightFieldSampler(set *LightSet, ambient, refreshInterval, queryMargin float64) *LightFieldSampler {
	return &LightFieldSampler{
		set:             set,
		ambient:         clamp01(ambient),
		refreshInterval: refreshInterval,
		queryMargin:     queryMargin,
	}
}

// Advance accumulates elapsed time toward the next candidate refresh.
func (lf *LightFieldSampler) Advance(dt float64) {
	lf.sinceRefresh += dt
}

// Sample returns the illumination at (x,y), clamped to [0,1]. Refreshes the
// candidate set first when the refresh interval has elapsed (or on the very
// first call).
func (lf *LightFieldSampler) Sample(x, y float64) float64 {
	if !lf.haveFocus || lf.sinceRefresh >= lf.refreshInterval {
		lf.refreshCandidates(x, y)
	}
	sum := lf.ambient
	for _, id := range lf.candidates {
		l, ok := lf.set.Get(id)
		if !ok {
			continue // removed since the last refresh
		}
		sum += lightContribution(l, x, y)
	}
	return clamp01(sum)
}

// SampleFull computes illumination with a full scan of all lights, skipping
// the candidate cache. Used by visual overlays that sample far from the
// gameplay focus; the sim itself goes through Sample.
func (lf *LightFieldSampler) SampleFull(x, y float64) float64 {
	sum := lf.ambient
	for _, l := range lf.set.All() {
		sum += lightContribution(l, x, y)
	}
	return clamp01(sum)
}

// lightContribution returns one light's share at (x,y): full intensity for
// Global kinds, linear distance falloff inside the radius otherwise.
func lightContribution(l *Light, x, y float64) float64 {
	if l.Kind == LightGlobal {
		return l.Intensity
	}
	d := dist(l.X, l.Y, x, y)
	if d > l.Radius {
		return 0
	}
	return l.Intensity * clamp01(1-d/l.Radius)
}

// refreshCandidates rebuilds the candidate list around (x,y): every light
// whose radius plus the query margin reaches the point, plus all Global
// lights. Resets the refresh clock.
func (lf *LightFieldSampler) refreshCandidates(x, y float64) {
	lf.candidates = lf.candidates[:0]
	for _, l := range lf.set.All() {
		if l.Kind == LightGlobal {
			lf.candidates = append(lf.candidates, l.ID)
			continue
		}
		reach := l.Radius + lf.queryMargin
		if distSq(l.X, l.Y, x, y) <= reach*reach {
			lf.candidates = append(lf.candidates, l.ID)
		}
	}
	lf.focusX = x
	lf.focusY = y
	lf.haveFocus = true
	lf.sinceRefresh = 0
}

// CandidateCount reports how many lights survived the last cull.
func (lf *LightFieldSampler) CandidateCount() int { return len(lf.candidates) }

// Ambient returns the configured ambient floor.
func (lf *LightFieldSampler) Ambient() float64 { return lf.ambient }
