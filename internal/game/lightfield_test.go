package game

import (
	"math"
	"testing"
)

func makeSamplerForTest(t *testing.T, ambient float64) (*LightSet, *LightFieldSampler) {
	t.Helper()
	set := NewLightSet()
	return set, NewLightFieldSampler(set, ambient, 0.5, 64)
}

func TestLightField_AmbientOnly(t *testing.T) {
	_, lf := makeSamplerForTest(t, 0.08)
	if got := lf.Sample(200, 200); math.Abs(got-0.08) > 1e-9 {
		t.Fatalf("expected ambient floor 0.08 with no lights, got %.4f", got)
	}
}

func TestLightField_AmbientClampedAtConstruction(t *testing.T) {
	set := NewLightSet()
	lf := NewLightFieldSampler(set, 1.7, 0.5, 64)
	if got := lf.Ambient(); got != 1.0 {
		t.Fatalf("expected over-range ambient to clamp to 1.0, got %.4f", got)
	}
}

func TestLightField_LinearFalloff(t *testing.T) {
	set, lf := makeSamplerForTest(t, 0)
	if _, err := set.Register(Light{Intensity: 0.8, Radius: 100, Kind: LightPoint}); err != nil {
		t.Fatalf("register: %v", err)
	}
	// Halfway out: 0.8 * (1 - 50/100) = 0.4.
	if got := lf.Sample(50, 0); math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("expected 0.4 at half radius, got %.4f", got)
	}
	// At the source: full intensity.
	if got := lf.Sample(0, 0); math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("expected full intensity 0.8 at source, got %.4f", got)
	}
}

func TestLightField_ZeroAtRadiusEdgeAndBeyond(t *testing.T) {
	set, lf := makeSamplerForTest(t, 0.05)
	if _, err := set.Register(Light{Intensity: 1.0, Radius: 100, Kind: LightPoint}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := lf.Sample(100, 0); math.Abs(got-0.05) > 1e-9 {
		t.Fatalf("contribution at exactly the radius must be zero, got sample %.4f", got)
	}
	if got := lf.Sample(150, 0); math.Abs(got-0.05) > 1e-9 {
		t.Fatalf("contribution beyond the radius must be zero, got sample %.4f", got)
	}
}

func TestLightField_GlobalIgnoresDistance(t *testing.T) {
	set, lf := makeSamplerForTest(t, 0.1)
	if _, err := set.Register(Light{Intensity: 0.35, Kind: LightGlobal}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := lf.Sample(5000, 5000); math.Abs(got-0.45) > 1e-9 {
		t.Fatalf("expected global light at full intensity far away, got %.4f", got)
	}
}

func TestLightField_SumClampsToOne(t *testing.T) {
	set, lf := makeSamplerForTest(t, 0.2)
	for i := 0; i < 3; i++ {
		if _, err := set.Register(Light{X: 100, Y: 100, Intensity: 0.9, Radius: 200, Kind: LightPoint}); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	if got := lf.Sample(100, 100); got != 1.0 {
		t.Fatalf("expected stacked lights to clamp at 1.0, got %.4f", got)
	}
}

func TestLightField_CandidateCullUsesRadiusPlusMargin(t *testing.T) {
	set, lf := makeSamplerForTest(t, 0)
	// Radius 100 + margin 64 = reach 164. One light inside that reach from
	// the focus, one outside.
	if _, err := set.Register(Light{X: 150, Intensity: 0.5, Radius: 100, Kind: LightPoint}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := set.Register(Light{X: 200, Intensity: 0.5, Radius: 100, Kind: LightPoint}); err != nil {
		t.Fatalf("register: %v", err)
	}
	lf.Sample(0, 0)
	if got := lf.CandidateCount(); got != 1 {
		t.Fatalf("expected 1 candidate within radius+margin, got %d", got)
	}
}

func TestLightField_GlobalAlwaysCandidate(t *testing.T) {
	set, lf := makeSamplerForTest(t, 0)
	if _, err := set.Register(Light{Intensity: 0.3, Kind: LightGlobal}); err != nil {
		t.Fatalf("register: %v", err)
	}
	lf.Sample(9000, 9000)
	if got := lf.CandidateCount(); got != 1 {
		t.Fatalf("global light must survive every cull, got %d candidates", got)
	}
}

func TestLightField_RefreshWaitsForInterval(t *testing.T) {
	set, lf := makeSamplerForTest(t, 0)
	lf.Sample(0, 0) // first call establishes focus with zero candidates

	if _, err := set.Register(Light{X: 10, Intensity: 0.6, Radius: 100, Kind: LightPoint}); err != nil {
		t.Fatalf("register: %v", err)
	}
	// Not enough elapsed time: the stale candidate list hides the new light.
	lf.Advance(0.2)
	if got := lf.Sample(0, 0); got != 0 {
		t.Fatalf("new light must stay invisible until the refresh, got %.4f", got)
	}
	// Crossing the interval rebuilds candidates.
	lf.Advance(0.4)
	want := 0.6 * (1 - 10.0/100.0)
	if got := lf.Sample(0, 0); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %.4f after candidate refresh, got %.4f", want, got)
	}
}

func TestLightField_UnregisteredCandidateSkipped(t *testing.T) {
	set, lf := makeSamplerForTest(t, 0)
	id, err := set.Register(Light{Intensity: 0.7, Radius: 100, Kind: LightPoint})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := lf.Sample(0, 0); math.Abs(got-0.7) > 1e-9 {
		t.Fatalf("expected 0.7 before removal, got %.4f", got)
	}

	set.Unregister(id)
	// Still within the refresh interval: the id sits in the candidate list
	// but contributes nothing.
	if got := lf.Sample(0, 0); got != 0 {
		t.Fatalf("removed light must contribute zero immediately, got %.4f", got)
	}
	if got := lf.CandidateCount(); got != 1 {
		t.Fatalf("stale candidate entry should persist until refresh, got %d", got)
	}
	lf.Advance(0.6)
	lf.Sample(0, 0)
	if got := lf.CandidateCount(); got != 0 {
		t.Fatalf("refresh should drop the removed light, got %d candidates", got)
	}
}

func TestLightField_SampleFullBypassesCache(t *testing.T) {
	set, lf := makeSamplerForTest(t, 0)
	lf.Sample(0, 0)
	if _, err := set.Register(Light{Intensity: 0.5, Radius: 100, Kind: LightPoint}); err != nil {
		t.Fatalf("register: %v", err)
	}
	// Cached path misses the new light, the full scan sees it.
	if got := lf.Sample(0, 0); got != 0 {
		t.Fatalf("cached sample should miss the fresh light, got %.4f", got)
	}
	if got := lf.SampleFull(0, 0); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("full scan should see the fresh light, got %.4f", got)
	}
}

func TestLightSet_RegisterRejectsBadInput(t *testing.T) {
	set := NewLightSet()
	if _, err := set.Register(Light{Intensity: -0.1, Radius: 100, Kind: LightPoint}); err == nil {
		t.Fatal("expected error for negative intensity")
	}
	if _, err := set.Register(Light{Intensity: 0.5, Kind: LightPoint}); err == nil {
		t.Fatal("expected error for point light without radius")
	}
	if _, err := set.Register(Light{Intensity: 0.5, Kind: LightGlobal}); err != nil {
		t.Fatalf("global light should not need a radius: %v", err)
	}
}

func TestLightSet_MoveRepositionsSource(t *testing.T) {
	set, lf := makeSamplerForTest(t, 0)
	id, err := set.Register(Light{Intensity: 1.0, Radius: 100, Kind: LightPoint})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	lf.Sample(0, 0)
	if !set.Move(id, 50, 0) {
		t.Fatal("move of a known id should report true")
	}
	if set.Move(LightID(999), 0, 0) {
		t.Fatal("move of an unknown id should report false")
	}
	// Candidate list still holds the id; the moved position applies at once.
	want := 1.0 * (1 - 50.0/100.0)
	if got := lf.Sample(0, 0); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %.4f after move, got %.4f", want, got)
	}
}
