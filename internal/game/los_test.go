package game

import (
	"math"
	"testing"
)

func TestLOS_ClearLine(t *testing.T) {
	if !HasLineOfSight(0, 0, 100, 100, nil) {
		t.Fatal("expected clear LOS with no obstacles")
	}
}

func TestLOS_BlockedByWall(t *testing.T) {
	obstacles := []rect{{x: 40, y: 0, w: 20, h: 200}}
	// Ray from left to right passes through the wall.
	if HasLineOfSight(0, 100, 200, 100, obstacles) {
		t.Fatal("expected LOS blocked by wall")
	}
}

func TestLOS_ObstacleBeyondEndpoint(t *testing.T) {
	obstacles := []rect{{x: 300, y: 0, w: 64, h: 64}}
	if !HasLineOfSight(0, 32, 200, 32, obstacles) {
		t.Fatal("obstacle beyond the endpoint should not block LOS")
	}
}

func TestLOS_VerticalRayBlocked(t *testing.T) {
	obstacles := []rect{{x: 0, y: 40, w: 200, h: 20}}
	if HasLineOfSight(100, 0, 100, 200, obstacles) {
		t.Fatal("expected vertical ray blocked by horizontal slab")
	}
}

func TestLOS_HorizontalRayClearAbove(t *testing.T) {
	obstacles := []rect{{x: 40, y: 50, w: 20, h: 100}}
	// Ray at y=10 passes above the crate.
	if !HasLineOfSight(0, 10, 200, 10, obstacles) {
		t.Fatal("ray above the obstacle should have clear LOS")
	}
}

func TestLOS_DiagonalRayBlocked(t *testing.T) {
	obstacles := []rect{{x: 80, y: 80, w: 40, h: 40}}
	if HasLineOfSight(0, 0, 200, 200, obstacles) {
		t.Fatal("diagonal ray should be blocked")
	}
}

func TestLOS_GrazingEdgeCounts(t *testing.T) {
	obstacles := []rect{{x: 50, y: 50, w: 50, h: 50}}
	// Ray along the box's top edge touches the slab.
	if HasLineOfSight(0, 50, 200, 50, obstacles) {
		t.Fatal("ray along the edge should count as blocked")
	}
}

func TestLOS_ZeroLength(t *testing.T) {
	obstacles := []rect{{x: 0, y: 0, w: 100, h: 100}}
	// Degenerate segment inside the box. Must not panic; a point inside an
	// obstacle has no sight.
	if HasLineOfSight(50, 50, 50, 50, obstacles) {
		t.Fatal("point inside an obstacle should not have LOS")
	}
}

func TestSegmentAABBHitT_EntryParameter(t *testing.T) {
	// Segment (0,100)->(200,100) enters the box x=[40,60] at t=0.2.
	tHit, hit := segmentAABBHitT(0, 100, 200, 100, 40, 0, 60, 200)
	if !hit {
		t.Fatal("expected a hit")
	}
	if math.Abs(tHit-0.2) > 1e-9 {
		t.Fatalf("expected entry t=0.2, got %.4f", tHit)
	}
}

func TestSegmentAABBHitT_StartInsideBox(t *testing.T) {
	tHit, hit := segmentAABBHitT(50, 50, 200, 50, 0, 0, 100, 100)
	if !hit {
		t.Fatal("segment starting inside the box should hit")
	}
	if tHit != 0 {
		t.Fatalf("entry from inside should clamp to t=0, got %.4f", tHit)
	}
}

func TestSegmentAABBHitT_Miss(t *testing.T) {
	if _, hit := segmentAABBHitT(0, 0, 0, 100, 50, 0, 150, 100); hit {
		t.Fatal("segment to the left of the box should miss")
	}
}

func TestClipRay_StopsAtFirstObstacle(t *testing.T) {
	obstacles := []rect{
		{x: 100, y: -10, w: 20, h: 20}, // nearer
		{x: 160, y: -10, w: 20, h: 20}, // farther, shadowed
	}
	ex, ey := clipRayToObstacles(0, 0, 200, 0, obstacles)
	if math.Abs(ex-100) > 1e-9 || math.Abs(ey) > 1e-9 {
		t.Fatalf("expected clip at (100,0), got (%.2f,%.2f)", ex, ey)
	}
}

func TestClipRay_ClearKeepsEndpoint(t *testing.T) {
	obstacles := []rect{{x: 0, y: 100, w: 200, h: 20}}
	ex, ey := clipRayToObstacles(0, 0, 200, 0, obstacles)
	if ex != 200 || ey != 0 {
		t.Fatalf("clear ray should keep its endpoint, got (%.2f,%.2f)", ex, ey)
	}
}
