package game

import "math"

// HasLineOfSight returns true if the straight segment from (ax,ay) to (bx,by)
// crosses no obstacle rect. The target itself never blocks the ray.
func HasLineOfSight(ax, ay, bx, by float64, obstacles []rect) bool {
	for _, o := range obstacles {
		if segmentIntersectsAABB(ax, ay, bx, by,
			float64(o.x), float64(o.y),
			float64(o.x+o.w), float64(o.y+o.h)) {
			return false
		}
	}
	return true
}

// clipRayToObstacles returns the endpoint of the segment (ox,oy)->(ex,ey)
// shortened to the nearest obstacle hit, or the original endpoint when clear.
// Used by the vision-cone renderer.
func clipRayToObstacles(ox, oy, ex, ey float64, obstacles []rect) (float64, float64) {
	bestT := 1.0
	for _, o := range obstacles {
		if t, hit := segmentAABBHitT(ox, oy, ex, ey,
			float64(o.x), float64(o.y),
			float64(o.x+o.w), float64(o.y+o.h)); hit && t < bestT {
			bestT = t
		}
	}
	return ox + (ex-ox)*bestT, oy + (ey-oy)*bestT
}

// segmentAABBHitT returns the first parameter t in [0,1] where the segment
// from (ox,oy)->(ex,ey) enters the AABB. The bool is false when no hit exists.
// Standard slab method.
func segmentAABBHitT(ox, oy, ex, ey, minX, minY, maxX, maxY float64) (float64, bool) {
	dx := ex - ox
	dy := ey - oy

	tMin := 0.0
	tMax := 1.0

	// X slab
	if math.Abs(dx) < 1e-12 {
		if ox < minX || ox > maxX {
			return 0, false
		}
	} else {
		invD := 1.0 / dx
		t1 := (minX - ox) * invD
		t2 := (maxX - ox) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	// Y slab
	if math.Abs(dy) < 1e-12 {
		if oy < minY || oy > maxY {
			return 0, false
		}
	} else {
		invD := 1.0 / dy
		t1 := (minY - oy) * invD
		t2 := (maxY - oy) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	if tMax < 0 || tMin > 1 {
		return 0, false
	}
	if tMin < 0 {
		tMin = 0
	}
	return tMin, true
}

// segmentIntersectsAABB reports whether the segment from (ox,oy)->(ex,ey)
// touches the box (minX,minY)-(maxX,maxY).
func segmentIntersectsAABB(ox, oy, ex, ey, minX, minY, maxX, maxY float64) bool {
	_, hit := segmentAABBHitT(ox, oy, ex, ey, minX, minY, maxX, maxY)
	return hit
}
