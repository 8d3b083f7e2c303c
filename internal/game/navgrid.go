package game

import (
	"container/heap"
	"math"
)

const cellSize = 16

// NavGrid is a 2D walkability grid where true = blocked. Guards path-plan
// on it; the player and chasing guards move directly and never consult it.
type NavGrid struct {
	cols    int
	rows    int
	blocked []bool
}

// NewNavGrid builds a walkability grid for a world of the given size. Every
// cell that overlaps an obstacle, padded by the mover radius so paths keep
// clearance, is blocked.
func NewNavGrid(worldW, worldH float64, obstacles []rect, pad float64) *NavGrid {
	cols := int(worldW) / cellSize
	rows := int(worldH) / cellSize
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	ng := &NavGrid{
		cols:    cols,
		rows:    rows,
		blocked: make([]bool, cols*rows),
	}

	p := int(math.Ceil(pad))
	for _, o := range obstacles {
		ox0 := o.x - p
		oy0 := o.y - p
		ox1 := o.x + o.w + p
		oy1 := o.y + o.h + p

		cMinX := max(0, ox0/cellSize)
		cMinY := max(0, oy0/cellSize)
		cMaxX := min(cols-1, (ox1-1)/cellSize)
		cMaxY := min(rows-1, (oy1-1)/cellSize)

		for cy := cMinY; cy <= cMaxY; cy++ {
			for cx := cMinX; cx <= cMaxX; cx++ {
				ng.blocked[cy*cols+cx] = true
			}
		}
	}
	return ng
}

// IsBlocked returns true if the cell at (cx, cy) is not walkable. Cells
// outside the grid count as blocked.
func (ng *NavGrid) IsBlocked(cx, cy int) bool {
	if cx < 0 || cy < 0 || cx >= ng.cols || cy >= ng.rows {
		return true
	}
	return ng.blocked[cy*ng.cols+cx]
}

// Cols returns the grid width in cells.
func (ng *NavGrid) Cols() int { return ng.cols }

// Rows returns the grid height in cells.
func (ng *NavGrid) Rows() int { return ng.rows }

// WorldToCell converts world coordinates to grid cell coordinates.
func WorldToCell(wx, wy float64) (int, int) {
	return int(wx) / cellSize, int(wy) / cellSize
}

// CellToWorld converts grid cell coordinates to the cell's world center.
func CellToWorld(cx, cy int) (float64, float64) {
	return float64(cx*cellSize) + float64(cellSize)/2, float64(cy*cellSize) + float64(cellSize)/2
}

// --- A* pathfinding ---

type pathNode struct {
	cx, cy int
	g, h   float64
	parent *pathNode
	index  int // heap index
}

type openList []*pathNode

func (ol openList) Len() int { return len(ol) }

func (ol openList) Less(i, j int) bool { return (ol[i].g + ol[i].h) < (ol[j].g + ol[j].h) }

func (ol openList) Swap(i, j int) {
	ol[i], ol[j] = ol[j], ol[i]
	ol[i].index = i
	ol[j].index = j
}

func (ol *openList) Push(x interface{}) {
	n := x.(*pathNode)
	n.index = len(*ol)
	*ol = append(*ol, n)
}

func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

var dirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// FindPath returns world-coordinate waypoints from (sx,sy) to (gx,gy), or
// nil when either endpoint sits in a blocked cell or no route exists.
func (ng *NavGrid) FindPath(sx, sy, gx, gy float64) [][2]float64 {
	scx, scy := WorldToCell(sx, sy)
	gcx, gcy := WorldToCell(gx, gy)

	if ng.IsBlocked(scx, scy) || ng.IsBlocked(gcx, gcy) {
		return nil
	}

	key := func(cx, cy int) int { return cy*ng.cols + cx }
	heuristic := func(ax, ay, bx, by int) float64 {
		dx := math.Abs(float64(ax - bx))
		dy := math.Abs(float64(ay - by))
		return dx + dy + (math.Sqrt2-2)*math.Min(dx, dy)
	}

	start := &pathNode{cx: scx, cy: scy, g: 0, h: heuristic(scx, scy, gcx, gcy)}
	ol := &openList{start}
	heap.Init(ol)

	closed := make(map[int]bool)
	best := make(map[int]*pathNode)
	best[key(scx, scy)] = start

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		if cur.cx == gcx && cur.cy == gcy {
			return buildPath(cur)
		}
		k := key(cur.cx, cur.cy)
		if closed[k] {
			continue
		}
		closed[k] = true

		for _, d := range dirs {
			nx, ny := cur.cx+d[0], cur.cy+d[1]
			if ng.IsBlocked(nx, ny) {
				continue
			}
			// No diagonal corner-cutting past a blocked cell.
			if d[0] != 0 && d[1] != 0 {
				if ng.IsBlocked(cur.cx+d[0], cur.cy) || ng.IsBlocked(cur.cx, cur.cy+d[1]) {
					continue
				}
			}
			nk := key(nx, ny)
			if closed[nk] {
				continue
			}
			cost := 1.0
			if d[0] != 0 && d[1] != 0 {
				cost = math.Sqrt2
			}
			tg := cur.g + cost
			if prev, ok := best[nk]; ok && tg >= prev.g {
				continue
			}
			node := &pathNode{cx: nx, cy: ny, g: tg, h: heuristic(nx, ny, gcx, gcy), parent: cur}
			best[nk] = node
			heap.Push(ol, node)
		}
	}
	return nil
}

func buildPath(end *pathNode) [][2]float64 {
	var cells [][2]int
	for n := end; n != nil; n = n.parent {
		cells = append(cells, [2]int{n.cx, n.cy})
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	path := make([][2]float64, len(cells))
	for i, c := range cells {
		wx, wy := CellToWorld(c[0], c[1])
		path[i] = [2]float64{wx, wy}
	}
	return path
}
