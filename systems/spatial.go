// Package systems provides the spatial index, terrain field, and numeric
// helpers for the simulation.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/wittejm/ecologysim/components"
)

// Neighbor holds a nearby entity with its squared distance from the query
// origin, so call sites can rank candidates without a sqrt.
type Neighbor struct {
	E      ecs.Entity
	DistSq float64
}

// Grid partitions the unit square into size x size cells and maps each cell
// to the tree entities positioned inside it. Trees never move, so buckets
// change only on insert and remove.
type Grid struct {
	size  int
	cells [][]ecs.Entity
}

// NewGrid creates a grid with size cells per axis.
func NewGrid(size int) *Grid {
	cells := make([][]ecs.Entity, size*size)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 4)
	}
	return &Grid{size: size, cells: cells}
}

// Insert adds an entity to the bucket covering (x, y).
func (g *Grid) Insert(e ecs.Entity, x, y float64) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], e)
}

// Remove deletes an entity from the bucket covering (x, y).
// Removing an entity that is not present is a no-op.
func (g *Grid) Remove(e ecs.Entity, x, y float64) {
	idx := g.cellIndex(x, y)
	bucket := g.cells[idx]
	for i, other := range bucket {
		if other == e {
			bucket[i] = bucket[len(bucket)-1]
			g.cells[idx] = bucket[:len(bucket)-1]
			return
		}
	}
}

// Len returns the total number of indexed entities.
func (g *Grid) Len() int {
	n := 0
	for _, bucket := range g.cells {
		n += len(bucket)
	}
	return n
}

// BlockInto appends the entities of the 3x3 cell block centered on the cell
// containing (x, y) to dst and returns the updated slice. Cells beyond the
// grid edge contribute nothing. Reuse dst across calls to avoid allocations.
func (g *Grid) BlockInto(dst []ecs.Entity, x, y float64) []ecs.Entity {
	cx, cy := g.cellCoord(x, y)
	for dy := -1; dy <= 1; dy++ {
		row := cy + dy
		if row < 0 || row >= g.size {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			col := cx + dx
			if col < 0 || col >= g.size {
				continue
			}
			dst = append(dst, g.cells[row*g.size+col]...)
		}
	}
	return dst
}

// QueryRadiusInto finds indexed entities within radius of (x, y) and appends
// them to dst with their squared distances. The block of cells covering the
// radius is scanned and each candidate distance-filtered via posMap.
func (g *Grid) QueryRadiusInto(dst []Neighbor, x, y, radius float64, exclude ecs.Entity, posMap *ecs.Map1[components.Position]) []Neighbor {
	if radius <= 0 {
		return dst
	}
	cellRadius := int(radius*float64(g.size)) + 1
	cx, cy := g.cellCoord(x, y)
	radiusSq := radius * radius

	for dy := -cellRadius; dy <= cellRadius; dy++ {
		row := cy + dy
		if row < 0 || row >= g.size {
			continue
		}
		for dx := -cellRadius; dx <= cellRadius; dx++ {
			col := cx + dx
			if col < 0 || col >= g.size {
				continue
			}
			for _, e := range g.cells[row*g.size+col] {
				if e == exclude {
					continue
				}
				pos := posMap.Get(e)
				if pos == nil {
					continue
				}
				ddx := pos.X - x
				ddy := pos.Y - y
				distSq := ddx*ddx + ddy*ddy
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{E: e, DistSq: distSq})
				}
			}
		}
	}
	return dst
}

// cellCoord returns the clamped cell coordinate for a position.
func (g *Grid) cellCoord(x, y float64) (int, int) {
	col := int(x * float64(g.size))
	row := int(y * float64(g.size))
	if col < 0 {
		col = 0
	} else if col >= g.size {
		col = g.size - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.size {
		row = g.size - 1
	}
	return col, row
}

// cellIndex returns the flat bucket index for a position.
func (g *Grid) cellIndex(x, y float64) int {
	col, row := g.cellCoord(x, y)
	return row*g.size + col
}
