// Package grid implements the uniform-grid broad phase used to find
// candidate collision pairs.
package grid

import (
	"fmt"
	"math"

	"github.com/san-kum/verlet/internal/dynamo"
	"github.com/san-kum/verlet/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// MaxCells caps the cell count. Grids that would exceed it get coarser cells.
const MaxCells = 1 << 20

// Grid buckets particles into square (or cubic) cells over a bounding box.
// It holds pointers into the caller's arena and is rebuilt every step.
type Grid struct {
	bounds   dynamo.Bounds
	cellSize float64
	nx       int
	ny       int
	nz       int
	cells    [][]*physics.Particle
	offsets  [][3]int
}

// Stats summarises the last rebuild.
type Stats struct {
	Cells      int
	Occupied   int
	MaxPerCell int
	Particles  int
}

// New creates an empty grid over b. cellSize should be at least the largest
// collision diameter so that touching particles always share or neighbour a
// cell.
func New(b dynamo.Bounds, cellSize float64) (*Grid, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		return nil, fmt.Errorf("%w: cell size %v", dynamo.ErrInvalidConfig, cellSize)
	}
	g := &Grid{bounds: b}
	g.Resize(cellSize)
	return g, nil
}

// Resize changes the cell size and discards the current buckets.
func (g *Grid) Resize(cellSize float64) {
	size := g.bounds.Size()
	for {
		g.nx = cellsAlong(size.X, cellSize)
		g.ny = cellsAlong(size.Y, cellSize)
		g.nz = 1
		if !g.bounds.Planar() {
			g.nz = cellsAlong(size.Z, cellSize)
		}
		if g.nx*g.ny*g.nz <= MaxCells {
			break
		}
		cellSize *= 2
	}
	g.cellSize = cellSize

	n := g.nx * g.ny * g.nz
	if cap(g.cells) >= n {
		g.cells = g.cells[:n]
	} else {
		g.cells = make([][]*physics.Particle, n)
	}
	g.Clear()
	g.offsets = neighbourOffsets(g.bounds.Planar())
}

func cellsAlong(extent, cellSize float64) int {
	n := int(math.Ceil(extent / cellSize))
	if n < 1 {
		n = 1
	}
	return n
}

func neighbourOffsets(planar bool) [][3]int {
	dz := []int{-1, 0, 1}
	if planar {
		dz = []int{0}
	}
	var out [][3]int
	for _, z := range dz {
		for y := -1; y <= 1; y++ {
			for x := -1; x <= 1; x++ {
				out = append(out, [3]int{x, y, z})
			}
		}
	}
	return out
}

func (g *Grid) CellSize() float64 { return g.cellSize }

// Dims returns the number of cells along each axis.
func (g *Grid) Dims() (nx, ny, nz int) { return g.nx, g.ny, g.nz }

func (g *Grid) Bounds() dynamo.Bounds { return g.bounds }

// Clear empties every cell, keeping the backing arrays.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Rebuild re-buckets particles by their current position. Positions outside
// the box land in the nearest edge cell.
func (g *Grid) Rebuild(particles []*physics.Particle) {
	g.Clear()
	for _, p := range particles {
		ix, iy, iz := g.CellOf(p.Cur)
		idx := g.index(ix, iy, iz)
		g.cells[idx] = append(g.cells[idx], p)
	}
}

// CellOf returns the clamped cell coordinates containing pos.
func (g *Grid) CellOf(pos r3.Vec) (ix, iy, iz int) {
	ix = clampCell((pos.X-g.bounds.Min.X)/g.cellSize, g.nx)
	iy = clampCell((pos.Y-g.bounds.Min.Y)/g.cellSize, g.ny)
	if g.nz > 1 {
		iz = clampCell((pos.Z-g.bounds.Min.Z)/g.cellSize, g.nz)
	}
	return ix, iy, iz
}

func clampCell(f float64, n int) int {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f >= float64(n) {
		return n - 1
	}
	return int(f)
}

func (g *Grid) index(ix, iy, iz int) int {
	return (iz*g.ny+iy)*g.nx + ix
}

// Cell returns the particles bucketed at (ix, iy, iz), or nil when the
// coordinates fall outside the grid.
func (g *Grid) Cell(ix, iy, iz int) []*physics.Particle {
	if ix < 0 || ix >= g.nx || iy < 0 || iy >= g.ny || iz < 0 || iz >= g.nz {
		return nil
	}
	return g.cells[g.index(ix, iy, iz)]
}

// ForEachPair calls fn once for every unordered pair of particles in the same
// or adjacent cells, with a.Index < b.Index.
func (g *Grid) ForEachPair(fn func(a, b *physics.Particle)) {
	for iz := 0; iz < g.nz; iz++ {
		for iy := 0; iy < g.ny; iy++ {
			for ix := 0; ix < g.nx; ix++ {
				home := g.cells[g.index(ix, iy, iz)]
				if len(home) == 0 {
					continue
				}
				for _, off := range g.offsets {
					other := g.Cell(ix+off[0], iy+off[1], iz+off[2])
					for _, a := range home {
						for _, b := range other {
							if a.Index < b.Index {
								fn(a, b)
							}
						}
					}
				}
			}
		}
	}
}

// Query calls fn for every particle bucketed within one cell of pos.
func (g *Grid) Query(pos r3.Vec, fn func(p *physics.Particle)) {
	ix, iy, iz := g.CellOf(pos)
	for _, off := range g.offsets {
		for _, p := range g.Cell(ix+off[0], iy+off[1], iz+off[2]) {
			fn(p)
		}
	}
}

// Stats reports occupancy of the current buckets.
func (g *Grid) Stats() Stats {
	s := Stats{Cells: len(g.cells)}
	for _, c := range g.cells {
		if len(c) == 0 {
			continue
		}
		s.Occupied++
		s.Particles += len(c)
		s.MaxPerCell = max(s.MaxPerCell, len(c))
	}
	return s
}
