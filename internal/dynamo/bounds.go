package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Axis selects one component of an r3.Vec.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Bounds is an axis-aligned simulation box. A planar box has Min.Z == Max.Z
// and its depth axis is never constrained.
type Bounds struct {
	Min, Max r3.Vec
}

// NewBounds2D returns a planar box spanning [xmin,xmax] x [ymin,ymax].
func NewBounds2D(xmin, ymin, xmax, ymax float64) Bounds {
	return Bounds{
		Min: r3.Vec{X: xmin, Y: ymin},
		Max: r3.Vec{X: xmax, Y: ymax},
	}
}

// NewBounds3D returns a volumetric box.
func NewBounds3D(xmin, ymin, zmin, xmax, ymax, zmax float64) Bounds {
	return Bounds{
		Min: r3.Vec{X: xmin, Y: ymin, Z: zmin},
		Max: r3.Vec{X: xmax, Y: ymax, Z: zmax},
	}
}

// Planar reports whether the box has no depth.
func (b Bounds) Planar() bool {
	return b.Max.Z == b.Min.Z
}

// Dims returns 2 for planar boxes and 3 otherwise.
func (b Bounds) Dims() int {
	if b.Planar() {
		return 2
	}
	return 3
}

// Size returns the extent along each axis.
func (b Bounds) Size() r3.Vec {
	return r3.Sub(b.Max, b.Min)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// Contains reports whether p lies inside the box, inclusive.
func (b Bounds) Contains(p r3.Vec) bool {
	if p.X < b.Min.X || p.X > b.Max.X || p.Y < b.Min.Y || p.Y > b.Max.Y {
		return false
	}
	if b.Planar() {
		return true
	}
	return p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Inset shrinks the box by d on every constrained side.
func (b Bounds) Inset(d float64) Bounds {
	out := Bounds{
		Min: r3.Vec{X: b.Min.X + d, Y: b.Min.Y + d, Z: b.Min.Z},
		Max: r3.Vec{X: b.Max.X - d, Y: b.Max.Y - d, Z: b.Max.Z},
	}
	if !b.Planar() {
		out.Min.Z += d
		out.Max.Z -= d
	}
	return out
}

// Validate rejects inverted or non-finite boxes.
func (b Bounds) Validate() error {
	if !IsFinite(b.Min) || !IsFinite(b.Max) {
		return fmt.Errorf("%w: non-finite corner", ErrInvalidBounds)
	}
	if b.Min.X >= b.Max.X || b.Min.Y >= b.Max.Y || b.Min.Z > b.Max.Z {
		return fmt.Errorf("%w: min %v must be below max %v", ErrInvalidBounds, b.Min, b.Max)
	}
	return nil
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v r3.Vec) bool {
	for _, c := range [...]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Component returns the value of v along axis a.
func Component(v r3.Vec, a Axis) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}
