package forces

import (
	"fmt"
	"math"

	"github.com/san-kum/verlet/internal/dynamo"
	"github.com/san-kum/verlet/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// FlowField is a planar velocity field sampled on a regular grid over a
// box. Each particle receives the velocity of the cell it sits in, scaled
// by Mult, as a force.
type FlowField struct {
	Mult float64

	bounds dynamo.Bounds
	w, h   int
	vel    []r3.Vec
}

// NewFlowField creates a zero field of w x h cells over b.
func NewFlowField(b dynamo.Bounds, w, h int, mult float64) (*FlowField, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: flow field %dx%d", dynamo.ErrInvalidConfig, w, h)
	}
	return &FlowField{
		Mult:   mult,
		bounds: b,
		w:      w,
		h:      h,
		vel:    make([]r3.Vec, w*h),
	}, nil
}

// NewVortex fills a field with a solid-body rotation around the box centre.
// Speeds are normalised so the fastest cell moves at 1.
func NewVortex(b dynamo.Bounds, w, h int, mult float64) (*FlowField, error) {
	f, err := NewFlowField(b, w, h, mult)
	if err != nil {
		return nil, err
	}
	c := b.Center()
	var peak float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := r3.Sub(f.cellCenter(x, y), c)
			v := r3.Vec{X: -d.Y, Y: d.X}
			f.vel[y*w+x] = v
			peak = math.Max(peak, r3.Norm(v))
		}
	}
	if peak > 0 {
		for i := range f.vel {
			f.vel[i] = r3.Scale(1/peak, f.vel[i])
		}
	}
	return f, nil
}

// NewUniformFlow returns a single-cell field blowing v everywhere.
func NewUniformFlow(b dynamo.Bounds, v r3.Vec, mult float64) (*FlowField, error) {
	f, err := NewFlowField(b, 1, 1, mult)
	if err != nil {
		return nil, err
	}
	f.vel[0] = r3.Vec{X: v.X, Y: v.Y}
	return f, nil
}

func (f *FlowField) Name() string { return "flow" }

func (f *FlowField) Size() (w, h int) { return f.w, f.h }

func (f *FlowField) cellCenter(x, y int) r3.Vec {
	size := f.bounds.Size()
	return r3.Vec{
		X: f.bounds.Min.X + (float64(x)+0.5)*size.X/float64(f.w),
		Y: f.bounds.Min.Y + (float64(y)+0.5)*size.Y/float64(f.h),
	}
}

// Set overwrites the velocity of cell (x, y). Out-of-range cells are ignored.
func (f *FlowField) Set(x, y int, v r3.Vec) {
	if x < 0 || x >= f.w || y < 0 || y >= f.h {
		return
	}
	f.vel[y*f.w+x] = r3.Vec{X: v.X, Y: v.Y}
}

// Sample returns the unscaled velocity of the cell containing pos. Positions
// outside the box use the nearest edge cell.
func (f *FlowField) Sample(pos r3.Vec) r3.Vec {
	size := f.bounds.Size()
	x := clamp(int(math.Floor((pos.X-f.bounds.Min.X)/size.X*float64(f.w))), f.w)
	y := clamp(int(math.Floor((pos.Y-f.bounds.Min.Y)/size.Y*float64(f.h))), f.h)
	return f.vel[y*f.w+x]
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (f *FlowField) Apply(particles []*physics.Particle, t float64) {
	if f.Mult == 0 {
		return
	}
	for _, p := range particles {
		if !dynamo.IsFinite(p.Cur) {
			continue
		}
		p.AddForce(r3.Scale(f.Mult, f.Sample(p.Cur)))
	}
}
