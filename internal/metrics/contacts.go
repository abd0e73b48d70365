package metrics

import "github.com/san-kum/verlet/internal/physics"

// CollisionCount is the mean number of contacts per observed step. Each
// overlapping pair counts once, whether one or both sides respond.
type CollisionCount struct {
	name    string
	total   float64
	samples int
	last    float64
}

func NewCollisionCount() *CollisionCount {
	return &CollisionCount{name: "collisions"}
}

func (c *CollisionCount) Name() string { return c.name }

func (c *CollisionCount) Observe(ps []*physics.Particle, t float64) {
	var pairs int
	for _, p := range ps {
		pairs += p.PairCount()
	}
	c.last = float64(pairs)
	c.total += c.last
	c.samples++
}

func (c *CollisionCount) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.total / float64(c.samples)
}

// Last returns the contact count of the most recent observation.
func (c *CollisionCount) Last() float64 { return c.last }

func (c *CollisionCount) Reset() {
	c.total = 0
	c.samples = 0
	c.last = 0
}
