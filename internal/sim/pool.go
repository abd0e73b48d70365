package sim

import "sync"

// SnapshotPool recycles snapshots sized for a fixed particle count.
type SnapshotPool struct {
	pool sync.Pool
	size int
}

func NewSnapshotPool(particles int) *SnapshotPool {
	return &SnapshotPool{
		size: particles,
		pool: sync.Pool{
			New: func() interface{} {
				return &Snapshot{Particles: make([]ParticleState, particles)}
			},
		},
	}
}

func (p *SnapshotPool) Get() *Snapshot {
	return p.pool.Get().(*Snapshot)
}

func (p *SnapshotPool) Put(s *Snapshot) {
	if len(s.Particles) == p.size {
		*s = Snapshot{Particles: s.Particles}
		p.pool.Put(s)
	}
}
