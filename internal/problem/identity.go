package problem

import (
	"github.com/san-kum/linsolve/internal/linsol"
	"github.com/san-kum/linsolve/internal/matrix"
)

// Identity is the trivial system I·x = b, the smoke-test operator for the
// whole binding protocol: any correct iterative solver converges in one
// iteration.
type Identity struct {
	n int
	m *matrix.Dense
}

func NewIdentity(n int) *Identity {
	m, err := matrix.Identity(n)
	if err != nil {
		panic(err)
	}
	return &Identity{n: n, m: m}
}

func (p *Identity) Name() string { return "identity" }
func (p *Identity) Dim() int     { return p.n }

func (p *Identity) Matrix() linsol.Matrix { return p.m }

func (p *Identity) ATimes() (any, linsol.ATimesFn) {
	return nil, func(ctx any, v, z linsol.Vector) linsol.Status {
		z.CopyFrom(v)
		return linsol.Success
	}
}

func (p *Identity) Diagonal() linsol.Vector {
	d := linsol.NewVector(p.n)
	for i := range d {
		d[i] = 1
	}
	return d
}

func (p *Identity) Solution() linsol.Vector { return ramp(p.n) }
func (p *Identity) RHS() linsol.Vector      { return ramp(p.n) }
