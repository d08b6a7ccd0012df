package problem

import (
	"github.com/san-kum/linsolve/internal/linsol"
	"github.com/san-kum/linsolve/internal/matrix"
)

// Laplace1D is the standard 1-D Poisson stencil tridiag(-1, 2, -1):
// symmetric positive-definite, mildly ill-conditioned as n grows. The
// workhorse test operator for PCG and banded LU.
type Laplace1D struct {
	n    int
	band *matrix.Band
}

func NewLaplace1D(n int) *Laplace1D {
	b, err := matrix.Tridiagonal(n, -1, 2, -1)
	if err != nil {
		panic(err)
	}
	return &Laplace1D{n: n, band: b}
}

func (p *Laplace1D) Name() string { return "laplace1d" }
func (p *Laplace1D) Dim() int     { return p.n }

func (p *Laplace1D) Matrix() linsol.Matrix { return p.band }

func (p *Laplace1D) ATimes() (any, linsol.ATimesFn) {
	return matVecATimes(p.band)
}

func (p *Laplace1D) Diagonal() linsol.Vector {
	d := linsol.NewVector(p.n)
	for i := range d {
		d[i] = 2
	}
	return d
}

func (p *Laplace1D) Solution() linsol.Vector { return ramp(p.n) }

func (p *Laplace1D) RHS() linsol.Vector { return mustRHS(p.band, p.Solution()) }

// DenseMatrix returns the same operator in dense storage for the dense
// direct backend.
func (p *Laplace1D) DenseMatrix() *matrix.Dense {
	m, err := matrix.NewDense(p.n, p.n)
	if err != nil {
		panic(err)
	}
	for i := 0; i < p.n; i++ {
		for j := 0; j < p.n; j++ {
			m.Set(i, j, p.band.Get(i, j))
		}
	}
	return m
}
