package problem

import (
	"github.com/san-kum/linsolve/internal/linsol"
	"github.com/san-kum/linsolve/internal/matrix"
)

// ConvDiff1D is an upwinded 1-D convection-diffusion stencil
// tridiag(-1-pe, 2+pe, -1): nonsymmetric, so it exercises GMRES where PCG
// does not apply. pe is the cell Peclet number (0 degenerates to
// Laplace1D plus a diagonal shift).
type ConvDiff1D struct {
	n    int
	pe   float64
	band *matrix.Band
}

func NewConvDiff1D(n int, pe float64) *ConvDiff1D {
	b, err := matrix.Tridiagonal(n, -1-pe, 2+pe, -1)
	if err != nil {
		panic(err)
	}
	return &ConvDiff1D{n: n, pe: pe, band: b}
}

func (p *ConvDiff1D) Name() string { return "convdiff1d" }
func (p *ConvDiff1D) Dim() int     { return p.n }

func (p *ConvDiff1D) Matrix() linsol.Matrix { return p.band }

func (p *ConvDiff1D) ATimes() (any, linsol.ATimesFn) {
	return matVecATimes(p.band)
}

func (p *ConvDiff1D) Diagonal() linsol.Vector {
	d := linsol.NewVector(p.n)
	for i := range d {
		d[i] = 2 + p.pe
	}
	return d
}

func (p *ConvDiff1D) Solution() linsol.Vector { return ramp(p.n) }

func (p *ConvDiff1D) RHS() linsol.Vector { return mustRHS(p.band, p.Solution()) }
