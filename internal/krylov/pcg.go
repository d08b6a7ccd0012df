package krylov

import (
	"github.com/san-kum/linsolve/internal/linsol"
)

// PCG is a preconditioned conjugate gradient solver for symmetric
// positive-definite operators. Matrix-free (Iterative category); the first
// scaling vector is used as a diagonal weighting for the convergence norm,
// the second is ignored.
type PCG struct {
	n    int
	opts Options

	aCtx   any
	atimes linsol.ATimesFn
	pCtx   any
	psetup linsol.PSetupFn
	psolve linsol.PSolveFn
	w      linsol.Vector // norm weights (s1)

	// workspace
	r, z, p, ap linsol.Vector

	numIters int
	resNorm  float64
	lastFlag int64
}

// NewPCG returns a PCG solver for n-dimensional SPD systems.
func NewPCG(n int, opts Options) (*PCG, error) {
	if n < 1 {
		return nil, linsol.ErrBadDimension
	}
	return &PCG{n: n, opts: opts.withDefaults()}, nil
}

func (s *PCG) Type() linsol.Category { return linsol.Iterative }

func (s *PCG) SetOperator(ctx any, fn linsol.ATimesFn) linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	if fn == nil {
		return linsol.IllInput
	}
	s.aCtx, s.atimes = ctx, fn
	return linsol.Success
}

func (s *PCG) SetPreconditioner(ctx any, setup linsol.PSetupFn, solve linsol.PSolveFn) linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	if solve == nil && setup != nil {
		return linsol.IllInput
	}
	s.pCtx, s.psetup, s.psolve = ctx, setup, solve
	return linsol.Success
}

func (s *PCG) SetScalingVectors(s1, s2 linsol.Vector) linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	if s1 != nil && len(s1) != s.n {
		return linsol.IllInput
	}
	s.w = s1
	return linsol.Success
}

func (s *PCG) Initialize() linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	s.r = linsol.NewVector(s.n)
	s.z = linsol.NewVector(s.n)
	s.p = linsol.NewVector(s.n)
	s.ap = linsol.NewVector(s.n)
	s.numIters = 0
	s.resNorm = 0
	s.lastFlag = int64(linsol.Success)
	return linsol.Success
}

func (s *PCG) Setup(A linsol.Matrix) linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	if s.psetup != nil {
		if st := s.psetup(s.pCtx); !st.OK() {
			mapped := mapPSetup(st)
			s.lastFlag = int64(mapped)
			return mapped
		}
	}
	s.lastFlag = int64(linsol.Success)
	return linsol.Success
}

func (s *PCG) weightedNorm(v linsol.Vector) float64 {
	return v.WL2Norm(s.w)
}

func (s *PCG) precSolve(r, z linsol.Vector) linsol.Status {
	if s.psolve == nil {
		z.CopyFrom(r)
		return linsol.Success
	}
	if st := s.psolve(s.pCtx, r, z, 0, linsol.PrecLeft); !st.OK() {
		return mapPSolve(st)
	}
	return linsol.Success
}

// Solve runs preconditioned CG with x as the initial guess. On
// recoverable failures x holds the best iterate reached.
func (s *PCG) Solve(A linsol.Matrix, x, b linsol.Vector, tol float64) linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	if s.r == nil {
		return linsol.MemFail
	}
	if len(x) != s.n || len(b) != s.n {
		s.lastFlag = int64(linsol.IllInput)
		return linsol.IllInput
	}
	if s.atimes == nil {
		s.lastFlag = int64(linsol.IllInput)
		return linsol.IllInput
	}

	s.numIters = 0

	if st := s.atimes(s.aCtx, x, s.r); !st.OK() {
		mapped := mapATimes(st)
		s.lastFlag = int64(mapped)
		return mapped
	}
	for i := range s.r {
		s.r[i] = b[i] - s.r[i]
	}
	beta0 := s.weightedNorm(s.r)
	s.resNorm = beta0
	if beta0 <= tol {
		s.lastFlag = int64(linsol.Success)
		return linsol.Success
	}

	if st := s.precSolve(s.r, s.z); !st.OK() {
		s.lastFlag = int64(st)
		return st
	}
	s.p.CopyFrom(s.z)
	rho := s.r.Dot(s.z)

	for iter := 0; iter < s.opts.MaxIters; iter++ {
		if st := s.atimes(s.aCtx, s.p, s.ap); !st.OK() {
			mapped := mapATimes(st)
			s.lastFlag = int64(mapped)
			return mapped
		}
		pap := s.p.Dot(s.ap)
		if pap == 0 {
			// Indefinite or exhausted direction set.
			s.lastFlag = int64(linsol.ConvFail)
			return linsol.ConvFail
		}
		alpha := rho / pap
		x.AXPY(alpha, s.p)
		s.r.AXPY(-alpha, s.ap)
		s.numIters++

		s.resNorm = s.weightedNorm(s.r)
		if s.resNorm <= tol {
			s.lastFlag = int64(linsol.Success)
			return linsol.Success
		}
		if !x.IsValid() {
			s.lastFlag = int64(linsol.VectorOpErr)
			return linsol.VectorOpErr
		}

		if st := s.precSolve(s.r, s.z); !st.OK() {
			s.lastFlag = int64(st)
			return st
		}
		rho2 := s.r.Dot(s.z)
		beta := rho2 / rho
		rho = rho2
		for i := range s.p {
			s.p[i] = s.z[i] + beta*s.p[i]
		}
	}

	if s.resNorm < beta0 {
		s.lastFlag = int64(linsol.ResReduced)
		return linsol.ResReduced
	}
	s.lastFlag = int64(linsol.ConvFail)
	return linsol.ConvFail
}

func (s *PCG) NumIters() int        { return s.numIters }
func (s *PCG) ResNorm() float64     { return s.resNorm }
func (s *PCG) Resid() linsol.Vector { return s.r }

func (s *PCG) LastFlag() int64 { return s.lastFlag }

func (s *PCG) Space() (int64, int64) {
	if s.r == nil {
		return 0, 0
	}
	return 4 * int64(s.n), 0
}

func (s *PCG) Free() linsol.Status {
	if s == nil {
		return linsol.MemNull
	}
	s.r, s.z, s.p, s.ap = nil, nil, nil, nil
	return linsol.Success
}
