package registry

import (
	"fmt"
	"sort"

	"github.com/san-kum/linsolve/internal/config"
	"github.com/san-kum/linsolve/internal/direct"
	"github.com/san-kum/linsolve/internal/driver"
	"github.com/san-kum/linsolve/internal/krylov"
	"github.com/san-kum/linsolve/internal/linsol"
	"github.com/san-kum/linsolve/internal/matrix"
	"github.com/san-kum/linsolve/internal/precond"
	"github.com/san-kum/linsolve/internal/problem"
)

// Registry maps names from config files and CLI flags to problem and
// solver factories.
type Registry struct {
	problems map[string]func(cfg *config.Config) problem.Problem
	solvers  map[string]func(n int, cfg *config.Config) (linsol.Solver, error)
}

func New() *Registry {
	r := &Registry{
		problems: make(map[string]func(cfg *config.Config) problem.Problem),
		solvers:  make(map[string]func(n int, cfg *config.Config) (linsol.Solver, error)),
	}

	r.problems["identity"] = func(cfg *config.Config) problem.Problem {
		return problem.NewIdentity(cfg.N)
	}
	r.problems["laplace1d"] = func(cfg *config.Config) problem.Problem {
		return problem.NewLaplace1D(cfg.N)
	}
	r.problems["convdiff1d"] = func(cfg *config.Config) problem.Problem {
		return problem.NewConvDiff1D(cfg.N, cfg.Peclet)
	}

	r.solvers["dense"] = func(n int, cfg *config.Config) (linsol.Solver, error) {
		return direct.NewDense(n)
	}
	r.solvers["band"] = func(n int, cfg *config.Config) (linsol.Solver, error) {
		return direct.NewBand(n, 1, 1)
	}
	r.solvers["gmres"] = func(n int, cfg *config.Config) (linsol.Solver, error) {
		return krylov.NewGMRES(n, krylov.Options{
			MaxKrylov:   cfg.MaxKrylov,
			MaxRestarts: cfg.MaxRestarts,
		})
	}
	r.solvers["gmres-mat"] = func(n int, cfg *config.Config) (linsol.Solver, error) {
		return krylov.NewGMRES(n, krylov.Options{
			MaxKrylov:    cfg.MaxKrylov,
			MaxRestarts:  cfg.MaxRestarts,
			MatrixBacked: true,
		})
	}
	r.solvers["pcg"] = func(n int, cfg *config.Config) (linsol.Solver, error) {
		return krylov.NewPCG(n, krylov.Options{MaxIters: cfg.MaxIters})
	}

	return r
}

func (r *Registry) Problem(cfg *config.Config) (problem.Problem, error) {
	fn, ok := r.problems[cfg.Problem]
	if !ok {
		return nil, fmt.Errorf("unknown problem: %s", cfg.Problem)
	}
	return fn(cfg), nil
}

func (r *Registry) Solver(name string, n int, cfg *config.Config) (linsol.Solver, error) {
	fn, ok := r.solvers[name]
	if !ok {
		return nil, fmt.Errorf("unknown solver: %s", name)
	}
	return fn(n, cfg)
}

func (r *Registry) ListProblems() []string {
	names := make([]string, 0, len(r.problems))
	for name := range r.problems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListSolvers() []string {
	names := make([]string, 0, len(r.solvers))
	for name := range r.solvers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compose builds the solver handle and RunSpec a config describes: the
// operator in the form the solver category consumes, plus preconditioner
// and scaling bindings when requested.
func (r *Registry) Compose(cfg *config.Config) (linsol.Solver, driver.RunSpec, error) {
	var spec driver.RunSpec

	p, err := r.Problem(cfg)
	if err != nil {
		return nil, spec, err
	}
	s, err := r.Solver(cfg.Solver, p.Dim(), cfg)
	if err != nil {
		return nil, spec, err
	}

	spec.B = p.RHS()
	spec.Tol = cfg.Tol
	spec.Steps = cfg.Steps
	spec.MaxRetries = cfg.MaxRetries

	switch s.Type() {
	case linsol.Direct:
		A := p.Matrix()
		if A == nil {
			return nil, spec, fmt.Errorf("problem %s has no explicit matrix", p.Name())
		}
		if cfg.Solver == "dense" {
			if A, err = matrix.Densify(A); err != nil {
				return nil, spec, err
			}
		}
		spec.A = A
	case linsol.MatrixIterative:
		if spec.A = p.Matrix(); spec.A == nil {
			return nil, spec, fmt.Errorf("problem %s has no explicit matrix", p.Name())
		}
	case linsol.Iterative:
		spec.ACtx, spec.ATimes = p.ATimes()
	}

	if cfg.Precond == "jacobi" && s.Type() != linsol.Direct {
		j, err := precond.NewJacobi(p.Diagonal())
		if err != nil {
			return nil, spec, err
		}
		spec.PCtx = j
		spec.PSetup = precond.Setup
		spec.PSolve = precond.Solve
	}

	if cfg.Scaling && s.Type() != linsol.Direct {
		// Row-scale by the reciprocal operator diagonal; identity columns.
		d := p.Diagonal()
		s1 := linsol.NewVector(len(d))
		for i, v := range d {
			if v != 0 {
				s1[i] = 1 / v
			} else {
				s1[i] = 1
			}
		}
		spec.S1 = s1
	}

	return s, spec, nil
}
