package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/linsolve/internal/linsol"
	"github.com/san-kum/linsolve/internal/logger"
)

// ErrUnrecoverable reports that a solver returned a negative status; the
// run was aborted without retrying, as the contract requires.
var ErrUnrecoverable = errors.New("driver: unrecoverable solver failure")

// RunSpec assembles everything the driver binds onto a solver handle
// before running it. All referenced vectors, matrices and contexts stay
// caller-owned for the whole run.
type RunSpec struct {
	// A is the explicit operator for Direct/MatrixIterative solvers; nil
	// for matrix-free runs.
	A linsol.Matrix

	// ACtx/ATimes is the matrix-free operator binding, used when the
	// solver category accepts one.
	ACtx   any
	ATimes linsol.ATimesFn

	// PCtx/PSetup/PSolve is the optional preconditioner binding.
	PCtx   any
	PSetup linsol.PSetupFn
	PSolve linsol.PSolveFn

	// S1/S2 are optional scaling vectors.
	S1, S2 linsol.Vector

	// B is the right-hand side; X0 the initial guess (nil means zero).
	B  linsol.Vector
	X0 linsol.Vector

	Tol        float64
	Steps      int // Setup+Solve cycles to run (per-integration-step reuse)
	MaxRetries int // bounded retries on recoverable statuses
}

// StepResult records one Setup+Solve cycle.
type StepResult struct {
	Step    int
	Status  linsol.Status
	Iters   int
	ResNorm float64
	Retries int
}

// Result is the outcome of a full run.
type Result struct {
	X           linsol.Vector
	Steps       []StepResult
	FinalStatus linsol.Status
	Converged   bool
	Elapsed     time.Duration
	RealWords   int64
	IntWords    int64
}

// Observer receives a notification after every Setup+Solve cycle; the TUI
// and storage layers hook in here.
type Observer interface {
	OnStep(r StepResult, x linsol.Vector)
}

// Driver owns the caller side of the solver lifecycle: bind → initialize
// → per-step setup/solve → diagnostics, with the status-partition reaction
// policy (accept / bounded retry / abort) the contract leaves to callers.
type Driver struct {
	observers []Observer
}

func New() *Driver { return &Driver{} }

func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

// bind attaches the spec's optional operands according to the solver's
// advertised category; it never probes capabilities by trial.
func (d *Driver) bind(s linsol.Solver, spec RunSpec) linsol.Status {
	if s.Type() == linsol.Direct {
		return linsol.Success
	}
	if spec.ATimes != nil {
		if st := s.SetOperator(spec.ACtx, spec.ATimes); !st.OK() {
			return st
		}
	}
	if spec.PSolve != nil || spec.PSetup != nil {
		if st := s.SetPreconditioner(spec.PCtx, spec.PSetup, spec.PSolve); !st.OK() {
			return st
		}
	}
	if spec.S1 != nil || spec.S2 != nil {
		if st := s.SetScalingVectors(spec.S1, spec.S2); !st.OK() {
			return st
		}
	}
	return linsol.Success
}

// Run drives s through the full lifecycle against spec. The returned
// Result is valid even when err != nil (partial progress is reported).
func (d *Driver) Run(ctx context.Context, s linsol.Solver, spec RunSpec) (*Result, error) {
	log := logger.Logger().With().Str("category", s.Type().String()).Logger()

	if spec.B == nil {
		return nil, linsol.ErrNilVector
	}
	steps := spec.Steps
	if steps < 1 {
		steps = 1
	}

	x := linsol.NewVector(len(spec.B))
	if spec.X0 != nil {
		x.CopyFrom(spec.X0)
	}
	res := &Result{X: x, FinalStatus: linsol.Success}

	if st := d.bind(s, spec); !st.OK() {
		res.FinalStatus = st
		return res, fmt.Errorf("%w: bind: %s", ErrUnrecoverable, st)
	}
	if st := s.Initialize(); !st.OK() {
		res.FinalStatus = st
		return res, fmt.Errorf("%w: initialize: %s", ErrUnrecoverable, st)
	}
	defer func() {
		res.RealWords, res.IntWords = s.Space()
		s.Free()
	}()

	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	for step := 0; step < steps; step++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		st, retries := d.solveStep(s, spec, x)
		sr := StepResult{
			Step:    step,
			Status:  st,
			Iters:   s.NumIters(),
			ResNorm: s.ResNorm(),
			Retries: retries,
		}
		res.Steps = append(res.Steps, sr)
		res.FinalStatus = st
		for _, o := range d.observers {
			o.OnStep(sr, x)
		}

		switch {
		case st.OK():
			res.Converged = true
		case st.Unrecoverable():
			log.Error().Int("step", step).Stringer("status", st).
				Int64("last_flag", s.LastFlag()).Msg("solve aborted")
			res.Converged = false
			return res, fmt.Errorf("%w: step %d: %s", ErrUnrecoverable, step, st)
		default:
			// Recoverable after retries: keep the best-effort solution
			// and carry on, as a step controller would after shrinking.
			log.Warn().Int("step", step).Stringer("status", st).
				Float64("res_norm", s.ResNorm()).Msg("accepting partial solve")
			res.Converged = false
		}
	}

	log.Info().Int("steps", steps).Stringer("status", res.FinalStatus).
		Float64("res_norm", s.ResNorm()).Int("iters", s.NumIters()).
		Msg("run complete")
	return res, nil
}

// solveStep runs one Setup+Solve with the bounded recoverable-retry
// policy: refresh Setup and try again, never retrying an unrecoverable
// code.
func (d *Driver) solveStep(s linsol.Solver, spec RunSpec, x linsol.Vector) (linsol.Status, int) {
	var st linsol.Status
	for attempt := 0; ; attempt++ {
		if st = s.Setup(spec.A); st.Unrecoverable() {
			return st, attempt
		}
		if st.OK() {
			st = s.Solve(spec.A, x, spec.B, spec.Tol)
		}
		if st.OK() || st.Unrecoverable() || attempt >= spec.MaxRetries {
			return st, attempt
		}
		// Recoverable: restart from the best iterate already in x.
	}
}
