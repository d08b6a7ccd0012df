package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/linsolve/internal/krylov"
	"github.com/san-kum/linsolve/internal/linsol"
	"github.com/san-kum/linsolve/internal/precond"
	"github.com/san-kum/linsolve/internal/problem"
)

// scripted is a fake solver whose Solve returns a preset status sequence.
// It lets the retry policy be tested without any numerics.
type scripted struct {
	script   []linsol.Status
	call     int
	setups   int
	freed    bool
	rejectOp bool
}

func (s *scripted) Type() linsol.Category { return linsol.Iterative }

func (s *scripted) SetOperator(ctx any, fn linsol.ATimesFn) linsol.Status {
	if s.rejectOp {
		return linsol.IllInput
	}
	return linsol.Success
}

func (s *scripted) SetPreconditioner(ctx any, setup linsol.PSetupFn, solve linsol.PSolveFn) linsol.Status {
	return linsol.Success
}

func (s *scripted) SetScalingVectors(s1, s2 linsol.Vector) linsol.Status {
	return linsol.Success
}

func (s *scripted) Initialize() linsol.Status { return linsol.Success }

func (s *scripted) Setup(A linsol.Matrix) linsol.Status {
	s.setups++
	return linsol.Success
}

func (s *scripted) Solve(A linsol.Matrix, x, b linsol.Vector, tol float64) linsol.Status {
	if s.call >= len(s.script) {
		return linsol.Success
	}
	st := s.script[s.call]
	s.call++
	return st
}

func (s *scripted) NumIters() int         { return s.call }
func (s *scripted) ResNorm() float64      { return 0 }
func (s *scripted) Resid() linsol.Vector  { return nil }
func (s *scripted) LastFlag() int64       { return int64(linsol.Success) }
func (s *scripted) Space() (int64, int64) { return 10, 2 }
func (s *scripted) Free() linsol.Status   { s.freed = true; return linsol.Success }

func runSpec() RunSpec {
	return RunSpec{
		ATimes:     func(ctx any, v, z linsol.Vector) linsol.Status { z.CopyFrom(v); return linsol.Success },
		B:          linsol.Vector{1, 1, 1},
		Tol:        1e-8,
		Steps:      1,
		MaxRetries: 2,
	}
}

func TestRetryOnRecoverable(t *testing.T) {
	s := &scripted{script: []linsol.Status{linsol.ConvFail, linsol.ConvFail, linsol.Success}}
	res, err := New().Run(context.Background(), s, runSpec())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Converged {
		t.Fatal("expected convergence after retries")
	}
	if got := res.Steps[0].Retries; got != 2 {
		t.Errorf("retries = %d, want 2", got)
	}
	if s.setups != 3 {
		t.Errorf("setups = %d, want 3 (one per attempt)", s.setups)
	}
	if !s.freed {
		t.Error("solver was not freed")
	}
}

func TestNoRetryOnUnrecoverable(t *testing.T) {
	s := &scripted{script: []linsol.Status{linsol.ATimesFailUnrec, linsol.Success}}
	res, err := New().Run(context.Background(), s, runSpec())
	if !errors.Is(err, ErrUnrecoverable) {
		t.Fatalf("err = %v, want ErrUnrecoverable", err)
	}
	if s.call != 1 {
		t.Errorf("solve calls = %d, want 1 (no retry)", s.call)
	}
	if res.FinalStatus != linsol.ATimesFailUnrec {
		t.Errorf("final status = %v", res.FinalStatus)
	}
	if !s.freed {
		t.Error("solver must be freed even on abort")
	}
	if res.RealWords != 10 || res.IntWords != 2 {
		t.Errorf("workspace = (%d, %d), want (10, 2)", res.RealWords, res.IntWords)
	}
}

func TestRetriesExhausted(t *testing.T) {
	s := &scripted{script: []linsol.Status{
		linsol.ConvFail, linsol.ConvFail, linsol.ConvFail, linsol.Success,
	}}
	res, err := New().Run(context.Background(), s, runSpec())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// MaxRetries=2 means three attempts; the partial result is accepted.
	if res.Converged {
		t.Fatal("should not report convergence")
	}
	if res.FinalStatus != linsol.ConvFail {
		t.Errorf("final status = %v, want %v", res.FinalStatus, linsol.ConvFail)
	}
}

func TestBindFailureAborts(t *testing.T) {
	s := &scripted{rejectOp: true}
	_, err := New().Run(context.Background(), s, runSpec())
	if !errors.Is(err, ErrUnrecoverable) {
		t.Fatalf("err = %v, want ErrUnrecoverable", err)
	}
	if s.setups != 0 {
		t.Error("setup must not run after a failed bind")
	}
}

func TestNilRHS(t *testing.T) {
	spec := runSpec()
	spec.B = nil
	if _, err := New().Run(context.Background(), &scripted{}, spec); err == nil {
		t.Fatal("expected error for nil rhs")
	}
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	spec := runSpec()
	spec.Steps = 5
	_, err := New().Run(ctx, &scripted{}, spec)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

type recorder struct {
	steps []StepResult
}

func (r *recorder) OnStep(sr StepResult, x linsol.Vector) { r.steps = append(r.steps, sr) }

func TestObserverSeesEveryStep(t *testing.T) {
	d := New()
	rec := &recorder{}
	d.AddObserver(rec)

	spec := runSpec()
	spec.Steps = 4
	if _, err := d.Run(context.Background(), &scripted{}, spec); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rec.steps) != 4 {
		t.Fatalf("observed %d steps, want 4", len(rec.steps))
	}
	for i, sr := range rec.steps {
		if sr.Step != i {
			t.Errorf("step %d recorded as %d", i, sr.Step)
		}
	}
}

func TestRunLaplaceGMRES(t *testing.T) {
	p := problem.NewLaplace1D(40)
	s, err := krylov.NewGMRES(p.Dim(), krylov.Options{MaxKrylov: 40, MaxRestarts: 5})
	if err != nil {
		t.Fatalf("NewGMRES: %v", err)
	}
	j, err := precond.NewJacobi(p.Diagonal())
	if err != nil {
		t.Fatalf("NewJacobi: %v", err)
	}

	ctx, fn := p.ATimes()
	spec := RunSpec{
		ACtx: ctx, ATimes: fn,
		PCtx: j, PSetup: precond.Setup, PSolve: precond.Solve,
		B:     p.RHS(),
		Tol:   1e-9,
		Steps: 3,
	}
	res, err := New().Run(context.Background(), s, spec)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Converged {
		t.Fatalf("final status = %v, want success", res.FinalStatus)
	}
	if len(res.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(res.Steps))
	}
	if res.RealWords == 0 {
		t.Error("workspace report missing")
	}
	want := p.Solution()
	for i := range res.X {
		if diff := res.X[i] - want[i]; diff > 1e-5 || diff < -1e-5 {
			t.Fatalf("x[%d] = %v, want %v", i, res.X[i], want[i])
		}
	}
}
