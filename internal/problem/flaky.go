package problem

import (
	"github.com/san-kum/linsolve/internal/linsol"
)

// Flaky wraps another problem's operator with a product that starts
// failing after FailAfter successful applications, reporting the
// configured status. It exists to drive the callback-failure paths of the
// solver contract (recoverable vs unrecoverable propagation).
type Flaky struct {
	Inner     Problem
	FailAfter int
	Report    linsol.Status

	calls int
}

func NewFlaky(inner Problem, failAfter int, report linsol.Status) *Flaky {
	return &Flaky{Inner: inner, FailAfter: failAfter, Report: report}
}

func (p *Flaky) Name() string { return p.Inner.Name() + "+flaky" }
func (p *Flaky) Dim() int     { return p.Inner.Dim() }

func (p *Flaky) Matrix() linsol.Matrix { return nil }

func (p *Flaky) ATimes() (any, linsol.ATimesFn) {
	ctx, inner := p.Inner.ATimes()
	return nil, func(_ any, v, z linsol.Vector) linsol.Status {
		if p.calls >= p.FailAfter {
			return p.Report
		}
		p.calls++
		return inner(ctx, v, z)
	}
}

// Reset re-arms the failure counter for a fresh solve attempt.
func (p *Flaky) Reset() { p.calls = 0 }

func (p *Flaky) Diagonal() linsol.Vector { return p.Inner.Diagonal() }
func (p *Flaky) Solution() linsol.Vector { return p.Inner.Solution() }
func (p *Flaky) RHS() linsol.Vector      { return p.Inner.RHS() }
