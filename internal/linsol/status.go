package linsol

import "fmt"

// Status is the signed return code shared by every mutating solver
// operation. Zero means success/converged. Positive codes are recoverable:
// the solve produced a usable (possibly partial) result, or an attached
// callback failed in a way the caller may retry after adjusting inputs.
// Negative codes are unrecoverable and must not be retried.
//
// The exact values are an external contract; integrator drivers branch on
// them directly.
type Status int

const (
	Success Status = 0 // successful call / converged solve

	// Unrecoverable conditions.
	MemNull          Status = -801 // nil solver handle
	IllInput         Status = -802 // illegal input for this solver category
	MemFail          Status = -803 // workspace allocation or access failure
	ATimesFailUnrec  Status = -804 // operator product failed unrecoverably
	PSetupFailUnrec  Status = -805 // preconditioner setup failed unrecoverably
	PSolveFailUnrec  Status = -806 // preconditioner solve failed unrecoverably
	PackageFailUnrec Status = -807 // external package failed unrecoverably
	GSFail           Status = -808 // Gram-Schmidt orthogonalization failure
	QRSolFail        Status = -809 // singular R in least-squares solve
	VectorOpErr      Status = -810 // vector operation error

	// Recoverable conditions.
	ResReduced     Status = 801 // residual reduced but tolerance not met
	ConvFail       Status = 802 // solve did not converge
	ATimesFailRec  Status = 803 // operator product failed recoverably
	PSetupFailRec  Status = 804 // preconditioner setup failed recoverably
	PSolveFailRec  Status = 805 // preconditioner solve failed recoverably
	PackageFailRec Status = 806 // external package failed recoverably
	QRFactFail     Status = 807 // QR factorization found singular matrix
	LUFactFail     Status = 808 // LU factorization found singular matrix
)

// OK reports whether the operation fully succeeded.
func (s Status) OK() bool { return s == Success }

// Recoverable reports whether the caller may retry after adjusting inputs
// (smaller step, refreshed preconditioner, looser tolerance). Success is
// neither recoverable nor unrecoverable.
func (s Status) Recoverable() bool { return s > 0 }

// Unrecoverable reports whether the caller must abandon the solve.
func (s Status) Unrecoverable() bool { return s < 0 }

var statusNames = map[Status]string{
	Success:          "success",
	MemNull:          "null solver handle",
	IllInput:         "illegal input",
	MemFail:          "memory failure",
	ATimesFailUnrec:  "operator product failed (unrecoverable)",
	PSetupFailUnrec:  "preconditioner setup failed (unrecoverable)",
	PSolveFailUnrec:  "preconditioner solve failed (unrecoverable)",
	PackageFailUnrec: "external package failure (unrecoverable)",
	GSFail:           "orthogonalization failure",
	QRSolFail:        "singular triangular system",
	VectorOpErr:      "vector operation error",
	ResReduced:       "residual reduced, not converged",
	ConvFail:         "solve did not converge",
	ATimesFailRec:    "operator product failed (recoverable)",
	PSetupFailRec:    "preconditioner setup failed (recoverable)",
	PSolveFailRec:    "preconditioner solve failed (recoverable)",
	PackageFailRec:   "external package failure (recoverable)",
	QRFactFail:       "singular matrix in QR factorization",
	LUFactFail:       "singular matrix in LU factorization",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown status (%d)", int(s))
}
