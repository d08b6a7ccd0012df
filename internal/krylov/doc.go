// Package krylov implements the iterative solver backends:
//
//   - [GMRES]: restarted GMRES with modified Gram-Schmidt, left
//     preconditioning and row/column scaling; matrix-free or matrix-backed
//   - [PCG]: preconditioned conjugate gradient for SPD operators
//
// Both report through the shared linsol.Status code space: callback
// failures propagate with the callback's own recoverable/unrecoverable
// sign, non-convergence is recoverable, and the solution vector always
// holds the best iterate on recoverable outcomes.
package krylov
