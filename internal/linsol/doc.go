// Package linsol defines the generic linear solver contract used by the
// integration drivers in this repository.
//
// The package provides:
//
//   - [Solver]: the operation table every backend implements
//   - [Category]: direct / iterative / matrix-iterative capability classes
//   - [Status]: the shared signed return-code space (zero success,
//     positive recoverable, negative unrecoverable)
//   - [ATimesFn], [PSetupFn], [PSolveFn]: caller-supplied operand bindings
//   - [Vector], [Matrix]: the operand types backends act on
//
// # Lifecycle
//
//	s := krylov.NewGMRES(n, krylov.Options{})
//	s.SetOperator(opCtx, op.ATimes)
//	s.Initialize()
//	for each step {
//		s.Setup(nil)
//		s.Solve(nil, x, b, tol)
//	}
//	s.Free()
//
// # Thread Safety
//
// A handle has no internal locking; callers serialize access to it.
// Distinct handles are independent and may run on independent goroutines.
package linsol
