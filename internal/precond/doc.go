// Package precond provides preconditioner implementations exposed as the
// setup/solve callback pair the linsol binding contract expects.
package precond
