// Package driver implements the caller side of the solver contract: it
// binds operands by advertised category, walks the construct → initialize
// → setup → solve → diagnostics lifecycle, and reacts to the three-way
// status partition (accept success, retry recoverable a bounded number of
// times, abort unrecoverable without retry).
//
// It is the integrator-facing orchestration layer; observers hook per-step
// results for live display and persistence.
package driver
