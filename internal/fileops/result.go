package fileops

import "fmt"

// Result represents the outcome of a file operation.
//
// Every operation fails soft: instead of propagating an error, it returns a
// Result with Success false and a human-readable Diagnostic. A Result with
// Success false and an empty Diagnostic is a clean no-op (nothing went wrong,
// the operation simply had nothing to do), which lets callers distinguish
// "not found" from "failed".
type Result struct {
	// Success indicates whether the operation completed.
	Success bool
	// Diagnostic holds a human-readable failure description, empty on
	// success and on clean no-ops.
	Diagnostic string
}

// ok returns a successful Result.
func ok() Result {
	return Result{Success: true}
}

// noop returns an unsuccessful Result with no diagnostic.
func noop() Result {
	return Result{}
}

// failf returns an unsuccessful Result with a formatted diagnostic.
func failf(format string, args ...interface{}) Result {
	return Result{Diagnostic: fmt.Sprintf(format, args...)}
}
