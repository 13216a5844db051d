// Package errs defines the error taxonomy shared across fleetsync's
// collection, reconciliation, and pipeline components. Each sentinel is
// wrapped with context via fmt.Errorf("...: %w", Sentinel) at the call site
// so callers can still use errors.Is/errors.As against the taxonomy while
// getting a specific, readable message.
package errs

import "errors"

// Transport errors (§7 "Transport").
var (
	// ErrAuthenticationFailed is terminal: the connection manager never retries it.
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrConnectTimeout       = errors.New("connect timeout")
	ErrConnectFailed        = errors.New("connect failed")
	ErrCommandFailed        = errors.New("command failed")
)

// Input/validation errors.
var (
	ErrUnknownPlatform   = errors.New("unknown platform tag")
	ErrInvalidDevice     = errors.New("malformed device entry")
	ErrDependencyMissing = errors.New("pipeline step depends on an unknown step id")
	ErrDependencyCycle   = errors.New("pipeline step dependency graph has a cycle")
	ErrInvalidFieldSpec  = errors.New("invalid field-registry entry")
)

// Reconciliation errors.
var (
	ErrRemoteDeviceNotFound = errors.New("remote device not found")
	ErrRemoteObjectRejected = errors.New("remote inventory rejected payload")
	ErrBatchRejected        = errors.New("remote inventory rejected batch call")
)

// Internal errors.
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrTaskTerminal     = errors.New("task already in a terminal state")
	ErrHistoryWriteFail = errors.New("history file write failed")
)

// IsRetryable reports whether err represents a transport condition the
// connection manager's retry policy should attempt again. Authentication
// failure is deliberately excluded — it is terminal per spec.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConnectTimeout) || errors.Is(err, ErrConnectFailed)
}
