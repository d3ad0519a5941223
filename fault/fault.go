// Package fault defines the closed set of failure kinds shared by every
// lvlbfs package, and the structured Error value that carries them.
//
// Kinds:
//
//	Config   - fatal configuration problem (bad file, bad banner, no device).
//	Ingest   - a single malformed input record; callers skip and continue.
//	Backend  - an accelerator operation failed; the current trial is void.
//	Mismatch - a verification finding (parallel result differs from reference).
//
// Callers branch with errors.Is(err, fault.ErrBackend) or fault.KindOf(err).
package fault

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind uint8

const (
	// Unknown is the zero Kind; it never appears on an Error built by this package.
	Unknown Kind = iota
	// Config marks fatal configuration and input-format errors.
	Config
	// Ingest marks recoverable per-record ingestion warnings.
	Ingest
	// Backend marks accelerator operation failures.
	Backend
	// Mismatch marks verification findings.
	Mismatch
)

// String returns the lower-case name of k.
func (k Kind) String() string {
	switch k {
	case Config:
		return "config"
	case Ingest:
		return "ingest"
	case Backend:
		return "backend"
	case Mismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per Kind. An *Error matches the sentinel of its Kind
// under errors.Is.
var (
	ErrConfig   = errors.New("fault: configuration error")
	ErrIngest   = errors.New("fault: ingestion warning")
	ErrBackend  = errors.New("fault: backend operation failure")
	ErrMismatch = errors.New("fault: verification mismatch")
)

// Error is a classified failure with structured context.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// Op names the failing operation ("alloc", "dispatch", "read-banner", ...).
	Op string
	// Status is the backend status name (e.g. "OUT_OF_RESOURCES"); empty otherwise.
	Status string
	// Vertex is the offending vertex index, or -1.
	Vertex int
	// Line is the 1-based input line, or 0.
	Line int
	// Err is the underlying cause; may be nil.
	Err error
}

// New returns an *Error of kind k for operation op wrapping err.
// Vertex is initialised to -1.
func New(k Kind, op string, err error) *Error {
	return &Error{Kind: k, Op: op, Vertex: -1, Err: err}
}

// Configf builds a Config error with a formatted cause.
func Configf(op, format string, args ...any) *Error {
	return New(Config, op, fmt.Errorf(format, args...))
}

// Backendf builds a Backend error carrying a status name.
func Backendf(op, status, format string, args ...any) *Error {
	e := New(Backend, op, fmt.Errorf(format, args...))
	e.Status = status
	return e
}

// Error renders "<kind> <op>[ status=S][ line=L][ vertex=V]: <cause>".
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Op != "" {
		b.WriteByte(' ')
		b.WriteString(e.Op)
	}
	if e.Status != "" {
		fmt.Fprintf(&b, " status=%s", e.Status)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " line=%d", e.Line)
	}
	if e.Vertex >= 0 {
		fmt.Fprintf(&b, " vertex=%d", e.Vertex)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel matching e.Kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == sentinel(e.Kind)
}

// KindOf returns the Kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}

	return Unknown
}

// StatusOf returns the backend status of the first *Error in err's chain.
func StatusOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Status
	}

	return ""
}

func sentinel(k Kind) error {
	switch k {
	case Config:
		return ErrConfig
	case Ingest:
		return ErrIngest
	case Backend:
		return ErrBackend
	case Mismatch:
		return ErrMismatch
	default:
		return nil
	}
}
