package repository

import (
	"errors"
	"strings"
)

// Kind classifies a store failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation: caller-supplied data violates field constraints.
	// Never reaches storage.
	KindValidation
	// KindDuplicateKey: another live node already has the name.
	KindDuplicateKey
	// KindOptimisticLock: the conditional update matched no row, either
	// because the version is stale or the node is gone.
	KindOptimisticLock
	// KindNotFound: no live node with the id.
	KindNotFound
	// KindStore: any other storage failure. Fatal for the operation.
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicateKey:
		return "duplicate key"
	case KindOptimisticLock:
		return "optimistic lock conflict"
	case KindNotFound:
		return "not found"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Code returns the stable error code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindDuplicateKey:
		return "DUPLICATE_KEY"
	case KindOptimisticLock:
		return "OPTIMISTIC_LOCK_ERROR"
	case KindNotFound:
		return "NODE_NOT_FOUND"
	case KindStore:
		return "DATABASE_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Error is the single error type returned by the node store.
type Error struct {
	Kind Kind
	Op   string // operation, e.g. "save node"
	Msg  string
	Err  error // underlying driver error, if any
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Msg == "" && t.Err == nil
}

// Sentinels for errors.Is.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrDuplicateKey   = &Error{Kind: KindDuplicateKey}
	ErrOptimisticLock = &Error{Kind: KindOptimisticLock}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrStore          = &Error{Kind: KindStore}
)

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func validationError(op, msg string) error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg}
}
