package cli

import (
	"github.com/alexanderramin/nodestore/internal/cli/formatter"
	"github.com/alexanderramin/nodestore/internal/repository"
)

// Process exit codes per error kind.
const (
	ExitOK         = 0
	ExitStore      = 1
	ExitValidation = 2
	ExitDuplicate  = 3
	ExitConflict   = 4
	ExitNotFound   = 5
)

// ExitCode maps an error returned by a command to a process exit code.
// Errors from outside the store (bad flags, I/O) exit 1.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch repository.KindOf(err) {
	case repository.KindValidation:
		return ExitValidation
	case repository.KindDuplicateKey:
		return ExitDuplicate
	case repository.KindOptimisticLock:
		return ExitConflict
	case repository.KindNotFound:
		return ExitNotFound
	default:
		return ExitStore
	}
}

// FormatError renders err for the terminal with its error code.
func FormatError(err error) string {
	kind := repository.KindOf(err)
	code := "ERROR"
	if kind != repository.KindUnknown {
		code = kind.Code()
	}
	msg := err.Error()
	if kind == repository.KindOptimisticLock {
		msg += " (re-read the node and retry)"
	}
	return formatter.Failure(code, msg)
}

func notFound(op string, what string) error {
	return &repository.Error{Kind: repository.KindNotFound, Op: op, Msg: what}
}
