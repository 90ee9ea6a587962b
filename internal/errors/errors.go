package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/studylog/internal/logger"
)

var (
	// ErrStorageUnavailable means the database could not be opened or reached.
	// Nothing that depends on the database should proceed after it.
	ErrStorageUnavailable = stderrors.New("storage unavailable")
	// ErrDuplicateEntry means a write hit a uniqueness constraint. The caller
	// should ask the user to change the identifying fields.
	ErrDuplicateEntry = stderrors.New("duplicate entry")
	// ErrNotFound means no row has the requested id.
	ErrNotFound = stderrors.New("record not found")
	// ErrFieldNotAllowed means a targeted field update named a column outside the allow-list.
	ErrFieldNotAllowed = stderrors.New("field cannot be updated")
)

// ValidationError carries every rule a record violated, one message per rule.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "validation failed: " + e.Problems[0]
	}
	return fmt.Sprintf("validation failed: %d problems: %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// NewValidationError returns nil when there are no problems.
func NewValidationError(problems ...string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// StorageError wraps any driver failure that is not a duplicate.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// DuplicateError names the table and the identifying values that collided.
type DuplicateError struct {
	Table string
	Key   string
	Err   error
}

func (e *DuplicateError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("duplicate entry in %s", e.Table)
	}
	return fmt.Sprintf("duplicate entry in %s: %s already exists", e.Table, e.Key)
}

// Is lets errors.Is(err, ErrDuplicateEntry) match.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicateEntry
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}

// IsDuplicate reports whether err is a uniqueness violation.
func IsDuplicate(err error) bool {
	return stderrors.Is(err, ErrDuplicateEntry)
}

// AsValidation returns the ValidationError inside err, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsRecoverable reports whether err is a user-correctable condition
// (duplicate or validation) rather than a failure.
func IsRecoverable(err error) bool {
	if IsDuplicate(err) {
		return true
	}
	_, ok := AsValidation(err)
	return ok
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Warning renders a recoverable error for the user.
func Warning(err error) string {
	if ve, ok := AsValidation(err); ok {
		var b strings.Builder
		b.WriteString("Warning: please fix the following:")
		for _, p := range ve.Problems {
			b.WriteString("\n  - ")
			b.WriteString(p)
		}
		return b.String()
	}
	if IsDuplicate(err) {
		return fmt.Sprintf("Warning: %v. Change the identifying fields and try again.", err)
	}
	return fmt.Sprintf("Warning: %v", err)
}

// Report prints err once at the command boundary. Duplicates and validation
// failures are warnings and are not logged as errors. It returns the process
// exit code.
func Report(err error) int {
	if err == nil {
		return 0
	}
	if IsRecoverable(err) {
		logger.Debug("Command rejected input", "error", err)
		fmt.Fprintln(os.Stderr, Warning(err))
		return 2
	}
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintln(os.Stderr, Format(err))
	return 1
}
