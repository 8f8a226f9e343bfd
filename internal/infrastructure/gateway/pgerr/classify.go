// Package pgerr maps Postgres and PostgREST failures onto the usecase error
// taxonomy. Both the hosted REST gateway and the direct SQL gateway report
// the same SQLSTATE codes, so classification lives in one place.
package pgerr

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

const (
	CodeInsufficientPrivilege = "42501"
	CodeUniqueViolation       = "23505"
	CodeCheckViolation        = "23514"
	CodeForeignKeyViolation   = "23503"
	CodeJWTExpired            = "PGRST301"
	CodeNoRows                = "PGRST116"
)

// Classify wraps cause with the matching usecase sentinel. message is the
// store's human readable text; it is matched as a fallback when the code is
// missing.
func Classify(code, message string, cause error) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	lower := strings.ToLower(message)

	switch {
	case code == CodeInsufficientPrivilege || strings.Contains(lower, "row-level security"):
		return fmt.Errorf("%w: %w", usecase.ErrForbidden, cause)
	case code == CodeUniqueViolation || strings.Contains(lower, "duplicate") || strings.Contains(lower, "unique"):
		return fmt.Errorf("%w: %w: %w", usecase.ErrConflict, draft.ErrAlreadyOwned, cause)
	case strings.Contains(lower, "roster"):
		return fmt.Errorf("%w: %w: %w", usecase.ErrConflict, draft.ErrRosterFull, cause)
	case code == CodeCheckViolation || strings.Contains(lower, "max owners") || strings.Contains(lower, "reached"):
		return fmt.Errorf("%w: %w: %w", usecase.ErrConflict, draft.ErrContestantFull, cause)
	case code == CodeForeignKeyViolation:
		return fmt.Errorf("%w: %w", usecase.ErrInvalidInput, cause)
	case code == CodeJWTExpired || strings.Contains(lower, "jwt"):
		return fmt.Errorf("%w: %w", usecase.ErrUnauthorized, cause)
	case code == CodeNoRows:
		return fmt.Errorf("%w: %w", usecase.ErrNotFound, cause)
	case strings.HasPrefix(code, "08") || strings.HasPrefix(code, "53") || strings.HasPrefix(code, "57"):
		// connection exception, insufficient resources, operator intervention
		return fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, cause)
	default:
		return cause
	}
}

// StoreError is a rejection reported by the store with its SQLSTATE.
type StoreError struct {
	Code    string
	Message string
	Details string
	Hint    string
}

func (e *StoreError) Error() string {
	msg := e.Message
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	if e.Code == "" {
		return msg
	}
	return e.Code + ": " + msg
}
