package pgerr

import (
	"errors"
	"testing"

	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		code    string
		message string
		want    []error
	}{
		{name: "rls by code", code: "42501", message: "permission denied", want: []error{usecase.ErrForbidden}},
		{name: "rls by message", message: `new row violates row-level security policy for table "draft_picks"`, want: []error{usecase.ErrForbidden}},
		{name: "unique", code: "23505", message: "duplicate key value violates unique constraint", want: []error{usecase.ErrConflict, draft.ErrAlreadyOwned}},
		{name: "max owners", code: "23514", message: "contestant reached max owners", want: []error{usecase.ErrConflict, draft.ErrContestantFull}},
		{name: "roster full", code: "23514", message: "roster is full", want: []error{usecase.ErrConflict, draft.ErrRosterFull}},
		{name: "foreign key", code: "23503", message: "insert violates foreign key", want: []error{usecase.ErrInvalidInput}},
		{name: "jwt expired", code: "PGRST301", message: "JWT expired", want: []error{usecase.ErrUnauthorized}},
		{name: "no rows", code: "PGRST116", message: "The result contains 0 rows", want: []error{usecase.ErrNotFound}},
		{name: "connection", code: "08006", message: "connection failure", want: []error{usecase.ErrDependencyUnavailable}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cause := &StoreError{Code: tc.code, Message: tc.message}
			err := Classify(tc.code, tc.message, cause)
			for _, target := range tc.want {
				if !errors.Is(err, target) {
					t.Fatalf("expected %v in %v", target, err)
				}
			}
			var storeErr *StoreError
			if !errors.As(err, &storeErr) || storeErr.Code != tc.code {
				t.Fatalf("expected cause to be preserved, got %v", err)
			}
		})
	}
}

func TestClassify_UnknownPassesThrough(t *testing.T) {
	t.Parallel()

	cause := errors.New("something odd")
	if err := Classify("XX000", "internal error", cause); err != cause {
		t.Fatalf("expected cause unchanged, got %v", err)
	}
}
