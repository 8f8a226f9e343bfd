package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/infrastructure/gateway/pgerr"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []error
	}{
		{
			name: "turn rejected by trigger",
			err:  &pq.Error{Code: "42501", Message: "it is not the turn of user u2"},
			want: []error{usecase.ErrForbidden},
		},
		{
			name: "duplicate pick",
			err:  &pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "draft_picks_unique"`},
			want: []error{usecase.ErrConflict, draft.ErrAlreadyOwned},
		},
		{
			name: "roster full",
			err:  &pq.Error{Code: "23514", Message: "roster is full for user u1"},
			want: []error{usecase.ErrConflict, draft.ErrRosterFull},
		},
		{
			name: "owner cap",
			err:  fmt.Errorf("exec: %w", &pq.Error{Code: "23514", Message: "contestant x reached max owners"}),
			want: []error{usecase.ErrConflict, draft.ErrContestantFull},
		},
		{
			name: "bad connection",
			err:  driver.ErrBadConn,
			want: []error{usecase.ErrDependencyUnavailable},
		},
		{
			name: "admin shutdown",
			err:  &pq.Error{Code: "57P01", Message: "terminating connection due to administrator command"},
			want: []error{usecase.ErrDependencyUnavailable},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.err)
			for _, target := range tc.want {
				if !errors.Is(got, target) {
					t.Fatalf("expected %v in %v", target, got)
				}
			}
		})
	}
}

func TestClassify_KeepsStoreDetails(t *testing.T) {
	got := classify(&pq.Error{Code: "23505", Message: "duplicate key", Detail: "Key (league_id, user_id, contestant_id) already exists."})

	var storeErr *pgerr.StoreError
	if !errors.As(got, &storeErr) {
		t.Fatalf("expected store error in %v", got)
	}
	if storeErr.Code != "23505" || storeErr.Details == "" {
		t.Fatalf("unexpected store error: %+v", storeErr)
	}
}

func TestClassify_PassesThroughContextErrors(t *testing.T) {
	if got := classify(context.DeadlineExceeded); got != context.DeadlineExceeded {
		t.Fatalf("expected deadline error unchanged, got %v", got)
	}
	if got := classify(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if isNotFound(errors.New("boom")) {
		t.Fatalf("expected unrelated error to be found")
	}
}

func TestRowConversions(t *testing.T) {
	league := leagueFromRow(leagueTableModel{
		ID:                     "l1",
		Status:                 "drafting",
		RosterSize:             3,
		DraftFormat:            "snake",
		OwnershipMode:          "multiple",
		MaxOwnersPerContestant: sql.NullInt64{Int64: 2, Valid: true},
		CommissionerID:         "u1",
	})
	if league.MaxOwnersPerContestant == nil || *league.MaxOwnersPerContestant != 2 {
		t.Fatalf("unexpected max owners: %v", league.MaxOwnersPerContestant)
	}
	if league.DraftFormat != draft.FormatSnake || league.Status != draft.StatusDrafting {
		t.Fatalf("unexpected league: %+v", league)
	}

	unset := memberFromRow(memberTableModel{UserID: "u2"})
	if unset.DraftPosition != nil {
		t.Fatalf("expected unset position, got %v", *unset.DraftPosition)
	}
	set := memberFromRow(memberTableModel{UserID: "u3", DraftPosition: sql.NullInt64{Int64: 4, Valid: true}})
	if set.DraftPosition == nil || *set.DraftPosition != 4 {
		t.Fatalf("unexpected position: %v", set.DraftPosition)
	}

	local := time.Date(2026, 5, 1, 22, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	pick := pickFromRow(pickTableModel{LeagueID: "l1", UserID: "u1", ContestantID: "x", CreatedAt: local})
	if pick.CreatedAt.Location() != time.UTC || !pick.CreatedAt.Equal(local) {
		t.Fatalf("expected UTC timestamp, got %v", pick.CreatedAt)
	}
}
