package postgrest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/domain/user"
	"github.com/riskibarqy/fantasy-draft/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewGateway(Config{
		HTTPClient:     srv.Client(),
		BaseURL:        srv.URL,
		AnonKey:        "anon-key",
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
	})
}

func TestGateway_GetLeague_SendsCallerTokenAndDecodes(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/rest/v1/leagues" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("apikey"); got != "anon-key" {
			t.Fatalf("unexpected apikey: %s", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer user-token" {
			t.Fatalf("unexpected authorization: %s", got)
		}
		if got := r.URL.Query().Get("id"); got != "eq.league-1" {
			t.Fatalf("unexpected id filter: %s", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = jsoniter.NewEncoder(w).Encode([]map[string]any{{
			"id":                        "league-1",
			"name":                      "Werk Room",
			"season_id":                 "season-16",
			"status":                    "drafting",
			"roster_size":               3,
			"draft_format":              "snake",
			"ownership_mode":            "multiple",
			"max_owners_per_contestant": 2,
			"commissioner_id":           "u1",
		}})
	})

	ctx := user.WithAccessToken(context.Background(), "user-token")
	league, found, err := gw.GetLeague(ctx, "league-1")
	if err != nil {
		t.Fatalf("get league: %v", err)
	}
	if !found {
		t.Fatalf("expected league found")
	}
	if league.DraftFormat != draft.FormatSnake || league.OwnershipMode != draft.OwnershipMultiple {
		t.Fatalf("unexpected league rules: %+v", league)
	}
	if league.MaxOwnersPerContestant == nil || *league.MaxOwnersPerContestant != 2 {
		t.Fatalf("unexpected max owners: %v", league.MaxOwnersPerContestant)
	}
}

func TestGateway_GetLeague_EmptyIsNotFound(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer anon-key" {
			t.Fatalf("expected anon key fallback, got %s", got)
		}
		_, _ = w.Write([]byte("[]"))
	})

	_, found, err := gw.GetLeague(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get league: %v", err)
	}
	if found {
		t.Fatalf("expected not found")
	}
}

func TestGateway_ListMembers_OrdersNullsLast(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("order"); got != "draft_position.asc.nullslast,user_id.asc" {
			t.Fatalf("unexpected order: %s", got)
		}
		_, _ = w.Write([]byte(`[{"user_id":"u2","draft_position":1},{"user_id":"u1","draft_position":null}]`))
	})

	members, err := gw.ListMembers(context.Background(), "league-1")
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 || members[0].DraftPosition == nil || members[1].DraftPosition != nil {
		t.Fatalf("unexpected members: %+v", members)
	}
}

func TestGateway_InsertPicks_SingleBatchRequest(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != "/rest/v1/draft_picks" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Prefer"); got != "return=minimal" {
			t.Fatalf("unexpected prefer: %s", got)
		}

		var rows []map[string]any
		if err := jsoniter.NewDecoder(r.Body).Decode(&rows); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(rows) != 2 || rows[1]["contestant_id"] != "y" || rows[0]["user_id"] != "u1" {
			t.Fatalf("unexpected rows: %v", rows)
		}
		w.WriteHeader(http.StatusCreated)
	})

	createdAt := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)
	err := gw.InsertPicks(context.Background(), []draft.Pick{
		{LeagueID: "league-1", UserID: "u1", ContestantID: "x", CreatedAt: createdAt},
		{LeagueID: "league-1", UserID: "u1", ContestantID: "y", CreatedAt: createdAt},
	})
	if err != nil {
		t.Fatalf("insert picks: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one request, got %d", got)
	}
}

func TestGateway_InsertPicks_ClassifiesRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   []error
	}{
		{
			name:   "row level security",
			status: http.StatusForbidden,
			body:   `{"code":"42501","message":"new row violates row-level security policy for table \"draft_picks\""}`,
			want:   []error{usecase.ErrForbidden},
		},
		{
			name:   "duplicate",
			status: http.StatusConflict,
			body:   `{"code":"23505","message":"duplicate key value violates unique constraint \"draft_picks_unique\""}`,
			want:   []error{usecase.ErrConflict, draft.ErrAlreadyOwned},
		},
		{
			name:   "max owners",
			status: http.StatusBadRequest,
			body:   `{"code":"23514","message":"contestant reached max owners"}`,
			want:   []error{usecase.ErrConflict, draft.ErrContestantFull},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			body:   `upstream down`,
			want:   []error{usecase.ErrDependencyUnavailable},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			err := gw.InsertPicks(context.Background(), []draft.Pick{{LeagueID: "league-1", UserID: "u1", ContestantID: "x"}})
			for _, target := range tc.want {
				if !errors.Is(err, target) {
					t.Fatalf("expected %v in %v", target, err)
				}
			}
			if got := calls.Load(); got != 1 {
				t.Fatalf("writes must not be retried, got %d requests", got)
			}
		})
	}
}

func TestGateway_UpdateLeagueStatus_ZeroRowsIsForbidden(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if got := r.URL.Query().Get("commissioner_id"); got != "eq.u2" {
			t.Fatalf("expected commissioner guard, got %s", got)
		}
		var body map[string]any
		if err := jsoniter.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["status"] != "active" {
			t.Fatalf("unexpected status body: %v", body)
		}
		_, _ = w.Write([]byte("[]"))
	})

	err := gw.UpdateLeagueStatus(context.Background(), "league-1", "u2", draft.StatusActive)
	if !errors.Is(err, usecase.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestGateway_ClearDraftPositions_SendsNull(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := jsoniter.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		v, ok := body["draft_position"]
		if !ok || v != nil {
			t.Fatalf("expected explicit null draft_position, got %v", body)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := gw.ClearDraftPositions(context.Background(), "league-1"); err != nil {
		t.Fatalf("clear draft positions: %v", err)
	}
}

func TestGateway_DeleteAndCountPicks(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			_, _ = w.Write([]byte(`[{"id":1},{"id":2},{"id":3}]`))
		case http.MethodHead:
			if got := r.Header.Get("Prefer"); got != "count=exact" {
				t.Fatalf("unexpected prefer: %s", got)
			}
			w.Header().Set("Content-Range", "*/2")
			w.WriteHeader(http.StatusOK)
		default:
			t.Fatalf("unexpected method: %s", r.Method)
		}
	})

	deleted, err := gw.DeletePicks(context.Background(), "league-1")
	if err != nil || deleted != 3 {
		t.Fatalf("unexpected delete result: %d %v", deleted, err)
	}
	remaining, err := gw.CountPicks(context.Background(), "league-1")
	if err != nil || remaining != 2 {
		t.Fatalf("unexpected count result: %d %v", remaining, err)
	}
}

func TestGateway_CircuitOpensOnTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	gw := NewGateway(Config{
		HTTPClient: srv.Client(),
		BaseURL:    srv.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	for i := 0; i < 3; i++ {
		_, _, err := gw.GetLeague(context.Background(), "league-1")
		if !errors.Is(err, usecase.ErrDependencyUnavailable) {
			t.Fatalf("attempt %d: expected ErrDependencyUnavailable, got %v", i, err)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected breaker to stop the third request, got %d requests", got)
	}
}

func TestParseContentRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{value: "0-24/3573", want: 3573},
		{value: "*/0", want: 0},
		{value: "*/*", wantErr: true},
		{value: "", wantErr: true},
	}
	for _, tc := range tests {
		got, err := parseContentRange(tc.value)
		if (err != nil) != tc.wantErr {
			t.Fatalf("%q: unexpected error state: %v", tc.value, err)
		}
		if !tc.wantErr && got != tc.want {
			t.Fatalf("%q: got %d want %d", tc.value, got, tc.want)
		}
	}
}
