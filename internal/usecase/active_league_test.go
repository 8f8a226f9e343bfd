package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	draftmock "github.com/riskibarqy/fantasy-draft/internal/mocks/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/platform/cache"
	"github.com/stretchr/testify/mock"
)

func TestActiveLeagueResolver_Precedence(t *testing.T) {
	t.Parallel()

	gw := draftmock.NewGateway(t)
	store := cache.NewStore(time.Hour)
	resolver := NewActiveLeagueResolver(gw, store, nil)
	ctx := context.Background()

	gw.On("LatestLeagueForUser", mock.Anything, "u1").Return("league-new", true, nil).Once()
	gw.On("GetLeague", mock.Anything, "league-new").Return(draft.League{ID: "league-new", Status: draft.StatusDrafting}, true, nil).Once()

	got, err := resolver.Resolve(ctx, "u1", "")
	if err != nil {
		t.Fatalf("resolve fallback: %v", err)
	}
	if got.LeagueID != "league-new" || got.Source != LeagueSourceFallback || got.NavLabel != "Draft" {
		t.Fatalf("unexpected fallback context: %+v", got)
	}

	got, err = resolver.Resolve(ctx, "u1", "")
	if err != nil {
		t.Fatalf("resolve cached: %v", err)
	}
	if got.LeagueID != "league-new" || got.Source != LeagueSourceCached || got.Status != draft.StatusDrafting {
		t.Fatalf("unexpected cached context: %+v", got)
	}

	resolver.RecordStatus(ctx, "league-old", draft.StatusActive)
	got, err = resolver.Resolve(ctx, "u1", " league-old ")
	if err != nil {
		t.Fatalf("resolve explicit: %v", err)
	}
	if got.LeagueID != "league-old" || got.Source != LeagueSourceExplicit || got.NavLabel != "Roster" {
		t.Fatalf("unexpected explicit context: %+v", got)
	}

	got, err = resolver.Resolve(ctx, "u1", "")
	if err != nil {
		t.Fatalf("resolve after explicit: %v", err)
	}
	if got.LeagueID != "league-old" || got.Source != LeagueSourceCached {
		t.Fatalf("expected explicit id to be remembered, got %+v", got)
	}
}

func TestActiveLeagueResolver_NoLeague(t *testing.T) {
	t.Parallel()

	gw := draftmock.NewGateway(t)
	resolver := NewActiveLeagueResolver(gw, nil, nil)
	gw.On("LatestLeagueForUser", mock.Anything, "u2").Return("", false, nil).Once()

	got, err := resolver.Resolve(context.Background(), "u2", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.LeagueID != "" || got.Source != LeagueSourceNone {
		t.Fatalf("unexpected context: %+v", got)
	}
}

func TestActiveLeagueResolver_StatusLookupFailureStillResolves(t *testing.T) {
	t.Parallel()

	gw := draftmock.NewGateway(t)
	resolver := NewActiveLeagueResolver(gw, cache.NewStore(time.Hour), nil)
	gw.On("GetLeague", mock.Anything, "league-1").Return(draft.League{}, false, errors.New("timeout")).Once()

	got, err := resolver.Resolve(context.Background(), "u1", "league-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.LeagueID != "league-1" || got.Status != "" || got.NavLabel != "Draft" {
		t.Fatalf("unexpected context: %+v", got)
	}
}

func TestActiveLeagueResolver_FallbackError(t *testing.T) {
	t.Parallel()

	gw := draftmock.NewGateway(t)
	resolver := NewActiveLeagueResolver(gw, nil, nil)
	gw.On("LatestLeagueForUser", mock.Anything, "u1").Return("", false, ErrDependencyUnavailable).Once()

	if _, err := resolver.Resolve(context.Background(), "u1", ""); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if _, err := resolver.Resolve(context.Background(), "", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestActiveLeagueResolver_ForgetDropsRememberedLeague(t *testing.T) {
	t.Parallel()

	gw := draftmock.NewGateway(t)
	resolver := NewActiveLeagueResolver(gw, cache.NewStore(time.Hour), nil)
	ctx := context.Background()

	resolver.RecordStatus(ctx, "league-1", draft.StatusSetup)
	if _, err := resolver.Resolve(ctx, "u1", "league-1"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	resolver.Forget(ctx, "u1")

	gw.On("LatestLeagueForUser", mock.Anything, "u1").Return("", false, nil).Once()
	got, err := resolver.Resolve(ctx, "u1", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Source != LeagueSourceNone {
		t.Fatalf("expected remembered league to be forgotten, got %+v", got)
	}
}
