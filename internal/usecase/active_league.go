package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/platform/cache"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
)

type LeagueSource string

const (
	LeagueSourceExplicit LeagueSource = "explicit"
	LeagueSourceCached   LeagueSource = "cached"
	LeagueSourceFallback LeagueSource = "fallback"
	LeagueSourceNone     LeagueSource = "none"
)

const (
	activeLeagueKeyPrefix = "active_league:"
	leagueStatusKeyPrefix = "league_status:"
)

// LeagueContext is the league a user is currently working in. It drives
// navigation only; draft logic always reads the store.
type LeagueContext struct {
	LeagueID string
	Source   LeagueSource
	Status   draft.Status
	NavLabel string
}

type leagueLocator interface {
	GetLeague(ctx context.Context, leagueID string) (draft.League, bool, error)
	LatestLeagueForUser(ctx context.Context, userID string) (string, bool, error)
}

// ActiveLeagueResolver picks the league id for a request: an explicit id
// wins, then the user's last used league, then the newest league they
// belong to.
type ActiveLeagueResolver struct {
	leagues leagueLocator
	cache   *cache.Store
	logger  *logging.Logger
}

func NewActiveLeagueResolver(leagues leagueLocator, store *cache.Store, logger *logging.Logger) *ActiveLeagueResolver {
	if logger == nil {
		logger = logging.Default()
	}
	if store == nil {
		store = cache.NewStore(0)
	}

	return &ActiveLeagueResolver{
		leagues: leagues,
		cache:   store,
		logger:  logger,
	}
}

func (r *ActiveLeagueResolver) Resolve(ctx context.Context, userID, explicitLeagueID string) (LeagueContext, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ActiveLeagueResolver.Resolve")
	defer span.End()

	userID = strings.TrimSpace(userID)
	explicitLeagueID = strings.TrimSpace(explicitLeagueID)
	if userID == "" {
		return LeagueContext{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	if explicitLeagueID != "" {
		r.cache.Set(ctx, activeLeagueKeyPrefix+userID, explicitLeagueID)
		return r.withStatus(ctx, LeagueContext{LeagueID: explicitLeagueID, Source: LeagueSourceExplicit}), nil
	}

	if cached, ok := r.cache.GetString(ctx, activeLeagueKeyPrefix+userID); ok && cached != "" {
		return r.withStatus(ctx, LeagueContext{LeagueID: cached, Source: LeagueSourceCached}), nil
	}

	leagueID, found, err := r.leagues.LatestLeagueForUser(ctx, userID)
	if err != nil {
		return LeagueContext{}, fmt.Errorf("resolve latest league for user=%s: %w", userID, err)
	}
	if !found || strings.TrimSpace(leagueID) == "" {
		return LeagueContext{Source: LeagueSourceNone, NavLabel: draft.StatusLabel(draft.StatusSetup)}, nil
	}

	r.cache.Set(ctx, activeLeagueKeyPrefix+userID, leagueID)
	return r.withStatus(ctx, LeagueContext{LeagueID: leagueID, Source: LeagueSourceFallback}), nil
}

// RecordStatus caches the last observed status of a league.
func (r *ActiveLeagueResolver) RecordStatus(ctx context.Context, leagueID string, status draft.Status) {
	if strings.TrimSpace(leagueID) == "" || status == "" {
		return
	}
	r.cache.Set(ctx, leagueStatusKeyPrefix+leagueID, string(status))
}

// Forget drops the user's remembered league, for example after they leave it.
func (r *ActiveLeagueResolver) Forget(ctx context.Context, userID string) {
	r.cache.Delete(ctx, activeLeagueKeyPrefix+strings.TrimSpace(userID))
}

func (r *ActiveLeagueResolver) withStatus(ctx context.Context, lc LeagueContext) LeagueContext {
	if cached, ok := r.cache.GetString(ctx, leagueStatusKeyPrefix+lc.LeagueID); ok {
		lc.Status = draft.Status(cached)
		lc.NavLabel = draft.StatusLabel(lc.Status)
		return lc
	}

	league, exists, err := r.leagues.GetLeague(ctx, lc.LeagueID)
	switch {
	case err != nil:
		r.logger.WarnContext(ctx, "could not load league status for navigation", "league_id", lc.LeagueID, "error", err)
	case exists:
		lc.Status = league.Status
		r.RecordStatus(ctx, lc.LeagueID, league.Status)
	}
	lc.NavLabel = draft.StatusLabel(lc.Status)
	return lc
}
