package draft

import "context"

// Gateway is the remote league store. Implementations return errors wrapping
// the usecase taxonomy so callers can classify rejections.
type Gateway interface {
	GetLeague(ctx context.Context, leagueID string) (League, bool, error)
	// ListMembers returns members ordered by draft position ascending (unset
	// last) then user id ascending.
	ListMembers(ctx context.Context, leagueID string) ([]Member, error)
	ListContestantsBySeason(ctx context.Context, seasonID string) ([]Contestant, error)
	// ListPicks returns picks ordered by creation time ascending.
	ListPicks(ctx context.Context, leagueID string) ([]Pick, error)
	// InsertPicks stores all rows or none.
	InsertPicks(ctx context.Context, picks []Pick) error
	UpdateDraftPosition(ctx context.Context, leagueID, userID string, position int) error
	ClearDraftPositions(ctx context.Context, leagueID string) error
	// UpdateLeagueStatus only applies when commissionerID owns the league.
	UpdateLeagueStatus(ctx context.Context, leagueID, commissionerID string, status Status) error
	DeletePicks(ctx context.Context, leagueID string) (int, error)
	CountPicks(ctx context.Context, leagueID string) (int, error)
	LatestLeagueForUser(ctx context.Context, userID string) (string, bool, error)
}
