// Package memory is an in-process draft gateway for local runs and tests. It
// applies the same pick rules as the database trigger and reports rejections
// with the same SQLSTATE codes.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/infrastructure/gateway/pgerr"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

var _ draft.Gateway = (*Gateway)(nil)

type memberRecord struct {
	member   draft.Member
	joinedAt time.Time
}

type Gateway struct {
	mu          sync.RWMutex
	leagues     map[string]draft.League
	members     map[string][]memberRecord
	contestants map[string][]draft.Contestant
	picks       map[string][]draft.Pick
	now         func() time.Time
}

func NewGateway(seed SeedData) *Gateway {
	g := &Gateway{
		leagues:     make(map[string]draft.League),
		members:     make(map[string][]memberRecord),
		contestants: make(map[string][]draft.Contestant),
		picks:       make(map[string][]draft.Pick),
		now:         time.Now,
	}

	for _, l := range seed.Leagues {
		g.leagues[l.ID] = cloneLeague(l)
	}
	joinedAt := time.Unix(0, 0).UTC()
	for _, m := range seed.Members {
		joinedAt = joinedAt.Add(time.Second)
		g.members[m.LeagueID] = append(g.members[m.LeagueID], memberRecord{
			member:   draft.Member{UserID: m.UserID, DraftPosition: cloneInt(m.DraftPosition)},
			joinedAt: joinedAt,
		})
	}
	for _, c := range seed.Contestants {
		g.contestants[c.SeasonID] = append(g.contestants[c.SeasonID], c)
	}
	for _, p := range seed.Picks {
		g.picks[p.LeagueID] = append(g.picks[p.LeagueID], p)
	}
	return g
}

func (g *Gateway) GetLeague(_ context.Context, leagueID string) (draft.League, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	l, ok := g.leagues[leagueID]
	if !ok {
		return draft.League{}, false, nil
	}
	return cloneLeague(l), true, nil
}

func (g *Gateway) ListMembers(_ context.Context, leagueID string) ([]draft.Member, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.sortedMembersLocked(leagueID), nil
}

func (g *Gateway) ListContestantsBySeason(_ context.Context, seasonID string) ([]draft.Contestant, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := append([]draft.Contestant(nil), g.contestants[seasonID]...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (g *Gateway) ListPicks(_ context.Context, leagueID string) ([]draft.Pick, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := append([]draft.Pick(nil), g.picks[leagueID]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// InsertPicks checks every row against the picks accepted before it in the
// same batch and commits only when all rows pass.
func (g *Gateway) InsertPicks(_ context.Context, picks []draft.Pick) error {
	if len(picks) == 0 {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	staged := make(map[string][]draft.Pick)
	for _, p := range picks {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = g.now()
		}
		existing := append(append([]draft.Pick(nil), g.picks[p.LeagueID]...), staged[p.LeagueID]...)
		if err := g.checkPickLocked(p, existing); err != nil {
			return fmt.Errorf("insert %d picks: %w", len(picks), err)
		}
		staged[p.LeagueID] = append(staged[p.LeagueID], p)
	}

	for leagueID, rows := range staged {
		g.picks[leagueID] = append(g.picks[leagueID], rows...)
	}
	return nil
}

func (g *Gateway) UpdateDraftPosition(_ context.Context, leagueID, userID string, position int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	records := g.members[leagueID]
	for i := range records {
		if records[i].member.UserID == userID {
			records[i].member.DraftPosition = &position
			return nil
		}
	}
	return fmt.Errorf("%w: update draft position user=%s matched no rows", usecase.ErrForbidden, userID)
}

func (g *Gateway) ClearDraftPositions(_ context.Context, leagueID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	records := g.members[leagueID]
	for i := range records {
		records[i].member.DraftPosition = nil
	}
	return nil
}

func (g *Gateway) UpdateLeagueStatus(_ context.Context, leagueID, commissionerID string, status draft.Status) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	l, ok := g.leagues[leagueID]
	if !ok || l.CommissionerID != commissionerID {
		return fmt.Errorf("%w: update league=%s status=%s matched no rows", usecase.ErrForbidden, leagueID, status)
	}
	l.Status = status
	g.leagues[leagueID] = l
	return nil
}

func (g *Gateway) DeletePicks(_ context.Context, leagueID string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := len(g.picks[leagueID])
	delete(g.picks, leagueID)
	return n, nil
}

func (g *Gateway) CountPicks(_ context.Context, leagueID string) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.picks[leagueID]), nil
}

func (g *Gateway) LatestLeagueForUser(_ context.Context, userID string) (string, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var (
		latestID string
		latestAt time.Time
	)
	for leagueID, records := range g.members {
		for _, r := range records {
			if r.member.UserID != userID {
				continue
			}
			if latestID == "" || r.joinedAt.After(latestAt) || (r.joinedAt.Equal(latestAt) && leagueID < latestID) {
				latestID = leagueID
				latestAt = r.joinedAt
			}
		}
	}
	return latestID, latestID != "", nil
}

func (g *Gateway) checkPickLocked(p draft.Pick, existing []draft.Pick) error {
	raw, ok := g.leagues[p.LeagueID]
	if !ok {
		return reject(pgerr.CodeForeignKeyViolation, "league %s does not exist", p.LeagueID)
	}
	l := raw.Normalized()
	if l.Status != draft.StatusDrafting {
		return reject(pgerr.CodeInsufficientPrivilege, "draft is not open for league %s", p.LeagueID)
	}

	members := g.sortedMembersLocked(p.LeagueID)
	isMember := false
	for _, m := range members {
		if m.UserID == p.UserID {
			isMember = true
			break
		}
	}
	if !isMember {
		return reject(pgerr.CodeInsufficientPrivilege, "user %s is not a member of league %s", p.UserID, p.LeagueID)
	}

	pickCounts := make(map[string]int)
	owners := make(map[string]struct{})
	for _, e := range existing {
		pickCounts[e.UserID]++
		if e.ContestantID != p.ContestantID {
			continue
		}
		if e.UserID == p.UserID {
			return reject(pgerr.CodeUniqueViolation, `duplicate key value violates unique constraint "draft_picks_unique"`)
		}
		owners[e.UserID] = struct{}{}
	}

	if pickCounts[p.UserID] >= l.RosterSize {
		return reject(pgerr.CodeCheckViolation, "roster is full for user %s", p.UserID)
	}
	if limit := l.MaxOwners(); limit != nil && len(owners) >= *limit {
		return reject(pgerr.CodeCheckViolation, "contestant %s reached max owners", p.ContestantID)
	}

	current := draft.CurrentPickerIndex(l, members, pickCounts)
	if members[current].UserID != p.UserID {
		return reject(pgerr.CodeInsufficientPrivilege, "it is not the turn of user %s", p.UserID)
	}
	return nil
}

func (g *Gateway) sortedMembersLocked(leagueID string) []draft.Member {
	records := g.members[leagueID]
	out := make([]draft.Member, 0, len(records))
	for _, r := range records {
		out = append(out, draft.Member{UserID: r.member.UserID, DraftPosition: cloneInt(r.member.DraftPosition)})
	}
	return draft.SortMembers(out)
}

func reject(code, format string, args ...any) error {
	storeErr := &pgerr.StoreError{Code: code, Message: fmt.Sprintf(format, args...)}
	return pgerr.Classify(code, storeErr.Message, storeErr)
}

func cloneLeague(l draft.League) draft.League {
	l.MaxOwnersPerContestant = cloneInt(l.MaxOwnersPerContestant)
	return l
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}
