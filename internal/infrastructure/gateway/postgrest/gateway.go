package postgrest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

const (
	tableLeagues     = "leagues"
	tableMembers     = "league_members"
	tableContestants = "contestants"
	tablePicks       = "draft_picks"

	leagueColumns = "id,name,season_id,status,roster_size,draft_format,ownership_mode,max_owners_per_contestant,commissioner_id"
)

var _ draft.Gateway = (*Gateway)(nil)

func eq(value string) string {
	return "eq." + value
}

func (g *Gateway) GetLeague(ctx context.Context, leagueID string) (draft.League, bool, error) {
	var rows []leagueRow
	err := g.get(ctx, tableLeagues, url.Values{
		"select": {leagueColumns},
		"id":     {eq(leagueID)},
		"limit":  {"1"},
	}, &rows)
	if err != nil {
		return draft.League{}, false, fmt.Errorf("get league=%s: %w", leagueID, err)
	}
	if len(rows) == 0 {
		return draft.League{}, false, nil
	}
	return rows[0].toDomain(), true, nil
}

func (g *Gateway) ListMembers(ctx context.Context, leagueID string) ([]draft.Member, error) {
	var rows []memberRow
	err := g.get(ctx, tableMembers, url.Values{
		"select":    {"user_id,draft_position"},
		"league_id": {eq(leagueID)},
		"order":     {"draft_position.asc.nullslast,user_id.asc"},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("list members league=%s: %w", leagueID, err)
	}

	out := make([]draft.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, draft.Member{UserID: row.UserID, DraftPosition: row.DraftPosition})
	}
	return out, nil
}

func (g *Gateway) ListContestantsBySeason(ctx context.Context, seasonID string) ([]draft.Contestant, error) {
	var rows []contestantRow
	err := g.get(ctx, tableContestants, url.Values{
		"select":    {"id,season_id,name"},
		"season_id": {eq(seasonID)},
		"order":     {"name.asc"},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("list contestants season=%s: %w", seasonID, err)
	}

	out := make([]draft.Contestant, 0, len(rows))
	for _, row := range rows {
		out = append(out, draft.Contestant{ID: row.ID, SeasonID: row.SeasonID, Name: row.Name})
	}
	return out, nil
}

func (g *Gateway) ListPicks(ctx context.Context, leagueID string) ([]draft.Pick, error) {
	var rows []pickRow
	err := g.get(ctx, tablePicks, url.Values{
		"select":    {"league_id,user_id,contestant_id,created_at"},
		"league_id": {eq(leagueID)},
		"order":     {"created_at.asc"},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("list picks league=%s: %w", leagueID, err)
	}

	out := make([]draft.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// InsertPicks posts every row in one request. PostgREST wraps a bulk insert
// in a single statement, so the batch lands or fails as a whole.
func (g *Gateway) InsertPicks(ctx context.Context, picks []draft.Pick) error {
	if len(picks) == 0 {
		return nil
	}

	rows := make([]pickRow, 0, len(picks))
	for _, p := range picks {
		rows = append(rows, pickRowFromDomain(p))
	}

	_, err := g.do(ctx, request{
		method: http.MethodPost,
		table:  tablePicks,
		body:   rows,
		prefer: []string{"return=minimal"},
	})
	if err != nil {
		return fmt.Errorf("insert %d picks: %w", len(picks), err)
	}
	return nil
}

func (g *Gateway) UpdateDraftPosition(ctx context.Context, leagueID, userID string, position int) error {
	resp, err := g.do(ctx, request{
		method: http.MethodPatch,
		table:  tableMembers,
		query: url.Values{
			"league_id": {eq(leagueID)},
			"user_id":   {eq(userID)},
			"select":    {"user_id"},
		},
		body:   positionPatch{DraftPosition: &position},
		prefer: []string{"return=representation"},
	})
	if err != nil {
		return fmt.Errorf("update draft position user=%s: %w", userID, err)
	}
	return requireRows(resp, "update draft position user="+userID)
}

func (g *Gateway) ClearDraftPositions(ctx context.Context, leagueID string) error {
	_, err := g.do(ctx, request{
		method: http.MethodPatch,
		table:  tableMembers,
		query:  url.Values{"league_id": {eq(leagueID)}},
		body:   positionPatch{DraftPosition: nil},
		prefer: []string{"return=minimal"},
	})
	if err != nil {
		return fmt.Errorf("clear draft positions league=%s: %w", leagueID, err)
	}
	return nil
}

// UpdateLeagueStatus filters on the commissioner id. Row-level security
// hides rows from anyone else, which surfaces as zero updated rows.
func (g *Gateway) UpdateLeagueStatus(ctx context.Context, leagueID, commissionerID string, status draft.Status) error {
	resp, err := g.do(ctx, request{
		method: http.MethodPatch,
		table:  tableLeagues,
		query: url.Values{
			"id":              {eq(leagueID)},
			"commissioner_id": {eq(commissionerID)},
			"select":          {"id"},
		},
		body:   statusPatch{Status: string(status)},
		prefer: []string{"return=representation"},
	})
	if err != nil {
		return fmt.Errorf("update league=%s status=%s: %w", leagueID, status, err)
	}
	return requireRows(resp, "update league status")
}

func (g *Gateway) DeletePicks(ctx context.Context, leagueID string) (int, error) {
	resp, err := g.do(ctx, request{
		method: http.MethodDelete,
		table:  tablePicks,
		query: url.Values{
			"league_id": {eq(leagueID)},
			"select":    {"id"},
		},
		prefer: []string{"return=representation"},
	})
	if err != nil {
		return 0, fmt.Errorf("delete picks league=%s: %w", leagueID, err)
	}
	return countRows(resp)
}

func (g *Gateway) CountPicks(ctx context.Context, leagueID string) (int, error) {
	resp, err := g.do(ctx, request{
		method: http.MethodHead,
		table:  tablePicks,
		query: url.Values{
			"select":    {"id"},
			"league_id": {eq(leagueID)},
		},
		prefer: []string{"count=exact"},
	})
	if err != nil {
		return 0, fmt.Errorf("count picks league=%s: %w", leagueID, err)
	}
	n, err := parseContentRange(resp.contentRange)
	if err != nil {
		return 0, fmt.Errorf("count picks league=%s: %w", leagueID, err)
	}
	return n, nil
}

func (g *Gateway) LatestLeagueForUser(ctx context.Context, userID string) (string, bool, error) {
	var rows []memberRow
	err := g.get(ctx, tableMembers, url.Values{
		"select":  {"league_id,user_id"},
		"user_id": {eq(userID)},
		"order":   {"created_at.desc"},
		"limit":   {"1"},
	}, &rows)
	if err != nil {
		return "", false, fmt.Errorf("latest league for user=%s: %w", userID, err)
	}
	if len(rows) == 0 || strings.TrimSpace(rows[0].LeagueID) == "" {
		return "", false, nil
	}
	return rows[0].LeagueID, true, nil
}

func requireRows(resp response, op string) error {
	n, err := countRows(resp)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s matched no rows", usecase.ErrForbidden, op)
	}
	return nil
}

func countRows(resp response) (int, error) {
	if len(strings.TrimSpace(string(resp.body))) == 0 {
		if resp.contentRange != "" {
			return parseContentRange(resp.contentRange)
		}
		return 0, nil
	}
	var rows []idRow
	if err := sonic.Unmarshal(resp.body, &rows); err != nil {
		return 0, fmt.Errorf("decode affected rows: %w", err)
	}
	return len(rows), nil
}
