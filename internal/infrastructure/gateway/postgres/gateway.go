// Package postgres implements the draft gateway directly over SQL. Ownership,
// roster and turn rules are enforced by the draft_picks trigger shipped in
// db/migrations; commissioner checks are part of each guarded statement.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	qb "github.com/riskibarqy/fantasy-draft/internal/platform/querybuilder"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

const leagueColumns = "id, name, season_id, status, roster_size, draft_format, ownership_mode, max_owners_per_contestant, commissioner_id"

var _ draft.Gateway = (*Gateway)(nil)

type Gateway struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewGateway(db *sqlx.DB) *Gateway {
	return &Gateway{db: db, now: time.Now}
}

func (g *Gateway) GetLeague(ctx context.Context, leagueID string) (draft.League, bool, error) {
	query, args, err := qb.Select(leagueColumns).From("leagues").
		Where(qb.Eq("id", leagueID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return draft.League{}, false, fmt.Errorf("build get league query: %w", err)
	}

	var row leagueTableModel
	if err := g.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return draft.League{}, false, nil
		}
		return draft.League{}, false, fmt.Errorf("get league=%s: %w", leagueID, classify(err))
	}
	return leagueFromRow(row), true, nil
}

func (g *Gateway) ListMembers(ctx context.Context, leagueID string) ([]draft.Member, error) {
	query, args, err := qb.Select("league_id", "user_id", "draft_position").From("league_members").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("draft_position ASC NULLS LAST", `user_id COLLATE "C" ASC`).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list members query: %w", err)
	}

	var rows []memberTableModel
	if err := g.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list members league=%s: %w", leagueID, classify(err))
	}

	out := make([]draft.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, memberFromRow(row))
	}
	return out, nil
}

func (g *Gateway) ListContestantsBySeason(ctx context.Context, seasonID string) ([]draft.Contestant, error) {
	query, args, err := qb.Select("id", "season_id", "name").From("contestants").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("name ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list contestants query: %w", err)
	}

	var rows []contestantTableModel
	if err := g.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list contestants season=%s: %w", seasonID, classify(err))
	}

	out := make([]draft.Contestant, 0, len(rows))
	for _, row := range rows {
		out = append(out, draft.Contestant{ID: row.ID, SeasonID: row.SeasonID, Name: row.Name})
	}
	return out, nil
}

func (g *Gateway) ListPicks(ctx context.Context, leagueID string) ([]draft.Pick, error) {
	query, args, err := qb.Select("league_id", "user_id", "contestant_id", "created_at").From("draft_picks").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("created_at ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list picks query: %w", err)
	}

	var rows []pickTableModel
	if err := g.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list picks league=%s: %w", leagueID, classify(err))
	}

	out := make([]draft.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, pickFromRow(row))
	}
	return out, nil
}

// InsertPicks writes the batch as one multi-row statement inside a
// transaction, so a trigger rejection on any row discards all of them.
func (g *Gateway) InsertPicks(ctx context.Context, picks []draft.Pick) error {
	if len(picks) == 0 {
		return nil
	}

	builder := qb.InsertInto("draft_picks").Columns("league_id", "user_id", "contestant_id", "created_at")
	for _, p := range picks {
		createdAt := p.CreatedAt
		if createdAt.IsZero() {
			createdAt = g.now()
		}
		builder.Values(p.LeagueID, p.UserID, p.ContestantID, createdAt.UTC())
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert picks query: %w", err)
	}

	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx insert picks: %w", classify(err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %d picks: %w", len(picks), classify(err))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert picks tx: %w", classify(err))
	}
	return nil
}

func (g *Gateway) UpdateDraftPosition(ctx context.Context, leagueID, userID string, position int) error {
	query, args, err := qb.Update("league_members").
		Set("draft_position", position).
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update draft position query: %w", err)
	}
	return g.execAffecting(ctx, "update draft position user="+userID, query, args)
}

func (g *Gateway) ClearDraftPositions(ctx context.Context, leagueID string) error {
	query, args, err := qb.Update("league_members").
		SetRaw("draft_position", "NULL").
		Where(qb.Eq("league_id", leagueID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear draft positions query: %w", err)
	}
	if _, err := g.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear draft positions league=%s: %w", leagueID, classify(err))
	}
	return nil
}

func (g *Gateway) UpdateLeagueStatus(ctx context.Context, leagueID, commissionerID string, status draft.Status) error {
	query, args, err := qb.Update("leagues").
		Set("status", string(status)).
		SetRaw("updated_at", "NOW()").
		Where(
			qb.Eq("id", leagueID),
			qb.Eq("commissioner_id", commissionerID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update league status query: %w", err)
	}
	return g.execAffecting(ctx, fmt.Sprintf("update league=%s status=%s", leagueID, status), query, args)
}

func (g *Gateway) DeletePicks(ctx context.Context, leagueID string) (int, error) {
	query, args, err := qb.DeleteFrom("draft_picks").
		Where(qb.Eq("league_id", leagueID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete picks query: %w", err)
	}

	result, err := g.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete picks league=%s: %w", leagueID, classify(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected delete picks: %w", err)
	}
	return int(affected), nil
}

func (g *Gateway) CountPicks(ctx context.Context, leagueID string) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("draft_picks").
		Where(qb.Eq("league_id", leagueID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count picks query: %w", err)
	}

	var count int
	if err := g.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count picks league=%s: %w", leagueID, classify(err))
	}
	return count, nil
}

func (g *Gateway) LatestLeagueForUser(ctx context.Context, userID string) (string, bool, error) {
	query, args, err := qb.Select("league_id").From("league_members").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at DESC", "id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return "", false, fmt.Errorf("build latest league query: %w", err)
	}

	var leagueID string
	if err := g.db.GetContext(ctx, &leagueID, query, args...); err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("latest league for user=%s: %w", userID, classify(err))
	}
	return leagueID, true, nil
}

// execAffecting treats zero affected rows as a rejected guard.
func (g *Gateway) execAffecting(ctx context.Context, op, query string, args []any) error {
	result, err := g.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected %s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s matched no rows", usecase.ErrForbidden, op)
	}
	return nil
}
