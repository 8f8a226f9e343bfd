package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
)

type leagueTableModel struct {
	ID                     string        `db:"id"`
	Name                   string        `db:"name"`
	SeasonID               string        `db:"season_id"`
	Status                 string        `db:"status"`
	RosterSize             int           `db:"roster_size"`
	DraftFormat            string        `db:"draft_format"`
	OwnershipMode          string        `db:"ownership_mode"`
	MaxOwnersPerContestant sql.NullInt64 `db:"max_owners_per_contestant"`
	CommissionerID         string        `db:"commissioner_id"`
}

func leagueFromRow(row leagueTableModel) draft.League {
	league := draft.League{
		ID:             row.ID,
		Name:           row.Name,
		SeasonID:       row.SeasonID,
		Status:         draft.Status(row.Status),
		RosterSize:     row.RosterSize,
		DraftFormat:    draft.Format(row.DraftFormat),
		OwnershipMode:  draft.OwnershipMode(row.OwnershipMode),
		CommissionerID: row.CommissionerID,
	}
	if row.MaxOwnersPerContestant.Valid {
		maxOwners := int(row.MaxOwnersPerContestant.Int64)
		league.MaxOwnersPerContestant = &maxOwners
	}
	return league
}

type memberTableModel struct {
	LeagueID      string        `db:"league_id"`
	UserID        string        `db:"user_id"`
	DraftPosition sql.NullInt64 `db:"draft_position"`
}

func memberFromRow(row memberTableModel) draft.Member {
	member := draft.Member{UserID: row.UserID}
	if row.DraftPosition.Valid {
		position := int(row.DraftPosition.Int64)
		member.DraftPosition = &position
	}
	return member
}

type contestantTableModel struct {
	ID       string `db:"id"`
	SeasonID string `db:"season_id"`
	Name     string `db:"name"`
}

type pickTableModel struct {
	LeagueID     string    `db:"league_id"`
	UserID       string    `db:"user_id"`
	ContestantID string    `db:"contestant_id"`
	CreatedAt    time.Time `db:"created_at"`
}

func pickFromRow(row pickTableModel) draft.Pick {
	return draft.Pick{
		LeagueID:     row.LeagueID,
		UserID:       row.UserID,
		ContestantID: row.ContestantID,
		CreatedAt:    row.CreatedAt.UTC(),
	}
}
