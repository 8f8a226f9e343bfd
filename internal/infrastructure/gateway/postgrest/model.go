package postgrest

import (
	"time"

	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
)

type leagueRow struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	SeasonID               string `json:"season_id"`
	Status                 string `json:"status"`
	RosterSize             int    `json:"roster_size"`
	DraftFormat            string `json:"draft_format"`
	OwnershipMode          string `json:"ownership_mode"`
	MaxOwnersPerContestant *int   `json:"max_owners_per_contestant"`
	CommissionerID         string `json:"commissioner_id"`
}

func (r leagueRow) toDomain() draft.League {
	return draft.League{
		ID:                     r.ID,
		Name:                   r.Name,
		SeasonID:               r.SeasonID,
		Status:                 draft.Status(r.Status),
		RosterSize:             r.RosterSize,
		DraftFormat:            draft.Format(r.DraftFormat),
		OwnershipMode:          draft.OwnershipMode(r.OwnershipMode),
		MaxOwnersPerContestant: r.MaxOwnersPerContestant,
		CommissionerID:         r.CommissionerID,
	}
}

type memberRow struct {
	LeagueID      string `json:"league_id,omitempty"`
	UserID        string `json:"user_id"`
	DraftPosition *int   `json:"draft_position"`
}

type contestantRow struct {
	ID       string `json:"id"`
	SeasonID string `json:"season_id"`
	Name     string `json:"name"`
}

type pickRow struct {
	LeagueID     string     `json:"league_id"`
	UserID       string     `json:"user_id"`
	ContestantID string     `json:"contestant_id"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

func pickRowFromDomain(p draft.Pick) pickRow {
	row := pickRow{
		LeagueID:     p.LeagueID,
		UserID:       p.UserID,
		ContestantID: p.ContestantID,
	}
	if !p.CreatedAt.IsZero() {
		createdAt := p.CreatedAt.UTC()
		row.CreatedAt = &createdAt
	}
	return row
}

func (r pickRow) toDomain() draft.Pick {
	p := draft.Pick{
		LeagueID:     r.LeagueID,
		UserID:       r.UserID,
		ContestantID: r.ContestantID,
	}
	if r.CreatedAt != nil {
		p.CreatedAt = r.CreatedAt.UTC()
	}
	return p
}

type idRow struct {
	ID any `json:"id"`
}

type positionPatch struct {
	DraftPosition *int `json:"draft_position"`
}

type statusPatch struct {
	Status string `json:"status"`
}
