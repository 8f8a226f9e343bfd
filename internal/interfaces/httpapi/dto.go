package httpapi

import (
	"time"

	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

type submitPicksRequest struct {
	ContestantIDs []string `json:"contestant_ids" validate:"required,min=1,max=50,dive,required"`
}

type openDraftRequest struct {
	OrderedUserIDs []string `json:"ordered_user_ids" validate:"required,min=1,dive,required"`
}

type emptyRequest struct{}

type leagueDTO struct {
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

type contestantStateDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Owners     int    `json:"owners"`
	Full       bool   `json:"full"`
	Available  bool   `json:"available"`
	OwnedByYou bool   `json:"owned_by_you"`
}

type eligibilityDTO struct {
	IsMember       bool                 `json:"is_member"`
	CurrentUserID  string               `json:"current_user_id"`
	IsYourTurn     bool                 `json:"is_your_turn"`
	RemainingSlots int                  `json:"remaining_slots"`
	MaxOwners      *int                 `json:"max_owners"`
	SelectionMode  string               `json:"selection_mode"`
	MaxSelections  int                  `json:"max_selections"`
	DraftComplete  bool                 `json:"draft_complete"`
	Contestants    []contestantStateDTO `json:"contestants"`
}

type orderEntryDTO struct {
	UserID        string `json:"user_id"`
	DraftPosition *int   `json:"draft_position"`
	PickCount     int    `json:"pick_count"`
	IsCurrent     bool   `json:"is_current"`
	IsYou         bool   `json:"is_you"`
}

type draftStateDTO struct {
	League         leagueDTO       `json:"league"`
	StatusLabel    string          `json:"status_label"`
	Headline       string          `json:"headline"`
	TotalPicks     int             `json:"total_picks"`
	Eligibility    eligibilityDTO  `json:"eligibility"`
	Order          []orderEntryDTO `json:"order"`
	IsCommissioner bool            `json:"is_commissioner"`
	CanOpenDraft   bool            `json:"can_open_draft"`
	CanCloseDraft  bool            `json:"can_close_draft"`
	CanResetDraft  bool            `json:"can_reset_draft"`
}

type actionResultDTO struct {
	Accepted         bool           `json:"accepted"`
	Kind             string         `json:"kind,omitempty"`
	Message          string         `json:"message"`
	Warnings         []string       `json:"warnings,omitempty"`
	PositionsWritten int            `json:"positions_written,omitempty"`
	State            *draftStateDTO `json:"state,omitempty"`
}

type rosterPickDTO struct {
	ContestantID   string `json:"contestant_id"`
	ContestantName string `json:"contestant_name"`
	PickedAt       string `json:"picked_at"`
}

type rosterDTO struct {
	UserID        string          `json:"user_id"`
	DraftPosition *int            `json:"draft_position"`
	Picks         []rosterPickDTO `json:"picks"`
	EmptySlots    int             `json:"empty_slots"`
}

type rosterViewDTO struct {
	League      leagueDTO   `json:"league"`
	StatusLabel string      `json:"status_label"`
	TotalPicked int         `json:"total_picked"`
	Rosters     []rosterDTO `json:"rosters"`
}

type leagueContextDTO struct {
	LeagueID string `json:"league_id"`
	Source   string `json:"source"`
	Status   string `json:"status,omitempty"`
	NavLabel string `json:"nav_label"`
}

func leagueToDTO(l draft.League) leagueDTO {
	return leagueDTO{
		ID:                     l.ID,
		Name:                   l.Name,
		SeasonID:               l.SeasonID,
		Status:                 string(l.Status),
		RosterSize:             l.RosterSize,
		DraftFormat:            string(l.DraftFormat),
		OwnershipMode:          string(l.OwnershipMode),
		MaxOwnersPerContestant: l.MaxOwnersPerContestant,
		CommissionerID:         l.CommissionerID,
	}
}

func draftStateToDTO(state usecase.DraftState) draftStateDTO {
	e := state.Eligibility
	contestants := make([]contestantStateDTO, 0, len(e.Contestants))
	for _, c := range e.Contestants {
		contestants = append(contestants, contestantStateDTO{
			ID:         c.Contestant.ID,
			Name:       c.Contestant.Name,
			Owners:     c.Owners,
			Full:       c.Full,
			Available:  c.Available,
			OwnedByYou: c.OwnedByYou,
		})
	}

	order := make([]orderEntryDTO, 0, len(state.Order))
	for _, entry := range state.Order {
		order = append(order, orderEntryDTO{
			UserID:        entry.UserID,
			DraftPosition: entry.DraftPosition,
			PickCount:     entry.PickCount,
			IsCurrent:     entry.IsCurrent,
			IsYou:         entry.IsYou,
		})
	}

	return draftStateDTO{
		League:      leagueToDTO(state.League),
		StatusLabel: state.StatusLabel,
		Headline:    state.Headline,
		TotalPicks:  state.TotalPicks,
		Eligibility: eligibilityDTO{
			IsMember:       e.IsMember,
			CurrentUserID:  e.CurrentUserID,
			IsYourTurn:     e.IsYourTurn,
			RemainingSlots: e.RemainingSlots,
			MaxOwners:      e.MaxOwners,
			SelectionMode:  string(e.SelectionMode),
			MaxSelections:  e.MaxSelections,
			DraftComplete:  e.DraftComplete,
			Contestants:    contestants,
		},
		Order:          order,
		IsCommissioner: state.IsCommissioner,
		CanOpenDraft:   state.CanOpenDraft,
		CanCloseDraft:  state.CanCloseDraft,
		CanResetDraft:  state.CanResetDraft,
	}
}

func actionResultToDTO(result usecase.ActionResult) actionResultDTO {
	out := actionResultDTO{
		Accepted:         result.Accepted,
		Kind:             string(result.Kind),
		Message:          result.Message,
		Warnings:         result.Warnings,
		PositionsWritten: result.PositionsWritten,
	}
	if result.State != nil {
		state := draftStateToDTO(*result.State)
		out.State = &state
	}
	return out
}

func rosterViewToDTO(view usecase.RosterView) rosterViewDTO {
	rosters := make([]rosterDTO, 0, len(view.Rosters))
	for _, r := range view.Rosters {
		picks := make([]rosterPickDTO, 0, len(r.Picks))
		for _, p := range r.Picks {
			picks = append(picks, rosterPickDTO{
				ContestantID:   p.Contestant.ID,
				ContestantName: p.Contestant.Name,
				PickedAt:       formatTime(p.PickedAt),
			})
		}
		rosters = append(rosters, rosterDTO{
			UserID:        r.UserID,
			DraftPosition: r.DraftPosition,
			Picks:         picks,
			EmptySlots:    r.EmptySlots,
		})
	}

	return rosterViewDTO{
		League:      leagueToDTO(view.League),
		StatusLabel: view.StatusLabel,
		TotalPicked: view.TotalPicked,
		Rosters:     rosters,
	}
}

func leagueContextToDTO(lc usecase.LeagueContext) leagueContextDTO {
	return leagueContextDTO{
		LeagueID: lc.LeagueID,
		Source:   string(lc.Source),
		Status:   string(lc.Status),
		NavLabel: lc.NavLabel,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
