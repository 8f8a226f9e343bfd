package draft

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusSetup    Status = "setup"
	StatusDrafting Status = "drafting"
	StatusActive   Status = "active"
)

type Format string

const (
	FormatLinear Format = "linear"
	FormatSnake  Format = "snake"
)

type OwnershipMode string

const (
	OwnershipUnique   OwnershipMode = "unique"
	OwnershipMultiple OwnershipMode = "multiple"
)

// League is one draft competition and its rules.
type League struct {
	ID                     string
	Name                   string
	SeasonID               string
	Status                 Status
	RosterSize             int
	DraftFormat            Format
	OwnershipMode          OwnershipMode
	MaxOwnersPerContestant *int
	CommissionerID         string
}

// Member is a participant of a league. DraftPosition is nil until the
// commissioner sets the order.
type Member struct {
	UserID        string
	DraftPosition *int
}

type Contestant struct {
	ID       string
	SeasonID string
	Name     string
}

type Pick struct {
	LeagueID     string
	UserID       string
	ContestantID string
	CreatedAt    time.Time
}

// Normalized fills the defaults the backend applies to legacy rows.
func (l League) Normalized() League {
	l.DraftFormat = Format(strings.ToLower(strings.TrimSpace(string(l.DraftFormat))))
	if l.DraftFormat == "" {
		l.DraftFormat = FormatLinear
	}
	l.OwnershipMode = OwnershipMode(strings.ToLower(strings.TrimSpace(string(l.OwnershipMode))))
	if l.OwnershipMode == "" {
		l.OwnershipMode = OwnershipUnique
	}
	if l.OwnershipMode == OwnershipUnique {
		l.MaxOwnersPerContestant = nil
	}
	return l
}

func (l League) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("%w: league id is required", ErrMalformedLeague)
	}
	if l.RosterSize <= 0 {
		return fmt.Errorf("%w: roster size must be > 0, got %d", ErrMalformedLeague, l.RosterSize)
	}
	switch l.Status {
	case StatusSetup, StatusDrafting, StatusActive:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrMalformedLeague, l.Status)
	}
	switch l.DraftFormat {
	case FormatLinear, FormatSnake:
	default:
		return fmt.Errorf("%w: unknown draft format %q", ErrMalformedLeague, l.DraftFormat)
	}
	switch l.OwnershipMode {
	case OwnershipUnique:
	case OwnershipMultiple:
		if l.MaxOwnersPerContestant != nil && *l.MaxOwnersPerContestant < 1 {
			return fmt.Errorf("%w: max owners per contestant must be >= 1", ErrMalformedLeague)
		}
	default:
		return fmt.Errorf("%w: unknown ownership mode %q", ErrMalformedLeague, l.OwnershipMode)
	}

	return nil
}

// MaxOwners returns the distinct-owner cap for one contestant, nil meaning
// unlimited.
func (l League) MaxOwners() *int {
	if l.OwnershipMode == OwnershipMultiple {
		return l.MaxOwnersPerContestant
	}
	one := 1
	return &one
}

func (l League) IsCommissioner(userID string) bool {
	return l.CommissionerID != "" && l.CommissionerID == userID
}

// StatusLabel is the navigation label for the draft/roster entry point.
func StatusLabel(status Status) string {
	if status == StatusActive {
		return "Roster"
	}
	return "Draft"
}

// CanTransition reports whether the league lifecycle allows from -> to.
func CanTransition(from, to Status) bool {
	switch {
	case from == StatusSetup && to == StatusDrafting:
		return true
	case from == StatusDrafting && to == StatusActive:
		return true
	case (from == StatusDrafting || from == StatusActive) && to == StatusSetup:
		return true
	default:
		return false
	}
}
