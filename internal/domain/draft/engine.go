package draft

import (
	"cmp"
	"slices"
)

type SelectionMode string

const (
	SelectionSingle SelectionMode = "single"
	SelectionMulti  SelectionMode = "multi"
)

// ContestantState is the derived availability of one contestant for the
// acting user.
type ContestantState struct {
	Contestant Contestant
	Owners     int
	Full       bool
	Available  bool
	OwnedByYou bool
}

// Eligibility is everything the acting user may do on the current snapshot.
type Eligibility struct {
	Status         Status
	ActingUserID   string
	IsMember       bool
	CurrentIndex   int
	CurrentUserID  string
	IsYourTurn     bool
	RemainingSlots int
	MaxOwners      *int
	SelectionMode  SelectionMode
	MaxSelections  int
	DraftComplete  bool
	Contestants    []ContestantState

	byID map[string]int
}

// SortMembers returns members in turn order: draft position ascending with
// unset positions last, ties broken by user id ascending.
func SortMembers(members []Member) []Member {
	out := slices.Clone(members)
	slices.SortStableFunc(out, func(a, b Member) int {
		switch {
		case a.DraftPosition == nil && b.DraftPosition != nil:
			return 1
		case a.DraftPosition != nil && b.DraftPosition == nil:
			return -1
		case a.DraftPosition != nil && b.DraftPosition != nil && *a.DraftPosition != *b.DraftPosition:
			return cmp.Compare(*a.DraftPosition, *b.DraftPosition)
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return out
}

// RoundMemberIndex maps the 0-based pickIndex onto a member slot. Snake
// drafts reverse direction on every odd round.
func RoundMemberIndex(n, pickIndex int, format Format) int {
	if n <= 0 || pickIndex < 0 {
		return 0
	}
	round := pickIndex / n
	pos := pickIndex % n
	if format == FormatSnake && round%2 == 1 {
		return n - 1 - pos
	}
	return pos
}

// CurrentPickerIndex returns the index into members of whoever picks next.
// In unique mode every pick advances the turn; in multiple mode a member
// keeps the turn until their roster is full. When everyone is full it
// returns 0.
func CurrentPickerIndex(league League, members []Member, pickCounts map[string]int) int {
	n := len(members)
	if n == 0 {
		return 0
	}
	rosterSize := max(league.RosterSize, 0)

	if league.OwnershipMode == OwnershipMultiple {
		for i, m := range members {
			if pickCounts[m.UserID] < rosterSize {
				return i
			}
		}
		return 0
	}

	totalPicks := 0
	for _, m := range members {
		totalPicks += pickCounts[m.UserID]
	}

	idx := RoundMemberIndex(n, totalPicks, league.DraftFormat)
	for i := 0; i < n; i++ {
		check := (idx + i) % n
		if pickCounts[members[check].UserID] < rosterSize {
			return check
		}
	}
	return 0
}

// ComputeEligibility derives the acting user's remaining slots and the
// availability of every contestant. It has no side effects.
func ComputeEligibility(
	league League,
	contestants []Contestant,
	ownerCounts map[string]int,
	currentIndex int,
	members []Member,
	actingUserID string,
	actingUserPickCount int,
) Eligibility {
	out := Eligibility{
		Status:         league.Status,
		ActingUserID:   actingUserID,
		CurrentIndex:   currentIndex,
		RemainingSlots: max(0, league.RosterSize-actingUserPickCount),
		MaxOwners:      league.MaxOwners(),
		SelectionMode:  SelectionSingle,
		Contestants:    make([]ContestantState, 0, len(contestants)),
		byID:           make(map[string]int, len(contestants)),
	}
	if league.OwnershipMode == OwnershipMultiple {
		out.SelectionMode = SelectionMulti
	}

	for _, m := range members {
		if m.UserID == actingUserID {
			out.IsMember = true
			break
		}
	}
	if currentIndex >= 0 && currentIndex < len(members) {
		out.CurrentUserID = members[currentIndex].UserID
		out.IsYourTurn = actingUserID != "" && out.CurrentUserID == actingUserID
	}

	if out.IsYourTurn && out.RemainingSlots > 0 && league.Status == StatusDrafting {
		out.MaxSelections = 1
		if out.SelectionMode == SelectionMulti {
			out.MaxSelections = out.RemainingSlots
		}
	}

	for _, c := range contestants {
		owners := ownerCounts[c.ID]
		full := out.MaxOwners != nil && owners >= *out.MaxOwners
		out.byID[c.ID] = len(out.Contestants)
		out.Contestants = append(out.Contestants, ContestantState{
			Contestant: c,
			Owners:     owners,
			Full:       full,
			Available:  league.Status == StatusDrafting && !full && out.IsYourTurn,
		})
	}

	return out
}

// ValidateSelection checks a proposed pick batch against the eligibility
// it was rendered from. Passing does not guarantee the store accepts it.
func ValidateSelection(e Eligibility, contestantIDs []string) error {
	if e.Status != StatusDrafting {
		return ErrDraftNotOpen
	}
	if len(contestantIDs) == 0 {
		return ErrEmptySelection
	}
	seen := make(map[string]struct{}, len(contestantIDs))
	for _, id := range contestantIDs {
		if _, dup := seen[id]; dup {
			return ErrDuplicateSelection
		}
		seen[id] = struct{}{}
	}
	if !e.IsMember {
		return ErrNotMember
	}
	if !e.IsYourTurn {
		return ErrNotYourTurn
	}
	if e.RemainingSlots <= 0 {
		return ErrRosterFull
	}
	if e.SelectionMode == SelectionSingle && len(contestantIDs) != 1 {
		return ErrTooManySelections
	}
	if len(contestantIDs) > e.RemainingSlots {
		return ErrTooManySelections
	}

	for _, id := range contestantIDs {
		state, ok := e.Contestant(id)
		if !ok {
			return ErrContestantUnavailable
		}
		if state.Full {
			return ErrContestantFull
		}
		if state.OwnedByYou {
			return ErrAlreadyOwned
		}
		if !state.Available {
			return ErrContestantUnavailable
		}
	}

	return nil
}

func (e Eligibility) Contestant(id string) (ContestantState, bool) {
	idx, ok := e.byID[id]
	if !ok {
		return ContestantState{}, false
	}
	return e.Contestants[idx], true
}
