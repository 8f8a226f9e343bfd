package draft

import "time"

// Snapshot is the read-only aggregate turn and eligibility are derived from.
// It is assembled per request and never reused after a write.
type Snapshot struct {
	League      League
	Members     []Member
	Contestants []Contestant
	Picks       []Pick
	PickCounts  map[string]int
	OwnerCounts map[string]int

	ownedBy map[string]map[string]struct{}
}

// BuildSnapshot aggregates raw rows. Members are re-sorted into turn order so
// the result does not depend on the store's ordering.
func BuildSnapshot(league League, members []Member, contestants []Contestant, picks []Pick) (Snapshot, error) {
	league = league.Normalized()
	if err := league.Validate(); err != nil {
		return Snapshot{}, err
	}

	pickCounts := make(map[string]int)
	ownedBy := make(map[string]map[string]struct{})
	for _, p := range picks {
		pickCounts[p.UserID]++
		owners, ok := ownedBy[p.ContestantID]
		if !ok {
			owners = make(map[string]struct{})
			ownedBy[p.ContestantID] = owners
		}
		owners[p.UserID] = struct{}{}
	}

	ownerCounts := make(map[string]int, len(ownedBy))
	for contestantID, owners := range ownedBy {
		ownerCounts[contestantID] = len(owners)
	}

	return Snapshot{
		League:      league,
		Members:     SortMembers(members),
		Contestants: contestants,
		Picks:       picks,
		PickCounts:  pickCounts,
		OwnerCounts: ownerCounts,
		ownedBy:     ownedBy,
	}, nil
}

func (s Snapshot) CurrentPickerIndex() int {
	return CurrentPickerIndex(s.League, s.Members, s.PickCounts)
}

// Eligibility computes the acting user's view and marks contestants the user
// already holds.
func (s Snapshot) Eligibility(actingUserID string) Eligibility {
	e := ComputeEligibility(
		s.League,
		s.Contestants,
		s.OwnerCounts,
		s.CurrentPickerIndex(),
		s.Members,
		actingUserID,
		s.PickCounts[actingUserID],
	)
	e.DraftComplete = s.DraftComplete()
	for i := range e.Contestants {
		if _, owns := s.ownedBy[e.Contestants[i].Contestant.ID][actingUserID]; owns {
			e.Contestants[i].OwnedByYou = true
		}
	}
	return e
}

// DraftComplete reports whether every member has filled their roster.
func (s Snapshot) DraftComplete() bool {
	if len(s.Members) == 0 {
		return false
	}
	for _, m := range s.Members {
		if s.PickCounts[m.UserID] < s.League.RosterSize {
			return false
		}
	}
	return true
}

func (s Snapshot) IsMember(userID string) bool {
	for _, m := range s.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

type OrderEntry struct {
	UserID        string
	DraftPosition *int
	PickCount     int
	IsCurrent     bool
	IsYou         bool
}

// Order is the turn strip with the current picker highlighted.
func (s Snapshot) Order(actingUserID string) []OrderEntry {
	current := s.CurrentPickerIndex()
	out := make([]OrderEntry, 0, len(s.Members))
	for i, m := range s.Members {
		out = append(out, OrderEntry{
			UserID:        m.UserID,
			DraftPosition: m.DraftPosition,
			PickCount:     s.PickCounts[m.UserID],
			IsCurrent:     i == current,
			IsYou:         m.UserID == actingUserID,
		})
	}
	return out
}

type RosterPick struct {
	Contestant Contestant
	PickedAt   time.Time
}

type Roster struct {
	UserID        string
	DraftPosition *int
	Picks         []RosterPick
	EmptySlots    int
}

// Rosters groups picks per member in turn order, each roster in pick order.
func (s Snapshot) Rosters() []Roster {
	names := make(map[string]Contestant, len(s.Contestants))
	for _, c := range s.Contestants {
		names[c.ID] = c
	}

	byUser := make(map[string][]RosterPick, len(s.Members))
	for _, p := range s.Picks {
		c, ok := names[p.ContestantID]
		if !ok {
			c = Contestant{ID: p.ContestantID}
		}
		byUser[p.UserID] = append(byUser[p.UserID], RosterPick{Contestant: c, PickedAt: p.CreatedAt})
	}

	out := make([]Roster, 0, len(s.Members))
	for _, m := range s.Members {
		picks := byUser[m.UserID]
		out = append(out, Roster{
			UserID:        m.UserID,
			DraftPosition: m.DraftPosition,
			Picks:         picks,
			EmptySlots:    max(0, s.League.RosterSize-len(picks)),
		})
	}
	return out
}
