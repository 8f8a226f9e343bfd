package draft

import (
	"errors"
	"testing"
	"time"
)

func threeMembers() []Member {
	return []Member{
		{UserID: "u3", DraftPosition: intPtr(3)},
		{UserID: "u1", DraftPosition: intPtr(1)},
		{UserID: "u2", DraftPosition: intPtr(2)},
	}
}

func seasonContestants() []Contestant {
	return []Contestant{
		{ID: "x", SeasonID: "s1", Name: "Xena"},
		{ID: "y", SeasonID: "s1", Name: "Yusuf"},
		{ID: "z", SeasonID: "s1", Name: "Zora"},
	}
}

func TestBuildSnapshot_RejectsMalformedLeague(t *testing.T) {
	tests := []struct {
		name   string
		league League
	}{
		{name: "missing id", league: League{Status: StatusSetup, RosterSize: 2}},
		{name: "zero roster", league: League{ID: "l", Status: StatusSetup}},
		{name: "unknown status", league: League{ID: "l", Status: "paused", RosterSize: 2}},
		{name: "unknown format", league: League{ID: "l", Status: StatusSetup, RosterSize: 2, DraftFormat: "auction"}},
		{name: "zero max owners", league: League{ID: "l", Status: StatusSetup, RosterSize: 2, OwnershipMode: OwnershipMultiple, MaxOwnersPerContestant: intPtr(0)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildSnapshot(tc.league, nil, nil, nil)
			if !errors.Is(err, ErrMalformedLeague) {
				t.Fatalf("expected ErrMalformedLeague, got %v", err)
			}
		})
	}
}

func TestBuildSnapshot_NormalizesLegacyLeague(t *testing.T) {
	snap, err := BuildSnapshot(League{
		ID:                     "l",
		Status:                 StatusDrafting,
		RosterSize:             2,
		DraftFormat:            " SNAKE ",
		MaxOwnersPerContestant: intPtr(4),
	}, threeMembers(), nil, nil)
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}
	if snap.League.DraftFormat != FormatSnake {
		t.Fatalf("expected snake format, got %q", snap.League.DraftFormat)
	}
	if snap.League.OwnershipMode != OwnershipUnique {
		t.Fatalf("expected unique default, got %q", snap.League.OwnershipMode)
	}
	if snap.League.MaxOwnersPerContestant != nil {
		t.Fatalf("expected max owners dropped in unique mode")
	}
	if snap.Members[0].UserID != "u1" || snap.Members[2].UserID != "u3" {
		t.Fatalf("expected members sorted by position, got %+v", snap.Members)
	}
}

func TestSnapshot_OwnerCountsAreDistinctUsers(t *testing.T) {
	league := League{ID: "l", Status: StatusDrafting, RosterSize: 3, OwnershipMode: OwnershipMultiple}
	picks := []Pick{
		{UserID: "u1", ContestantID: "x"},
		{UserID: "u1", ContestantID: "x"},
		{UserID: "u2", ContestantID: "x"},
		{UserID: "u2", ContestantID: "y"},
	}

	snap, err := BuildSnapshot(league, threeMembers(), seasonContestants(), picks)
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}
	if snap.OwnerCounts["x"] != 2 {
		t.Fatalf("expected 2 distinct owners of x, got %d", snap.OwnerCounts["x"])
	}
	if snap.PickCounts["u1"] != 2 || snap.PickCounts["u2"] != 2 {
		t.Fatalf("unexpected pick counts: %v", snap.PickCounts)
	}
}

func TestSnapshot_ScenarioFirstPick(t *testing.T) {
	league := League{ID: "l", Status: StatusDrafting, RosterSize: 2, DraftFormat: FormatLinear, OwnershipMode: OwnershipUnique}
	snap, err := BuildSnapshot(league, threeMembers(), seasonContestants(), nil)
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}

	if got := snap.CurrentPickerIndex(); got != 0 {
		t.Fatalf("expected u1 to pick first, got index %d", got)
	}

	e := snap.Eligibility("u1")
	if !e.IsYourTurn || e.RemainingSlots != 2 || e.SelectionMode != SelectionSingle || e.MaxSelections != 1 {
		t.Fatalf("unexpected eligibility for u1: %+v", e)
	}
	for _, c := range e.Contestants {
		if !c.Available {
			t.Fatalf("expected %s available on the first pick", c.Contestant.ID)
		}
	}

	other := snap.Eligibility("u2")
	if other.IsYourTurn || other.MaxSelections != 0 {
		t.Fatalf("u2 should be waiting, got %+v", other)
	}
	if err := ValidateSelection(other, []string{"x"}); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
}

func TestSnapshot_ScenarioTurnAdvancesAndTakenContestantIsFull(t *testing.T) {
	league := League{ID: "l", Status: StatusDrafting, RosterSize: 2, DraftFormat: FormatLinear, OwnershipMode: OwnershipUnique}
	picks := []Pick{{LeagueID: "l", UserID: "u1", ContestantID: "x"}}

	snap, err := BuildSnapshot(league, threeMembers(), seasonContestants(), picks)
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}
	if got := snap.CurrentPickerIndex(); got != 1 {
		t.Fatalf("expected u2 to pick next, got index %d", got)
	}

	e := snap.Eligibility("u2")
	x, _ := e.Contestant("x")
	if !x.Full || x.Available {
		t.Fatalf("expected x full after being taken, got %+v", x)
	}
	if err := ValidateSelection(e, []string{"x"}); !errors.Is(err, ErrContestantFull) {
		t.Fatalf("expected ErrContestantFull, got %v", err)
	}
	if err := ValidateSelection(e, []string{"y"}); err != nil {
		t.Fatalf("expected y to be pickable, got %v", err)
	}

	owner := snap.Eligibility("u1")
	ownX, _ := owner.Contestant("x")
	if !ownX.OwnedByYou {
		t.Fatalf("expected u1 to see x as owned")
	}
}

func TestSnapshot_ScenarioMultipleOwnershipCap(t *testing.T) {
	league := League{
		ID:                     "l",
		Status:                 StatusDrafting,
		RosterSize:             2,
		DraftFormat:            FormatLinear,
		OwnershipMode:          OwnershipMultiple,
		MaxOwnersPerContestant: intPtr(2),
	}
	picks := []Pick{
		{UserID: "u1", ContestantID: "x"},
		{UserID: "u1", ContestantID: "y"},
		{UserID: "u2", ContestantID: "x"},
	}

	snap, err := BuildSnapshot(league, threeMembers(), seasonContestants(), picks)
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}
	if got := snap.CurrentPickerIndex(); got != 1 {
		t.Fatalf("expected u2 to keep the turn, got index %d", got)
	}

	e := snap.Eligibility("u2")
	if e.SelectionMode != SelectionMulti || e.MaxSelections != 1 || e.RemainingSlots != 1 {
		t.Fatalf("unexpected eligibility: %+v", e)
	}
	x, _ := e.Contestant("x")
	if !x.Full || x.Available || x.Owners != 2 {
		t.Fatalf("expected x full with two owners, got %+v", x)
	}
	z, _ := e.Contestant("z")
	if !z.Available {
		t.Fatalf("expected z available")
	}
	if err := ValidateSelection(e, []string{"y", "z"}); !errors.Is(err, ErrTooManySelections) {
		t.Fatalf("expected ErrTooManySelections, got %v", err)
	}
}

func TestSnapshot_DraftComplete(t *testing.T) {
	league := League{ID: "l", Status: StatusDrafting, RosterSize: 1, OwnershipMode: OwnershipUnique}
	picks := []Pick{
		{UserID: "u1", ContestantID: "x"},
		{UserID: "u2", ContestantID: "y"},
		{UserID: "u3", ContestantID: "z"},
	}

	snap, err := BuildSnapshot(league, threeMembers(), seasonContestants(), picks)
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}
	if !snap.DraftComplete() {
		t.Fatalf("expected draft complete")
	}
	e := snap.Eligibility("u1")
	if !e.DraftComplete || e.RemainingSlots != 0 || e.MaxSelections != 0 {
		t.Fatalf("unexpected eligibility after completion: %+v", e)
	}

	empty, err := BuildSnapshot(league, nil, nil, nil)
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}
	if empty.DraftComplete() {
		t.Fatalf("league without members is never complete")
	}
}

func TestSnapshot_OrderHighlightsCurrentAndYou(t *testing.T) {
	league := League{ID: "l", Status: StatusDrafting, RosterSize: 2, OwnershipMode: OwnershipUnique}
	snap, err := BuildSnapshot(league, threeMembers(), nil, []Pick{{UserID: "u1", ContestantID: "x"}})
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}

	order := snap.Order("u3")
	if len(order) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(order))
	}
	if !order[1].IsCurrent || order[0].IsCurrent {
		t.Fatalf("expected u2 highlighted, got %+v", order)
	}
	if !order[2].IsYou || order[0].PickCount != 1 {
		t.Fatalf("unexpected order entries: %+v", order)
	}
}

func TestSnapshot_RostersKeepPickOrderAndEmptySlots(t *testing.T) {
	league := League{ID: "l", Status: StatusActive, RosterSize: 3, OwnershipMode: OwnershipMultiple}
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	picks := []Pick{
		{UserID: "u2", ContestantID: "z", CreatedAt: base},
		{UserID: "u1", ContestantID: "x", CreatedAt: base.Add(time.Minute)},
		{UserID: "u2", ContestantID: "ghost", CreatedAt: base.Add(2 * time.Minute)},
	}

	snap, err := BuildSnapshot(league, threeMembers(), seasonContestants(), picks)
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}

	rosters := snap.Rosters()
	if len(rosters) != 3 {
		t.Fatalf("expected a roster per member, got %d", len(rosters))
	}
	if rosters[0].UserID != "u1" || len(rosters[0].Picks) != 1 || rosters[0].EmptySlots != 2 {
		t.Fatalf("unexpected u1 roster: %+v", rosters[0])
	}
	u2 := rosters[1]
	if len(u2.Picks) != 2 || u2.Picks[0].Contestant.Name != "Zora" || u2.Picks[1].Contestant.ID != "ghost" {
		t.Fatalf("unexpected u2 roster: %+v", u2)
	}
	if rosters[2].EmptySlots != 3 || len(rosters[2].Picks) != 0 {
		t.Fatalf("unexpected u3 roster: %+v", rosters[2])
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusSetup, StatusDrafting, true},
		{StatusDrafting, StatusActive, true},
		{StatusDrafting, StatusSetup, true},
		{StatusActive, StatusSetup, true},
		{StatusSetup, StatusActive, false},
		{StatusActive, StatusDrafting, false},
		{StatusSetup, StatusSetup, false},
	}
	for _, tc := range tests {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("%s -> %s: got %v want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
