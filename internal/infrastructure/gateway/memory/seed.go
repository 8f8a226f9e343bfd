package memory

import "github.com/riskibarqy/fantasy-draft/internal/domain/draft"

const (
	DemoLeagueID = "demo-league"
	DemoSeasonID = "season-1"
)

type SeedMember struct {
	LeagueID      string
	UserID        string
	DraftPosition *int
}

// SeedData is the initial content of a Gateway. Members are joined in slice
// order, which decides LatestLeagueForUser.
type SeedData struct {
	Leagues     []draft.League
	Members     []SeedMember
	Contestants []draft.Contestant
	Picks       []draft.Pick
}

// DemoSeed is a league in setup with three members and six contestants, so a
// local run can walk the whole draft lifecycle. commissionerID owns the
// league and is its first member.
func DemoSeed(commissionerID string) SeedData {
	if commissionerID == "" {
		commissionerID = "demo-commissioner"
	}

	return SeedData{
		Leagues: []draft.League{
			{
				ID:             DemoLeagueID,
				Name:           "Demo League",
				SeasonID:       DemoSeasonID,
				Status:         draft.StatusSetup,
				RosterSize:     2,
				DraftFormat:    draft.FormatSnake,
				OwnershipMode:  draft.OwnershipUnique,
				CommissionerID: commissionerID,
			},
		},
		Members: []SeedMember{
			{LeagueID: DemoLeagueID, UserID: commissionerID},
			{LeagueID: DemoLeagueID, UserID: "demo-member-2"},
			{LeagueID: DemoLeagueID, UserID: "demo-member-3"},
		},
		Contestants: []draft.Contestant{
			{ID: "c-anya", SeasonID: DemoSeasonID, Name: "Anya"},
			{ID: "c-bianca", SeasonID: DemoSeasonID, Name: "Bianca"},
			{ID: "c-coco", SeasonID: DemoSeasonID, Name: "Coco"},
			{ID: "c-dita", SeasonID: DemoSeasonID, Name: "Dita"},
			{ID: "c-eureka", SeasonID: DemoSeasonID, Name: "Eureka"},
			{ID: "c-farrah", SeasonID: DemoSeasonID, Name: "Farrah"},
		},
	}
}
