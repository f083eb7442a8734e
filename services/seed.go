package services

import (
	"time"

	"clan-portal/models"
)

func seedDate(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

// SeedClans are loaded when no clans have been persisted yet.
func SeedClans() []*models.Clan {
	return []*models.Clan{
		{
			ID: "1", Name: "NEON NINJAS", Tag: "[NNJA]", Game: "Valorant",
			Platforms: []string{models.PlatformPC}, Members: 24, Online: 8,
			Rank: "Diamond", WinRate: "68%",
			Description: "Competitive Valorant team focusing on strategic gameplay",
			Recruitment: models.RecruitmentOpen, Created: seedDate("2024-01-15"),
		},
		{
			ID: "2", Name: "CYBER STRIKERS", Tag: "[CSTR]", Game: "Call of Duty",
			Platforms: []string{models.PlatformPC, models.PlatformPlayStation, models.PlatformXbox},
			Members:   45, Online: 22, Rank: "Platinum", WinRate: "72%",
			Description: "Multi-platform COD clan with competitive and casual divisions",
			Recruitment: models.RecruitmentOpen, Created: seedDate("2023-11-20"),
		},
		{
			ID: "3", Name: "APEX PREDATORS", Tag: "[APEX]", Game: "Apex Legends",
			Platforms: []string{models.PlatformPC, models.PlatformPlayStation},
			Members:   32, Online: 15, Rank: "Master", WinRate: "65%",
			Description: "Apex Legends specialists pushing for Predator rank",
			Recruitment: models.RecruitmentClosed, Created: seedDate("2024-02-10"),
		},
		{
			ID: "4", Name: "DRAGON SLAYERS", Tag: "[DRGN]", Game: "League of Legends",
			Platforms: []string{models.PlatformPC}, Members: 28, Online: 12,
			Rank: "Emerald", WinRate: "58%",
			Description: "LoL team focusing on coordinated team fights and objectives",
			Recruitment: models.RecruitmentOpen, Created: seedDate("2024-01-05"),
		},
		{
			ID: "5", Name: "OVERWATCH ELITE", Tag: "[OWE]", Game: "Overwatch 2",
			Platforms: []string{models.PlatformPC, models.PlatformXbox, models.PlatformPlayStation},
			Members:   38, Online: 18, Rank: "Diamond", WinRate: "71%",
			Description: "Overwatch 2 competitive team with focus on team composition",
			Recruitment: models.RecruitmentOpen, Created: seedDate("2023-12-15"),
		},
		{
			ID: "6", Name: "MOBILE STRIKERS", Tag: "[MBL]", Game: "Call of Duty Mobile",
			Platforms: []string{models.PlatformMobile}, Members: 52, Online: 25,
			Rank: "Legendary", WinRate: "75%",
			Description: "Top-tier mobile gaming clan dominating COD Mobile",
			Recruitment: models.RecruitmentOpen, Created: seedDate("2024-03-01"),
		},
	}
}

// SeedTournaments are loaded when no tournaments have been persisted yet.
// Start dates are relative to now so the upcoming list is never empty on a
// fresh install.
func SeedTournaments(now time.Time) []*models.Tournament {
	day := 24 * time.Hour
	return []*models.Tournament{
		{
			ID: "1", Name: "Weekly Valorant Showdown", Game: "Valorant",
			Platforms: []string{models.PlatformPC}, Prize: "$500",
			RegisteredTeams: 0, MaxTeams: 16, Status: models.TournamentStatusRegistration,
			StartDate: now.Add(3 * day), Organizer: DefaultOrganizer, Created: now,
		},
		{
			ID: "2", Name: "Cross-Platform COD War", Game: "Call of Duty",
			Platforms:       []string{models.PlatformPC, models.PlatformPlayStation, models.PlatformXbox},
			Prize:           "$1,000",
			RegisteredTeams: 0, MaxTeams: 32, Status: models.TournamentStatusRegistration,
			StartDate: now.Add(5 * day), Organizer: DefaultOrganizer, Created: now,
		},
		{
			ID: "3", Name: "Apex Legends Trios Cup", Game: "Apex Legends",
			Platforms:       []string{models.PlatformPC, models.PlatformPlayStation},
			Prize:           "$750",
			RegisteredTeams: 48, MaxTeams: 48, Status: models.TournamentStatusOngoing,
			StartDate: now.Add(-day), Organizer: DefaultOrganizer, Featured: true, Created: now,
		},
	}
}
