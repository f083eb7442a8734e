package services

import (
	"errors"
	"math/rand/v2"
	"testing"

	"clan-portal/models"
)

func TestCreateClanDefaults(t *testing.T) {
	svc := newFixture(t).clanService()

	c, err := svc.CreateClan(CreateClanInput{Name: "Neon Ninjas Squad", Game: "Valorant", Platforms: []string{"pc"}})
	if err != nil {
		t.Fatal(err)
	}
	if c.ID == "" {
		t.Fatal("no id assigned")
	}
	if c.Members != 1 || c.Online != 0 {
		t.Fatalf("members/online = %d/%d", c.Members, c.Online)
	}
	if c.Recruitment != models.RecruitmentOpen || c.WinRate != "0%" || c.Rank != models.DefaultGameRank {
		t.Fatalf("defaults: %+v", c)
	}
	if c.Tag != "[NNS]" {
		t.Fatalf("Tag = %q", c.Tag)
	}
	if !c.Created.Equal(fixedNow) {
		t.Fatalf("Created = %v", c.Created)
	}
}

func TestCreateClanValidation(t *testing.T) {
	svc := newFixture(t).clanService()
	for _, in := range []CreateClanInput{
		{Game: "Valorant"},
		{Name: "Ninjas"},
		{Name: "  ", Game: "  "},
	} {
		if _, err := svc.CreateClan(in); !errors.Is(err, ErrValidation) {
			t.Errorf("CreateClan(%+v) err = %v", in, err)
		}
	}
	if len(svc.List()) != 0 {
		t.Fatal("invalid clan stored")
	}
}

func TestJoinAndCloseScenario(t *testing.T) {
	svc := newFixture(t).clanService()
	c, _ := svc.CreateClan(CreateClanInput{Name: "Ninjas", Game: "Valorant"})

	for i := 0; i < 2; i++ {
		if _, err := svc.JoinClan(c.ID, "u"); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := svc.Get(c.ID)
	if got.Members != 3 {
		t.Fatalf("Members = %d, want 3", got.Members)
	}

	if _, err := svc.UpdateStats(c.ID, ClanStats{Recruitment: ptr(models.RecruitmentClosed)}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.JoinClan(c.ID, "late"); !errors.Is(err, ErrClosed) {
		t.Fatalf("JoinClan err = %v, want ErrClosed", err)
	}
	got, _ = svc.Get(c.ID)
	if got.Members != 3 {
		t.Fatalf("Members = %d after failed join", got.Members)
	}
}

func TestJoinUnknownClan(t *testing.T) {
	svc := newFixture(t).clanService()
	if _, err := svc.JoinClan("nope", "u"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestLeaveClan(t *testing.T) {
	f := newFixture(t)
	svc := f.clanService()
	if err := f.clans.Load([]*models.Clan{{ID: "c", Name: "C", Members: 2, Online: 2, Recruitment: models.RecruitmentOpen}}); err != nil {
		t.Fatal(err)
	}

	got, err := svc.LeaveClan("c", "u")
	if err != nil {
		t.Fatal(err)
	}
	if got.Members != 1 || got.Online != 1 {
		t.Fatalf("after leave: %d/%d", got.Members, got.Online)
	}
	_, _ = svc.LeaveClan("c", "u")
	if _, err := svc.LeaveClan("c", "u"); !errors.Is(err, ErrEmptyClan) {
		t.Fatalf("err = %v, want ErrEmptyClan", err)
	}
	got, _ = svc.Get("c")
	if got.Members != 0 || got.Online != 0 {
		t.Fatalf("underflow: %+v", got)
	}
}

func TestUpdateStats(t *testing.T) {
	f := newFixture(t)
	svc := f.clanService()
	_ = f.clans.Load([]*models.Clan{{ID: "c", Name: "C", Members: 5, Recruitment: models.RecruitmentOpen, Rank: "Gold"}})

	got, err := svc.UpdateStats("c", ClanStats{Online: ptr(4), WinRate: ptr("55%")})
	if err != nil {
		t.Fatal(err)
	}
	if got.Online != 4 || got.WinRate != "55%" || got.Rank != "Gold" {
		t.Fatalf("merge: %+v", got)
	}

	tests := []ClanStats{
		{Online: ptr(6)},
		{Online: ptr(-1)},
		{Recruitment: ptr("Maybe")},
		{Rank: ptr("Diamond"), Online: ptr(9)},
	}
	for _, st := range tests {
		if _, err := svc.UpdateStats("c", st); !errors.Is(err, ErrValidation) {
			t.Errorf("UpdateStats(%+v) err = %v", st, err)
		}
	}
	got, _ = svc.Get("c")
	if got.Rank != "Gold" || got.Online != 4 {
		t.Fatalf("rejected update leaked: %+v", got)
	}
}

func TestFilter(t *testing.T) {
	f := newFixture(t)
	svc := f.clanService()
	_ = f.clans.Load(SeedClans())

	tests := []struct {
		name      string
		platforms []string
		games     []string
		want      []string
	}{
		{"single", []string{"pc"}, []string{"valorant"}, []string{"1"}},
		{"normalized game", []string{"xbox"}, []string{"callofduty"}, []string{"2"}},
		{"spaced game", []string{"playstation"}, []string{"Call of Duty", "Apex Legends"}, []string{"2", "3"}},
		{"or within platforms", []string{"mobile", "xbox"}, []string{"Call of Duty Mobile", "Overwatch 2"}, []string{"5", "6"}},
		{"no platform", nil, []string{"valorant"}, nil},
		{"no game", []string{"pc"}, nil, nil},
		{"no match", []string{"nintendo"}, []string{"valorant"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Filter(tt.platforms, tt.games)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d clans, want %v", len(got), tt.want)
			}
			for i, c := range got {
				if c.ID != tt.want[i] {
					t.Fatalf("got[%d] = %s, want %s", i, c.ID, tt.want[i])
				}
			}
		})
	}
}

func TestTopAndSearch(t *testing.T) {
	f := newFixture(t)
	svc := f.clanService()
	_ = f.clans.Load(SeedClans())

	top := svc.Top(3)
	if len(top) != 3 || top[0].Name != "MOBILE STRIKERS" || top[1].Name != "CYBER STRIKERS" || top[2].Name != "OVERWATCH ELITE" {
		t.Fatalf("Top = %v", top)
	}
	if got := svc.Top(100); len(got) != 6 {
		t.Fatalf("Top(100) = %d", len(got))
	}

	got := svc.Search("strikérs")
	if len(got) != 2 {
		t.Fatalf("Search = %d results", len(got))
	}
	if got := svc.Search("[drgn]"); len(got) != 1 || got[0].ID != "4" {
		t.Fatalf("tag search = %v", got)
	}
	if got := svc.Search(""); len(got) != 6 {
		t.Fatalf("empty search = %d", len(got))
	}
	if svc.TotalMembers() != 24+45+32+28+38+52 {
		t.Fatalf("TotalMembers = %d", svc.TotalMembers())
	}
}

func TestSimulateOnlineKeepsInvariant(t *testing.T) {
	f := newFixture(t)
	svc := f.clanService()
	_ = f.clans.Load(append(SeedClans(), &models.Clan{ID: "empty", Name: "Empty", Recruitment: models.RecruitmentOpen}))

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		if _, err := svc.SimulateOnline(rng); err != nil {
			t.Fatal(err)
		}
		for _, c := range svc.List() {
			if c.Online < 0 || c.Online > c.Members {
				t.Fatalf("invariant broken for %s: %d/%d", c.Name, c.Online, c.Members)
			}
		}
	}
}
