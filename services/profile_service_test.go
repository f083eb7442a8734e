package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"clan-portal/events"
	"clan-portal/models"
)

func newProfile(t *testing.T, svc *ProfileService, id string) *models.UserProfile {
	t.Helper()
	p, err := svc.GetOrCreate(models.User{ID: id, Username: "player-" + id, Email: id + "@example.com", Platform: "pc"})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestGetOrCreate(t *testing.T) {
	f := newFixture(t)
	svc := f.profileService()
	created := 0
	f.bus.Subscribe(events.ProfileChanged, func(events.Event) { created++ })

	p := newProfile(t, svc, "u1")
	if p.Rank != models.DefaultRank || p.Settings != models.DefaultSettings {
		t.Fatalf("defaults: %+v", p)
	}
	if p.Stats != (models.Stats{}) || p.Clan != nil || len(p.Achievements) != 0 {
		t.Fatalf("fresh profile not empty: %+v", p)
	}

	again, err := svc.GetOrCreate(models.User{ID: "u1", Username: "renamed"})
	if err != nil {
		t.Fatal(err)
	}
	if again.Username != "player-u1" {
		t.Fatalf("GetOrCreate overwrote profile: %q", again.Username)
	}
	if created != 1 {
		t.Fatalf("created %d times", created)
	}

	raw, err := f.backend.Get("userProfiles")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(raw), `{"u1":{"userId":"u1"`) {
		t.Fatalf("profiles persisted as %s", raw)
	}

	if _, err := svc.GetOrCreate(models.User{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestRecordGameResult(t *testing.T) {
	svc := newFixture(t).profileService()
	newProfile(t, svc, "u1")

	for i := 0; i < 7; i++ {
		if _, err := svc.RecordGameResult("u1", "valorant", models.ResultWin); err != nil {
			t.Fatal(err)
		}
	}
	var p *models.UserProfile
	var err error
	for i := 0; i < 3; i++ {
		if p, err = svc.RecordGameResult("u1", "valorant", models.ResultLoss); err != nil {
			t.Fatal(err)
		}
	}
	gs := p.Games["valorant"]
	if gs.Wins != 7 || gs.Losses != 3 || gs.WinRate != 70 || gs.Rank != models.DefaultGameRank {
		t.Fatalf("game stats: %+v", gs)
	}
	if p.Stats.GamesPlayed != 10 || p.Stats.WinRate != 70 {
		t.Fatalf("aggregate: %+v", p.Stats)
	}

	p, _ = svc.RecordGameResult("u1", "apex", models.ResultLoss)
	if p.Games["apex"].WinRate != 0 || p.Stats.WinRate != 64 {
		t.Fatalf("apex=%+v aggregate=%+v", p.Games["apex"], p.Stats)
	}

	if _, err := svc.RecordGameResult("u1", "apex", "draw"); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v", err)
	}
	if _, err := svc.RecordGameResult("ghost", "apex", models.ResultWin); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestWinRateRounding(t *testing.T) {
	tests := []struct{ wins, losses, want int }{
		{0, 0, 0},
		{1, 2, 33},
		{2, 1, 67},
		{1, 1, 50},
		{1, 7, 13},
	}
	for _, tt := range tests {
		if got := winRate(tt.wins, tt.losses); got != tt.want {
			t.Errorf("winRate(%d, %d) = %d, want %d", tt.wins, tt.losses, got, tt.want)
		}
	}
}

func TestAddAchievement(t *testing.T) {
	f := newFixture(t)
	svc := f.profileService()
	newProfile(t, svc, "u1")
	a := models.Achievement{ID: "first-blood", Name: "First Blood"}

	added, err := svc.AddAchievement("u1", a)
	if err != nil || !added {
		t.Fatalf("first add = %v, %v", added, err)
	}

	changed := 0
	sub := f.bus.Subscribe(events.ProfileChanged, func(events.Event) { changed++ })
	defer sub.Unsubscribe()
	if err := f.backend.Set("userProfiles", []byte("marker")); err != nil {
		t.Fatal(err)
	}

	added, err = svc.AddAchievement("u1", models.Achievement{ID: "first-blood", Name: "Other"})
	if err != nil || added {
		t.Fatalf("second add = %v, %v", added, err)
	}
	if changed != 0 {
		t.Fatalf("duplicate achievement published %d events", changed)
	}
	if raw, _ := f.backend.Get("userProfiles"); string(raw) != "marker" {
		t.Fatalf("duplicate achievement rewrote profiles: %s", raw)
	}
	p, _ := svc.Get("u1")
	if len(p.Achievements) != 1 {
		t.Fatalf("achievements = %d", len(p.Achievements))
	}
	got := p.Achievements[0]
	if !got.Unlocked || got.UnlockedAt == nil || !got.UnlockedAt.Equal(fixedNow) || got.Name != "First Blood" {
		t.Fatalf("achievement = %+v", got)
	}
}

func TestAddActivityStampsNow(t *testing.T) {
	svc := newFixture(t).profileService()
	newProfile(t, svc, "u1")

	supplied := fixedNow.AddDate(0, 0, 30)
	p, err := svc.AddActivity("u1", models.Activity{Icon: "trophy", Message: "won", Timestamp: supplied})
	if err != nil {
		t.Fatal(err)
	}
	if got := p.RecentActivity[0].Timestamp; !got.Equal(fixedNow) {
		t.Fatalf("timestamp = %v, want %v", got, fixedNow)
	}
}

func TestAddActivityKeepsNewestTen(t *testing.T) {
	svc := newFixture(t).profileService()
	newProfile(t, svc, "u1")

	for i := 0; i < 15; i++ {
		if _, err := svc.AddActivity("u1", models.Activity{Icon: "gamepad", Message: fmt.Sprint(i)}); err != nil {
			t.Fatal(err)
		}
	}
	p, _ := svc.Get("u1")
	if len(p.RecentActivity) != models.MaxRecentActivity {
		t.Fatalf("len = %d", len(p.RecentActivity))
	}
	for i, a := range p.RecentActivity {
		if want := fmt.Sprint(14 - i); a.Message != want {
			t.Fatalf("RecentActivity[%d] = %q, want %q", i, a.Message, want)
		}
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := newFixture(t).profileService()
	newProfile(t, svc, "u1")

	p, err := svc.UpdateProfile("u1", ProfileUpdate{Bio: ptr("aim trainer"), Username: ptr(" neo ")})
	if err != nil {
		t.Fatal(err)
	}
	if p.Bio != "aim trainer" || p.Username != "neo" || p.Email != "u1@example.com" {
		t.Fatalf("merge: %+v", p)
	}

	for _, u := range []ProfileUpdate{{Username: ptr("")}, {Email: ptr("  ")}} {
		if _, err := svc.UpdateProfile("u1", u); !errors.Is(err, ErrValidation) {
			t.Errorf("UpdateProfile(%+v) err = %v", u, err)
		}
	}
	if _, err := svc.UpdateProfile("ghost", ProfileUpdate{Bio: ptr("x")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestClanMembership(t *testing.T) {
	svc := newFixture(t).profileService()
	newProfile(t, svc, "u1")
	clan := SeedClans()[0]

	p, err := svc.SetClanMembership("u1", clan, "")
	if err != nil {
		t.Fatal(err)
	}
	if p.Clan == nil || p.Clan.ClanID != clan.ID || p.Clan.Tag != "[NNJA]" || p.Clan.Role != "Member" {
		t.Fatalf("membership: %+v", p.Clan)
	}
	p, _ = svc.ClearClanMembership("u1")
	if p.Clan != nil {
		t.Fatal("membership not cleared")
	}
}
