package services

import (
	"testing"
	"time"

	"clan-portal/events"
	"clan-portal/models"
	"clan-portal/storage"
	"clan-portal/store"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fixture struct {
	backend       *storage.MemoryBackend
	bus           *events.Bus
	clans         *store.Store[*models.Clan]
	tournaments   *store.Store[*models.Tournament]
	registrations *store.Store[*models.Registration]
	profiles      *store.Store[*models.UserProfile]
	chat          *store.Store[*models.ChatMessage]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := storage.NewMemoryBackend()
	bus := events.NewBus()
	f := &fixture{
		backend:       b,
		bus:           bus,
		clans:         store.New(b, "clans", "clan", store.WithBus[*models.Clan](bus, events.ClanChanged)),
		tournaments:   store.New(b, "tournaments", "tournament", store.WithBus[*models.Tournament](bus, events.TournamentChanged)),
		registrations: store.New(b, "tournamentRegistrations", "registration", store.WithBus[*models.Registration](bus, events.TournamentChanged)),
		profiles: store.New(b, "userProfiles", "profile",
			store.WithBus[*models.UserProfile](bus, events.ProfileChanged),
			store.WithCodec[*models.UserProfile](store.KeyedCodec[*models.UserProfile]{})),
		chat: store.New(b, "clanChat", "chat",
			store.WithBus[*models.ChatMessage](bus, events.ChatMessage),
			store.WithCapacity[*models.ChatMessage](models.MaxChatMessages)),
	}
	for _, err := range []error{
		f.clans.Load(nil), f.tournaments.Load(nil), f.registrations.Load(nil),
		f.profiles.Load(nil), f.chat.Load(nil),
	} {
		if err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func (f *fixture) clanService() *ClanService {
	s := NewClanService(f.clans)
	s.now = fixedClock
	return s
}

func (f *fixture) tournamentService() *TournamentService {
	s := NewTournamentService(f.tournaments, f.registrations)
	s.now = fixedClock
	return s
}

func (f *fixture) profileService() *ProfileService {
	s := NewProfileService(f.profiles)
	s.now = fixedClock
	return s
}

func ptr[T any](v T) *T { return &v }
