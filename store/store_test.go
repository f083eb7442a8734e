package store

import (
	"errors"
	"fmt"
	"strconv"
	"testing"
	"unsafe"

	"clan-portal/events"
	"clan-portal/storage"
)

type item struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Tags []string `json:"tags,omitempty"`
}

func (i *item) EntityID() string      { return i.ID }
func (i *item) SetEntityID(id string) { i.ID = id }

type failingBackend struct {
	*storage.MemoryBackend
	getErr error
	setErr error
}

func (f *failingBackend) Get(key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.MemoryBackend.Get(key)
}

func (f *failingBackend) Set(key string, v []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.MemoryBackend.Set(key, v)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "id-" + strconv.Itoa(n)
	}
}

func newItemStore(b storage.Backend, opts ...Option[*item]) *Store[*item] {
	opts = append([]Option[*item]{WithIDGenerator[*item](sequentialIDs())}, opts...)
	return New[*item](b, "items", "item", opts...)
}

func TestLoadUsesSeedWhenKeyMissing(t *testing.T) {
	s := newItemStore(storage.NewMemoryBackend())
	seed := []*item{{ID: "a", Name: "alpha"}}
	if err := s.Load(seed); err != nil {
		t.Fatalf("Load: %v", err)
	}
	seed[0].Name = "mutated"

	got, err := s.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "alpha" {
		t.Fatalf("seed shared with store: %q", got.Name)
	}
}

func TestLoadCorruptDataSeedsAndReports(t *testing.T) {
	b := storage.NewMemoryBackend()
	_ = b.Set("items", []byte(`{not json`))
	s := newItemStore(b)

	err := s.Load([]*item{{ID: "a"}})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
	var pe *PersistenceError
	if !errors.As(err, &pe) || pe.Op != "decode" || pe.Key != "items" {
		t.Fatalf("unexpected error %#v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want seed applied", s.Len())
	}
}

func TestLoadReadFailureLeavesEmpty(t *testing.T) {
	b := &failingBackend{MemoryBackend: storage.NewMemoryBackend(), getErr: errors.New("disk gone")}
	s := newItemStore(b)

	err := s.Load([]*item{{ID: "a"}})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
}

func TestLoadRestoresPersistedState(t *testing.T) {
	b := storage.NewMemoryBackend()
	first := newItemStore(b)
	_ = first.Load(nil)
	if _, err := first.Add(&item{Name: "kept"}); err != nil {
		t.Fatal(err)
	}

	second := newItemStore(b)
	if err := second.Load([]*item{{ID: "seed"}}); err != nil {
		t.Fatal(err)
	}
	all := second.All()
	if len(all) != 1 || all[0].Name != "kept" {
		t.Fatalf("All = %+v", all)
	}
}

func TestAddAssignsIDPersistsAndNotifies(t *testing.T) {
	b := storage.NewMemoryBackend()
	bus := events.NewBus()
	var seen []events.Event
	bus.Subscribe(events.ClanChanged, func(e events.Event) { seen = append(seen, e) })

	s := newItemStore(b, WithBus[*item](bus, events.ClanChanged))
	_ = s.Load(nil)

	in := &item{Name: "one"}
	got, err := s.Add(in)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "id-1" {
		t.Fatalf("ID = %q", got.ID)
	}
	if in.ID != "" {
		t.Fatal("Add mutated its argument")
	}
	raw, err := b.Get("items")
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `[{"id":"id-1","name":"one"}]` {
		t.Fatalf("persisted %s", raw)
	}
	if len(seen) != 1 || seen[0].ID != "id-1" || seen[0].Kind != "item" {
		t.Fatalf("events = %+v", seen)
	}
}

func TestAddDuplicateID(t *testing.T) {
	s := newItemStore(storage.NewMemoryBackend())
	_ = s.Load([]*item{{ID: "a"}})
	if _, err := s.Add(&item{ID: "a"}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("err = %v, want ErrDuplicateID", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d", s.Len())
	}
}

func TestDefaultIDsAreUnique(t *testing.T) {
	s := New[*item](storage.NewMemoryBackend(), "items", "item")
	_ = s.Load(nil)
	ids := map[string]bool{}
	for i := 0; i < 50; i++ {
		it, err := s.Add(&item{})
		if err != nil {
			t.Fatal(err)
		}
		if ids[it.ID] {
			t.Fatalf("duplicate id %s", it.ID)
		}
		ids[it.ID] = true
	}
}

func TestReturnedEntitiesAreCopies(t *testing.T) {
	s := newItemStore(storage.NewMemoryBackend())
	_ = s.Load([]*item{{ID: "a", Name: "alpha", Tags: []string{"x"}}})

	got, _ := s.Get("a")
	got.Name = "changed"
	got.Tags[0] = "changed"

	found, ok := s.Find(func(i *item) bool { return i.ID == "a" })
	if !ok {
		t.Fatal("Find missed")
	}
	if found.Name != "alpha" || found.Tags[0] != "x" {
		t.Fatalf("store shares memory with callers: %+v", found)
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	s := newItemStore(storage.NewMemoryBackend())
	_ = s.Load([]*item{{ID: "a", Name: "x"}, {ID: "b", Name: "y"}, {ID: "c", Name: "x"}})

	got := s.Filter(func(i *item) bool { return i.Name == "x" })
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("Filter = %+v", got)
	}
}

func TestUpdate(t *testing.T) {
	s := newItemStore(storage.NewMemoryBackend())
	_ = s.Load([]*item{{ID: "a", Name: "alpha"}})

	got, err := s.Update("a", func(i *item) error {
		i.Name = "beta"
		i.ID = "hijacked"
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "a" || got.Name != "beta" {
		t.Fatalf("Update = %+v", got)
	}
	if _, err := s.Get("hijacked"); !errors.Is(err, ErrNotFound) {
		t.Fatal("mutator changed the id")
	}
}

// reusedString returns a string backed by buf, the way fasthttp hands out
// request values that are overwritten by the next request.
func reusedString(buf []byte) string {
	return unsafe.String(&buf[0], len(buf))
}

func TestUpdateDoesNotRetainCallerStrings(t *testing.T) {
	s := newItemStore(storage.NewMemoryBackend())
	_ = s.Load([]*item{{ID: "a1", Name: "alpha"}})

	idBuf, nameBuf := []byte("a1"), []byte("beta")
	if _, err := s.Update(reusedString(idBuf), func(i *item) error {
		i.Name = reusedString(nameBuf)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	copy(idBuf, "zz")
	copy(nameBuf, "gone")

	got, err := s.Get("a1")
	if err != nil {
		t.Fatalf("entity lost after the request buffer was reused: %v", err)
	}
	if got.ID != "a1" || got.Name != "beta" {
		t.Fatalf("stored = %+v", got)
	}
}

func TestUpdateNotFound(t *testing.T) {
	s := newItemStore(storage.NewMemoryBackend())
	_ = s.Load(nil)
	called := false
	_, err := s.Update("missing", func(*item) error { called = true; return nil })
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if called {
		t.Fatal("mutator ran for a missing entity")
	}
}

func TestUpdateMutatorErrorLeavesState(t *testing.T) {
	s := newItemStore(storage.NewMemoryBackend())
	_ = s.Load([]*item{{ID: "a", Name: "alpha"}})
	reject := fmt.Errorf("no")

	_, err := s.Update("a", func(i *item) error {
		i.Name = "half-done"
		return reject
	})
	if !errors.Is(err, reject) {
		t.Fatalf("err = %v", err)
	}
	got, _ := s.Get("a")
	if got.Name != "alpha" {
		t.Fatalf("Name = %q", got.Name)
	}
}

func TestPersistFailureRollsBack(t *testing.T) {
	b := &failingBackend{MemoryBackend: storage.NewMemoryBackend()}
	bus := events.NewBus()
	notified := 0
	bus.Subscribe(events.ClanChanged, func(events.Event) { notified++ })
	s := newItemStore(b, WithBus[*item](bus, events.ClanChanged))
	_ = s.Load([]*item{{ID: "a", Name: "alpha"}})

	b.setErr = errors.New("quota exceeded")

	if _, err := s.Update("a", func(i *item) error { i.Name = "beta"; return nil }); !errors.Is(err, ErrPersistence) {
		t.Fatalf("Update err = %v", err)
	}
	if _, err := s.Add(&item{Name: "new"}); !errors.Is(err, ErrPersistence) {
		t.Fatalf("Add err = %v", err)
	}
	if err := s.Discard("a"); !errors.Is(err, ErrPersistence) {
		t.Fatalf("Discard err = %v", err)
	}

	got, _ := s.Get("a")
	if got.Name != "alpha" || s.Len() != 1 {
		t.Fatalf("state changed after failed writes: %+v len=%d", got, s.Len())
	}
	if notified != 0 {
		t.Fatalf("notified %d times for failed writes", notified)
	}
}

func TestCapacityDropsOldest(t *testing.T) {
	s := newItemStore(storage.NewMemoryBackend(), WithCapacity[*item](3))
	_ = s.Load(nil)
	for i := 0; i < 5; i++ {
		if _, err := s.Add(&item{Name: strconv.Itoa(i)}); err != nil {
			t.Fatal(err)
		}
	}
	all := s.All()
	if len(all) != 3 {
		t.Fatalf("Len = %d", len(all))
	}
	if all[0].Name != "2" || all[2].Name != "4" {
		t.Fatalf("kept %+v", all)
	}
}

func TestDiscard(t *testing.T) {
	s := newItemStore(storage.NewMemoryBackend())
	_ = s.Load([]*item{{ID: "a"}, {ID: "b"}})
	if err := s.Discard("a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Discard("a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Discard err = %v", err)
	}
	if all := s.All(); len(all) != 1 || all[0].ID != "b" {
		t.Fatalf("All = %+v", all)
	}
}

func TestKeyedCodec(t *testing.T) {
	b := storage.NewMemoryBackend()
	s := newItemStore(b, WithCodec[*item](KeyedCodec[*item]{}))
	_ = s.Load(nil)
	_, _ = s.Add(&item{ID: "u2", Name: "two"})
	_, _ = s.Add(&item{ID: "u1", Name: "one"})

	raw, _ := b.Get("items")
	if string(raw) != `{"u1":{"id":"u1","name":"one"},"u2":{"id":"u2","name":"two"}}` {
		t.Fatalf("persisted %s", raw)
	}

	_ = b.Set("items", []byte(`{"u3":{"name":"three"},"u4":null}`))
	reloaded := newItemStore(b, WithCodec[*item](KeyedCodec[*item]{}))
	if err := reloaded.Load(nil); err != nil {
		t.Fatal(err)
	}
	got, err := reloaded.Get("u3")
	if err != nil || got.Name != "three" {
		t.Fatalf("Get u3 = %+v, %v", got, err)
	}
	if reloaded.Len() != 1 {
		t.Fatalf("Len = %d, null entries should be skipped", reloaded.Len())
	}
}

func TestSequenceCodecSkipsNulls(t *testing.T) {
	items, err := SequenceCodec[*item]{}.Decode([]byte(`[null,{"id":"a"}]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != "a" {
		t.Fatalf("Decode = %+v", items)
	}
	raw, _ := SequenceCodec[*item]{}.Encode(nil)
	if string(raw) != "[]" {
		t.Fatalf("Encode(nil) = %s", raw)
	}
}
