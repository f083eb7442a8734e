// Package events carries change notifications from the services to whatever
// renders them. Handlers run synchronously on the publishing goroutine.
package events

import (
	"sync"
	"time"
)

type Category string

const (
	ClanChanged       Category = "clan-changed"
	TournamentChanged Category = "tournament-changed"
	ProfileChanged    Category = "profile-changed"
	LiveNotification  Category = "live-notification"
	ChatMessage       Category = "chat-message"
	Activity          Category = "activity"
	VoiceChanged      Category = "voice-channels"
)

// Categories lists every category in a stable order.
var Categories = []Category{
	ClanChanged,
	TournamentChanged,
	ProfileChanged,
	LiveNotification,
	ChatMessage,
	Activity,
	VoiceChanged,
}

// Event is one notification. Kind names the entity collection ("clan",
// "registration", ...) and ID the mutated entity; Payload is optional.
type Event struct {
	Category Category    `json:"category"`
	Kind     string      `json:"kind,omitempty"`
	ID       string      `json:"id,omitempty"`
	Payload  interface{} `json:"payload,omitempty"`
	At       time.Time   `json:"at"`
}

type Handler func(Event)

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus is an in-process publish/subscribe hub keyed by category.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Category][]subscriber
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Category][]subscriber)}
}

// Subscription removes its handler when Unsubscribe is called. Calling it
// more than once is a no-op.
type Subscription struct {
	bus      *Bus
	category Category
	id       uint64
	once     sync.Once
}

func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}
	s.once.Do(func() { s.bus.remove(s.category, s.id) })
}

func (b *Bus) Subscribe(category Category, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[category] = append(b.subs[category], subscriber{id: id, handler: h})
	return &Subscription{bus: b, category: category, id: id}
}

// SubscribeAll registers h for every known category.
func (b *Bus) SubscribeAll(h Handler) []*Subscription {
	subs := make([]*Subscription, 0, len(Categories))
	for _, c := range Categories {
		subs = append(subs, b.Subscribe(c, h))
	}
	return subs
}

func (b *Bus) remove(category Category, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[category]
	for i, s := range list {
		if s.id == id {
			b.subs[category] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Publish delivers e to the current subscribers of e.Category in the order
// they subscribed. A handler may subscribe or unsubscribe without deadlocking;
// such changes take effect from the next Publish.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	b.mu.RLock()
	handlers := make([]Handler, len(b.subs[e.Category]))
	for i, s := range b.subs[e.Category] {
		handlers[i] = s.handler
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

// Len reports the number of subscribers for a category.
func (b *Bus) Len(category Category) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[category])
}
