package store

import "github.com/idilsaglam/checklist/internal/model"

// EventKind says what happened to the collection.
type EventKind int

const (
	Created EventKind = iota + 1
	Renamed
	Toggled
	Deleted
	Saved
	Reloaded
)

func (k EventKind) String() string {
	switch k {
	case Created:
		return "created"
	case Renamed:
		return "renamed"
	case Toggled:
		return "toggled"
	case Deleted:
		return "deleted"
	case Saved:
		return "saved"
	case Reloaded:
		return "reloaded"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after each successful mutation.
// Item holds the state after the change (before it, for Deleted) and is
// zero for Saved and Reloaded.
type Event struct {
	Kind EventKind
	Item model.Item
}

type subscriber struct {
	id int
	fn func(Event)
}

// Subscribe registers fn to be called synchronously after every mutation.
// The returned cancel func removes it; calling it twice is harmless.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) emit(ev Event) {
	// copy so a subscriber may cancel itself mid-dispatch
	subs := append([]subscriber(nil), s.subs...)
	for _, sub := range subs {
		sub.fn(ev)
	}
}
