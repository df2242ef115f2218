// Package store owns the checklist: the in-memory working set the UI reads
// from, the commands that mutate it, and the deferred flush to a Backend.
//
// Mutations are visible through Items immediately and reach durable storage
// only when Save is called. No locking; a Store is driven from one goroutine
// (the UI loop or a single CLI command).
package store

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/idilsaglam/checklist/internal/model"
)

// Store mediates between UI commands and the durable collection of items.
type Store struct {
	backend Backend
	now     func() time.Time
	newID   func() uuid.UUID
	logger  *log.Logger

	items []model.Item // sorted by model.Less

	// pending work since the last successful Save
	dirty   map[uuid.UUID]struct{} // upsert on next Save
	fresh   map[uuid.UUID]struct{} // created since last Save, not yet durable
	removed map[uuid.UUID]struct{} // durable items to delete on next Save

	subs    []subscriber
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the creation-time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs overrides the id generator.
func WithIDs(newID func() uuid.UUID) Option {
	return func(s *Store) { s.newID = newID }
}

// WithLogger sets the logger used for commit and reload diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New builds a Store over backend and loads the current durable collection.
func New(ctx context.Context, backend Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		now:     time.Now,
		newID:   func() uuid.UUID { return uuid.Must(uuid.NewV7()) },
		logger:  log.New(io.Discard),
	}
	for _, o := range opts {
		o(s)
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the backend. Unsaved changes are dropped; call Save first.
func (s *Store) Close() error {
	if s.HasChanges() {
		s.logger.Warn("closing with unsaved changes", "pending", s.pendingCount())
	}
	return s.backend.Close()
}

// Reload discards the in-memory state and reads the backend again.
func (s *Store) Reload(ctx context.Context) error {
	items, err := s.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	slices.SortFunc(items, model.Compare)
	s.items = items
	s.resetPending()
	s.logger.Debug("loaded items", "count", len(items))
	s.emit(Event{Kind: Reloaded})
	return nil
}

// Items returns a copy of the collection in display order.
func (s *Store) Items() []model.Item {
	return slices.Clone(s.items)
}

// Len returns the number of live items.
func (s *Store) Len() int { return len(s.items) }

// Get returns the item with the given id.
func (s *Store) Get(id uuid.UUID) (model.Item, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Item{}, false
	}
	return s.items[i], true
}

// At returns the item at position pos of the display order.
func (s *Store) At(pos int) (model.Item, bool) {
	if pos < 0 || pos >= len(s.items) {
		return model.Item{}, false
	}
	return s.items[pos], true
}

// Create adds a new unchecked item named name. The name is stored exactly
// as given: any name is accepted, including the empty string and
// duplicates, and callers that want trimmed names trim them first.
func (s *Store) Create(name string) model.Item {
	it := model.Item{
		ID:        s.newID(),
		Name:      name,
		IsChecked: false,
		Timestamp: s.now().UTC(),
	}
	pos, _ := slices.BinarySearchFunc(s.items, it, model.Compare)
	s.items = slices.Insert(s.items, pos, it)
	s.dirty[it.ID] = struct{}{}
	s.fresh[it.ID] = struct{}{}
	s.emit(Event{Kind: Created, Item: it})
	return it
}

// Rename sets the name of the item with the given id, verbatim. It reports
// false and changes nothing when no such item exists.
func (s *Store) Rename(id uuid.UUID, name string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.items[i].Name = name
	s.dirty[id] = struct{}{}
	s.emit(Event{Kind: Renamed, Item: s.items[i]})
	return true
}

// ToggleChecked flips the checked flag of the item with the given id.
// It reports false when no such item exists.
func (s *Store) ToggleChecked(id uuid.UUID) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.items[i].IsChecked = !s.items[i].IsChecked
	s.dirty[id] = struct{}{}
	s.emit(Event{Kind: Toggled, Item: s.items[i]})
	return true
}

// Delete removes the item at the first of positions, counted in the current
// display order. An empty position set or an out-of-range position is a
// no-op and reports false. Further positions are ignored.
func (s *Store) Delete(positions ...int) bool {
	if len(positions) == 0 {
		return false
	}
	it, ok := s.At(positions[0])
	if !ok {
		return false
	}
	return s.DeleteID(it.ID)
}

// DeleteID removes the item with the given id. It reports false when no
// such item exists.
func (s *Store) DeleteID(id uuid.UUID) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	it := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	delete(s.dirty, id)
	if _, ok := s.fresh[id]; ok {
		// never reached the backend; nothing to delete there
		delete(s.fresh, id)
	} else {
		s.removed[id] = struct{}{}
	}
	s.emit(Event{Kind: Deleted, Item: it})
	return true
}

// HasChanges reports whether there are mutations not yet saved.
func (s *Store) HasChanges() bool {
	return len(s.dirty) > 0 || len(s.removed) > 0
}

// Save flushes every pending mutation to the backend as one unit.
// It is a no-op when nothing changed. On failure the returned error matches
// ErrCommitFailed and the pending state is kept for a retry.
func (s *Store) Save(ctx context.Context) error {
	cs := s.changeset()
	if cs.Empty() {
		return nil
	}
	if err := s.backend.Commit(ctx, cs); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}
	s.logger.Debug("committed", "upserts", len(cs.Upserts), "deletes", len(cs.Deletes))
	s.resetPending()
	s.emit(Event{Kind: Saved})
	return nil
}

// changeset snapshots the pending work. Upserts follow display order and
// deletes are sorted, so backends see a deterministic sequence.
func (s *Store) changeset() Changeset {
	var cs Changeset
	for _, it := range s.items {
		if _, ok := s.dirty[it.ID]; ok {
			cs.Upserts = append(cs.Upserts, it)
		}
	}
	for id := range s.removed {
		cs.Deletes = append(cs.Deletes, id)
	}
	slices.SortFunc(cs.Deletes, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})
	return cs
}

func (s *Store) resetPending() {
	s.dirty = make(map[uuid.UUID]struct{})
	s.fresh = make(map[uuid.UUID]struct{})
	s.removed = make(map[uuid.UUID]struct{})
}

func (s *Store) pendingCount() int {
	return len(s.dirty) + len(s.removed)
}

func (s *Store) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.items, func(it model.Item) bool { return it.ID == id })
}
