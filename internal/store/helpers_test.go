package store_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/store"
)

// memBackend is an in-memory Backend that records commits and can be told
// to fail the next one.
type memBackend struct {
	rows     map[uuid.UUID]model.Item
	commits  []store.Changeset
	failNext error
	closed   bool
}

func newMemBackend(seed ...model.Item) *memBackend {
	b := &memBackend{rows: make(map[uuid.UUID]model.Item)}
	for _, it := range seed {
		b.rows[it.ID] = it
	}
	return b
}

func (b *memBackend) Load(context.Context) ([]model.Item, error) {
	out := make([]model.Item, 0, len(b.rows))
	for _, it := range b.rows {
		out = append(out, it)
	}
	slices.SortFunc(out, model.Compare)
	return out, nil
}

func (b *memBackend) Commit(_ context.Context, cs store.Changeset) error {
	if b.failNext != nil {
		err := b.failNext
		b.failNext = nil
		return err
	}
	b.commits = append(b.commits, cs)
	for _, it := range cs.Upserts {
		b.rows[it.ID] = it
	}
	for _, id := range cs.Deletes {
		delete(b.rows, id)
	}
	return nil
}

func (b *memBackend) Close() error {
	b.closed = true
	return nil
}

var errDiskFull = errors.New("disk full")

// tickClock returns a clock that advances one second per call.
func tickClock() func() time.Time {
	t := time.Date(2022, 1, 25, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestStore(t *testing.T, b *memBackend) *store.Store {
	t.Helper()
	s, err := store.New(context.Background(), b, store.WithClock(tickClock()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func names(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}
