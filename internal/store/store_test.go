package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/store"
)

func TestCreate_Defaults(t *testing.T) {
	s := newTestStore(t, newMemBackend())

	it := s.Create("Milk")

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, it, items[0])
	assert.Equal(t, "Milk", items[0].Name)
	assert.False(t, items[0].IsChecked)
	assert.NotEqual(t, uuid.Nil, items[0].ID)
	assert.False(t, items[0].Timestamp.IsZero())
}

func TestCreate_AllowsEmptyAndDuplicateNames(t *testing.T) {
	s := newTestStore(t, newMemBackend())

	a := s.Create("")
	b := s.Create("Eggs")
	c := s.Create("Eggs")

	assert.Equal(t, []string{"", "Eggs", "Eggs"}, names(s.Items()))
	assert.NotEqual(t, b.ID, c.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCreate_KeepsNameVerbatim(t *testing.T) {
	s := newTestStore(t, newMemBackend())

	it := s.Create("  Milk ")
	assert.Equal(t, "  Milk ", it.Name)
	require.True(t, s.Rename(it.ID, "\tOat milk"))
	got, ok := s.Get(it.ID)
	require.True(t, ok)
	assert.Equal(t, "\tOat milk", got.Name)
}

func TestCreate_OrderedByTimestamp(t *testing.T) {
	// clock runs backwards: each new item is older than the last
	base := time.Date(2022, 1, 25, 12, 0, 0, 0, time.UTC)
	n := 0
	clock := func() time.Time {
		n++
		return base.Add(-time.Duration(n) * time.Minute)
	}
	s, err := store.New(context.Background(), newMemBackend(), store.WithClock(clock))
	require.NoError(t, err)

	s.Create("first")
	s.Create("second")
	s.Create("third")

	assert.Equal(t, []string{"third", "second", "first"}, names(s.Items()))
	items := s.Items()
	for i := 1; i < len(items); i++ {
		assert.True(t, model.Less(items[i-1], items[i]), "items out of order at %d", i)
	}
}

func TestCreate_SameTimestampKeepsIDOrder(t *testing.T) {
	fixed := time.Date(2022, 1, 25, 12, 0, 0, 0, time.UTC)
	s, err := store.New(context.Background(), newMemBackend(),
		store.WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		s.Create("x")
	}

	items := s.Items()
	for i := 1; i < len(items); i++ {
		assert.Less(t, items[i-1].ID.String(), items[i].ID.String())
	}
}

func TestRename_ChangesOnlyName(t *testing.T) {
	s := newTestStore(t, newMemBackend())
	s.Create("Milk")
	bread := s.Create("Bread")
	require.True(t, s.ToggleChecked(bread.ID))
	before, _ := s.Get(bread.ID)

	ok := s.Rename(bread.ID, "Bagel")

	require.True(t, ok)
	after, found := s.Get(bread.ID)
	require.True(t, found)
	assert.Equal(t, "Bagel", after.Name)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.Timestamp, after.Timestamp)
	assert.Equal(t, before.IsChecked, after.IsChecked)
	assert.Equal(t, []string{"Milk", "Bagel"}, names(s.Items()))
}

func TestRename_MissingIDIsNoop(t *testing.T) {
	s := newTestStore(t, newMemBackend())
	s.Create("Milk")
	before := s.Items()

	ok := s.Rename(uuid.New(), "Ghost")

	assert.False(t, ok)
	assert.Equal(t, before, s.Items())
}

func TestToggleChecked_Involution(t *testing.T) {
	s := newTestStore(t, newMemBackend())
	it := s.Create("Milk")

	require.True(t, s.ToggleChecked(it.ID))
	got, _ := s.Get(it.ID)
	assert.True(t, got.IsChecked)

	require.True(t, s.ToggleChecked(it.ID))
	got, _ = s.Get(it.ID)
	assert.False(t, got.IsChecked)
}

func TestToggleChecked_MissingID(t *testing.T) {
	s := newTestStore(t, newMemBackend())
	s.Create("Milk")
	before := s.Items()

	assert.False(t, s.ToggleChecked(uuid.New()))
	assert.Equal(t, before, s.Items())
}

func TestDelete_Position(t *testing.T) {
	s := newTestStore(t, newMemBackend())
	s.Create("a")
	b := s.Create("b")
	s.Create("c")

	require.True(t, s.Delete(1))

	assert.Equal(t, []string{"a", "c"}, names(s.Items()))
	_, found := s.Get(b.ID)
	assert.False(t, found)
}

func TestDelete_OnlyFirstPositionHonoured(t *testing.T) {
	s := newTestStore(t, newMemBackend())
	s.Create("a")
	s.Create("b")
	s.Create("c")

	require.True(t, s.Delete(2, 0))

	assert.Equal(t, []string{"a", "b"}, names(s.Items()))
}

func TestDelete_EmptyOrOutOfRangeIsNoop(t *testing.T) {
	s := newTestStore(t, newMemBackend())
	s.Create("a")
	s.Create("b")
	before := s.Items()

	assert.False(t, s.Delete())
	assert.False(t, s.Delete(-1))
	assert.False(t, s.Delete(2))
	assert.False(t, s.DeleteID(uuid.New()))
	assert.Equal(t, before, s.Items())
}

func TestSave_RoundTrip(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	s := newTestStore(t, b)
	milk := s.Create("Milk")
	s.Create("Bread")
	eggs := s.Create("Eggs")
	s.ToggleChecked(milk.ID)
	s.Rename(eggs.ID, "Free-range eggs")
	s.Delete(1)

	require.NoError(t, s.Save(ctx))
	assert.False(t, s.HasChanges())

	fresh, err := store.New(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, s.Items(), fresh.Items())
}

func TestSave_NoChangesSkipsBackend(t *testing.T) {
	b := newMemBackend()
	s := newTestStore(t, b)

	require.NoError(t, s.Save(context.Background()))
	assert.Empty(t, b.commits)
}

func TestSave_CreateThenDeleteWritesNothing(t *testing.T) {
	b := newMemBackend()
	s := newTestStore(t, b)
	it := s.Create("temp")
	require.True(t, s.DeleteID(it.ID))

	assert.False(t, s.HasChanges())
	require.NoError(t, s.Save(context.Background()))
	assert.Empty(t, b.commits)
}

func TestSave_DeleteOfDurableItem(t *testing.T) {
	ctx := context.Background()
	seed := model.Item{ID: uuid.New(), Name: "old", Timestamp: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := newMemBackend(seed)
	s := newTestStore(t, b)

	require.True(t, s.Delete(0))
	require.NoError(t, s.Save(ctx))

	require.Len(t, b.commits, 1)
	assert.Equal(t, []uuid.UUID{seed.ID}, b.commits[0].Deletes)
	assert.Empty(t, b.commits[0].Upserts)
	assert.Empty(t, b.rows)
}

func TestSave_CommitFailure(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	s := newTestStore(t, b)
	s.Create("Milk")
	b.failNext = errDiskFull

	err := s.Save(ctx)

	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrCommitFailed))
	assert.True(t, errors.Is(err, errDiskFull))
	assert.Contains(t, err.Error(), "disk full")
	// in-memory state survives and a retry succeeds
	assert.True(t, s.HasChanges())
	assert.Equal(t, []string{"Milk"}, names(s.Items()))

	require.NoError(t, s.Save(ctx))
	assert.False(t, s.HasChanges())
	assert.Len(t, b.rows, 1)
}

func TestReload_DropsPending(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	s := newTestStore(t, b)
	s.Create("kept")
	require.NoError(t, s.Save(ctx))
	s.Create("dropped")

	require.NoError(t, s.Reload(ctx))

	assert.Equal(t, []string{"kept"}, names(s.Items()))
	assert.False(t, s.HasChanges())
}

func TestItems_ReturnsCopy(t *testing.T) {
	s := newTestStore(t, newMemBackend())
	s.Create("Milk")

	items := s.Items()
	items[0].Name = "changed"

	assert.Equal(t, []string{"Milk"}, names(s.Items()))
}

func TestClose_ClosesBackend(t *testing.T) {
	b := newMemBackend()
	s, err := store.New(context.Background(), b)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.True(t, b.closed)
}

// Milk/Bread scenario end to end.
func TestScenario_MilkBreadBagel(t *testing.T) {
	s := newTestStore(t, newMemBackend())

	milk := s.Create("Milk")
	bread := s.Create("Bread")
	assert.Equal(t, []string{"Milk", "Bread"}, names(s.Items()))

	s.ToggleChecked(milk.ID)
	items := s.Items()
	assert.True(t, items[0].IsChecked)
	assert.False(t, items[1].IsChecked)

	s.Delete(0)
	assert.Equal(t, []string{"Bread"}, names(s.Items()))

	s.Rename(bread.ID, "Bagel")
	assert.Equal(t, []string{"Bagel"}, names(s.Items()))
}
