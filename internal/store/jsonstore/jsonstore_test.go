package jsonstore

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/store"
)

func openTemp(t *testing.T) *File {
	t.Helper()
	f, err := Open(filepath.Join(t.TempDir(), "data", FileName))
	require.NoError(t, err)
	return f
}

func item(name string, minute int) model.Item {
	return model.Item{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      name,
		Timestamp: time.Date(2022, 1, 25, 10, minute, 0, 0, time.UTC),
	}
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	f := openTemp(t)

	items, err := f.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, items)
	_, err = os.Stat(f.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestLoad_CorruptFile(t *testing.T) {
	f := openTemp(t)
	require.NoError(t, os.WriteFile(f.Path(), []byte("{not json"), 0o644))

	_, err := f.Load(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "json unmarshal")
}

func TestCommit_MergesChangeset(t *testing.T) {
	ctx := context.Background()
	f := openTemp(t)
	a, b, c := item("a", 3), item("b", 1), item("c", 2)
	require.NoError(t, f.Commit(ctx, store.Changeset{Upserts: []model.Item{a, b, c}}))

	renamed := c
	renamed.Name = "c2"
	renamed.IsChecked = true
	require.NoError(t, f.Commit(ctx, store.Changeset{
		Upserts: []model.Item{renamed},
		Deletes: []uuid.UUID{b.ID},
	}))

	got, err := f.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"c2", "a"}, []string{got[0].Name, got[1].Name})
	assert.True(t, got[0].IsChecked)
}

func TestCommit_LeavesNoTempFiles(t *testing.T) {
	f := openTemp(t)
	require.NoError(t, f.Commit(context.Background(), store.Changeset{Upserts: []model.Item{item("a", 1)}}))

	entries, err := os.ReadDir(filepath.Dir(f.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, FileName, entries[0].Name())
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := openTemp(t)
	s, err := store.New(ctx, f)
	require.NoError(t, err)
	milk := s.Create("Milk")
	s.Create("Bread")
	s.ToggleChecked(milk.ID)
	require.NoError(t, s.Save(ctx))

	reloaded, err := store.New(ctx, f)
	require.NoError(t, err)

	got, want := reloaded.Items(), s.Items()
	require.Len(t, got, 2)
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].IsChecked, got[i].IsChecked)
		assert.True(t, want[i].Timestamp.Equal(got[i].Timestamp))
	}
}

func TestEncode_FieldNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, []model.Item{item("Milk", 0)}))

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "Milk", raw[0]["name"])
	assert.Equal(t, false, raw[0]["is_checked"])
	assert.Contains(t, raw[0], "id")
	assert.Contains(t, raw[0], "timestamp")
}

func TestEncode_NilIsEmptyArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}
