package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/idilsaglam/checklist/internal/model"
)

// Backend is the durable collection behind a Store.
//
// Load must return items ordered by timestamp ascending (ties on id).
// Commit applies a Changeset as one unit: either every upsert and delete
// lands or none does.
type Backend interface {
	Load(ctx context.Context) ([]model.Item, error)
	Commit(ctx context.Context, cs Changeset) error
	Close() error
}

// Changeset is the net set of pending mutations flushed by Save.
type Changeset struct {
	Upserts []model.Item
	Deletes []uuid.UUID
}

// Empty reports whether the changeset carries no work.
func (c Changeset) Empty() bool {
	return len(c.Upserts) == 0 && len(c.Deletes) == 0
}
