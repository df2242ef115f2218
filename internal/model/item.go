package model

import (
	"time"

	"github.com/google/uuid"
)

// Item is the domain model for a checklist entry.
// ID and Timestamp are fixed at creation; Name and IsChecked change in place.
type Item struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	IsChecked bool      `json:"is_checked" yaml:"is_checked"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Less reports whether a sorts before b: creation time ascending, ties on id.
func Less(a, b Item) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.ID.String() < b.ID.String()
}

// Compare is the three-way form of Less, for slices.SortFunc and friends.
func Compare(a, b Item) int {
	switch {
	case Less(a, b):
		return -1
	case Less(b, a):
		return 1
	default:
		return 0
	}
}

// Stats counts checked and unchecked items.
func Stats(items []Item) (checked, pending int) {
	for _, it := range items {
		if it.IsChecked {
			checked++
		} else {
			pending++
		}
	}
	return
}
