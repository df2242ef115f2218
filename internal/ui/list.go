package ui

import (
	"fmt"

	"github.com/idilsaglam/checklist/internal/model"
)

const maxNameWidth = 80

// ListLines builds the body of the `ls` panel: header with counts, progress
// bar, the items (flat or grouped by state) and a usage tip.
// Positions shown are 1-based and always refer to the flat display order.
func ListLines(items []model.Item, group bool) []string {
	t := Current()
	checked, pending := model.Stats(items)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		C(t.Title, "Checklist"),
		C(t.Success, t.SymDone), checked,
		C(t.Pending, t.SymUnchecked), pending,
		C(t.Accent, "Total"), len(items),
	)

	lines := []string{
		header,
		C(t.Muted, ProgressBar(checked, checked+pending, 28)),
		"",
	}
	if group {
		lines = append(lines, groupLines(items)...)
	} else {
		lines = append(lines, flatLines(items, allPositions(items))...)
	}
	lines = append(lines, "", C(t.Muted, "Tip: add with `checklist add \"Buy milk\"`"))
	return lines
}

func allPositions(items []model.Item) []int {
	pos := make([]int, len(items))
	for i := range pos {
		pos[i] = i + 1
	}
	return pos
}

func flatLines(items []model.Item, positions []int) []string {
	t := Current()
	if len(items) == 0 {
		return []string{C(t.Muted, "no items")}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		idx := fmt.Sprintf("%2d.", positions[i])
		box, color := t.BoxUnchecked, t.Muted
		if it.IsChecked {
			box, color = t.BoxChecked, t.Success
		}
		out = append(out, fmt.Sprintf("%s %s %s", Dim(idx), C(color, box), Truncate(it.Name, maxNameWidth)))
	}
	return out
}

func groupLines(items []model.Item) []string {
	t := Current()
	var pend, done []model.Item
	var pendPos, donePos []int
	for i, it := range items {
		if it.IsChecked {
			done = append(done, it)
			donePos = append(donePos, i+1)
		} else {
			pend = append(pend, it)
			pendPos = append(pendPos, i+1)
		}
	}
	var lines []string
	lines = append(lines, C(t.Accent, "Pending"))
	if len(pend) == 0 {
		lines = append(lines, C(t.Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(pend, pendPos)...)
	}
	lines = append(lines, "", C(t.Accent, "Done"))
	if len(done) == 0 {
		lines = append(lines, C(t.Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(done, donePos)...)
	}
	return lines
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
