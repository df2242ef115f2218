// Package tui is the interactive checklist screen. It renders the store's
// sorted collection, turns key presses into store commands and flushes
// pending changes when the terminal loses focus, on a timer, on `s`, and
// on quit.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/store"
	"github.com/idilsaglam/checklist/internal/ui"
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct {
	model.Item
}

func (i listItem) Title() string {
	box := ui.Current().BoxUnchecked
	if i.IsChecked {
		box = ui.Current().BoxChecked
	}
	return fmt.Sprintf("%s %s", box, i.Name)
}

func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.Name }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()
	box := mutedStyle.Render(t.BoxUnchecked)
	text := it.Name
	if it.IsChecked {
		box = successStyle.Render(t.BoxChecked)
		text = doneStyle.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+box+" "+text)
}

type mode int

const (
	browsing mode = iota
	adding
	editing
)

// autosaveMsg fires every Options.Autosave while the program runs.
type autosaveMsg struct{}

// Options tune the screen.
type Options struct {
	// Autosave flushes pending changes on this interval; zero disables it.
	Autosave time.Duration
	Logger   *log.Logger
}

// Model is the Bubble Tea model for the checklist screen.
type Model struct {
	ctx      context.Context
	store    *store.Store
	logger   *log.Logger
	autosave time.Duration

	list list.Model
	ti   textinput.Model // shared text input (used for add & edit)
	mode mode
	// item being renamed; resolved by id so a reorder can't retarget it
	editID uuid.UUID

	status    string
	statusErr bool

	// stale is flipped by the store subscription and consumed by refresh.
	// Pointer so the flag survives Bubble Tea's value-copied models.
	stale *bool
	unsub func()
}

var (
	addBind    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind   = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	deleteBind = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	toggleBind = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "check"))
	saveBind   = key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save"))
)

// New builds the screen over s. Call Close when the program ends to drop
// the store subscription.
func New(ctx context.Context, s *store.Store, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")
	extra := func() []key.Binding {
		return []key.Binding{toggleBind, addBind, editBind, deleteBind, saveBind}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	stale := new(bool)
	m := Model{
		ctx:      ctx,
		store:    s,
		logger:   logger,
		autosave: opts.Autosave,
		list:     l,
		ti:       ti,
		stale:    stale,
	}
	m.unsub = s.Subscribe(func(store.Event) { *stale = true })
	*stale = true
	m.refresh()
	return m
}

// Close detaches the model from the store.
func (m Model) Close() {
	if m.unsub != nil {
		m.unsub()
	}
}

// Run starts the program in the alternate screen and blocks until quit.
// Pending changes are flushed on exit.
func Run(ctx context.Context, s *store.Store, opts Options) error {
	m := New(ctx, s, opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))
	_, runErr := p.Run()
	runErr = exitErr(ctx, runErr)

	// quit already flushed; this catches a program killed via ctx
	if s.HasChanges() {
		if err := s.Save(context.WithoutCancel(ctx)); err != nil {
			return errors.Join(runErr, err)
		}
	}
	return runErr
}

// exitErr drops the error of a program stopped by cancelling ctx. That is
// a normal shutdown; the caller still flushes pending changes.
func exitErr(ctx context.Context, err error) error {
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}

// Store returns the store the screen drives.
func (m Model) Store() *store.Store { return m.store }

// Status returns the current status line text and whether it is an error.
func (m Model) Status() (string, bool) { return m.status, m.statusErr }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.scheduleAutosave()
}

func (m Model) scheduleAutosave() tea.Cmd {
	if m.autosave <= 0 {
		return nil
	}
	return tea.Tick(m.autosave, func(time.Time) tea.Msg { return autosaveMsg{} })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	return m, tea.Batch(cmd, m.refresh())
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h := msg.Height - 4
		if m.mode != browsing {
			h -= 3
		}
		m.list.SetSize(msg.Width-4, max(h, 1))
		return m, nil
	case tea.BlurMsg:
		// terminal lost focus: the app is going inactive
		m.flush("focus lost")
		return m, nil
	case autosaveMsg:
		m.flush("autosave")
		return m, m.scheduleAutosave()
	}

	if m.mode != browsing {
		return m.updateInput(msg)
	}

	k, isKey := msg.(tea.KeyMsg)
	if !isKey || m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch k.String() {
	case "q", "esc", "ctrl+c":
		if m.list.FilterState() == list.FilterApplied && k.String() == "esc" {
			break // let the list clear its filter
		}
		m.flush("quit")
		return m, tea.Quit
	case " ":
		if it, ok := m.selected(); ok {
			m.store.ToggleChecked(it.ID)
		}
		return m, nil
	case "d":
		// list order mirrors the store, so the unfiltered index is the position
		if _, ok := m.selected(); ok {
			m.store.Delete(m.list.GlobalIndex())
		}
		return m, nil
	case "a":
		m.mode = adding
		m.ti.SetValue("")
		m.ti.Placeholder = "New item name..."
		m.setStatus("", false)
		return m, m.ti.Focus()
	case "e":
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = editing
		m.editID = it.ID
		m.ti.SetValue(it.Name)
		m.ti.CursorEnd()
		m.ti.Placeholder = "Item name..."
		m.setStatus("", false)
		return m, m.ti.Focus()
	case "s":
		if !m.store.HasChanges() {
			m.setStatus("nothing to save", false)
			return m, nil
		}
		m.flush("manual")
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// updateInput handles keys while the inline add/edit field is open.
func (m Model) updateInput(msg tea.Msg) (Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			name := strings.TrimSpace(m.ti.Value())
			var cmd tea.Cmd
			switch m.mode {
			case adding:
				it := m.store.Create(name)
				cmd = m.refresh()
				m.selectID(it.ID)
			case editing:
				if !m.store.Rename(m.editID, name) {
					m.setStatus("item no longer exists", false)
				}
			}
			m.closeInput()
			return m, cmd
		case "esc":
			m.closeInput()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.mode = browsing
	m.editID = uuid.Nil
	m.ti.SetValue("")
	m.ti.Blur()
}

// flush saves pending changes. A failed commit is logged and shown; the
// in-memory state stays and the next trigger retries.
func (m *Model) flush(reason string) {
	if !m.store.HasChanges() {
		return
	}
	if err := m.store.Save(m.ctx); err != nil {
		m.logger.Error("save failed", "reason", reason, "err", err)
		m.setStatus("save failed: "+err.Error(), true)
		return
	}
	m.logger.Debug("saved", "reason", reason)
	m.setStatus("saved", false)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m Model) selected() (listItem, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it, ok
}

// selectID moves the cursor onto id if it is visible and reports whether it was.
func (m *Model) selectID(id uuid.UUID) bool {
	for i, it := range m.list.VisibleItems() {
		if li, ok := it.(listItem); ok && li.ID == id {
			m.list.Select(i)
			return true
		}
	}
	return false
}

// refresh rebuilds the list from the store when a subscription marked it
// stale. The returned command delivers filter matches while the user is
// still typing a filter.
func (m *Model) refresh() tea.Cmd {
	if m.stale == nil || !*m.stale {
		return nil
	}
	*m.stale = false

	var keep uuid.UUID
	if it, ok := m.selected(); ok {
		keep = it.ID
	}
	idx := m.list.Index()

	items := m.store.Items()
	li := make([]list.Item, len(items))
	for i, it := range items {
		li[i] = listItem{Item: it}
	}
	cmd := m.list.SetItems(li)
	m.list.Title = header(items)

	switch m.list.FilterState() {
	case list.Filtering:
		return cmd
	case list.FilterApplied:
		// SetItems drops the matches; filter again now so the next key
		// still has a selection
		m.list.SetFilterText(m.list.FilterValue())
		cmd = nil
	}

	if keep != uuid.Nil && m.selectID(keep) {
		return cmd
	}
	// selected item is gone or filtered out; stay near where it was
	if n := len(m.list.VisibleItems()); n > 0 {
		m.list.Select(min(idx, n-1))
	}
	return cmd
}

func header(items []model.Item) string {
	checked, pending := model.Stats(items)
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Checklist"),
		successStyle.Render(ui.Current().SymDone), checked,
		pendingStyle.Render(ui.Current().SymUnchecked), pending,
		accentStyle.Render("Total"), len(items),
	)
}

// View implements tea.Model.
func (m Model) View() string {
	content := m.list.View()
	if m.mode != browsing {
		title := "Add new item"
		if m.mode == editing {
			title = "Edit item"
		}
		content += "\n" + frameStyle.Render(title+"\n"+m.ti.View())
	}
	if m.status != "" {
		st := mutedStyle
		if m.statusErr {
			st = errorStyle
		}
		content += "\n" + st.Render(m.status)
	}
	return frameStyle.Render(content)
}
