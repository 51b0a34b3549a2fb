package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/packlist/internal/checklist"
	"github.com/idilsaglam/packlist/internal/model"
	"github.com/idilsaglam/packlist/internal/ui"
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct {
	model.Item
}

func (i listItem) Title() string       { return i.Name }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.Name }

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeWeight
	modeLimit
)

// Options tune the interactive checklist.
type Options struct {
	Title string
	Unit  string
}

type keyMap struct {
	toggle, weight, add, remove, reset, limit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pack")),
		weight: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "weight")),
		add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		remove: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove")),
		reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		limit:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "limit")),
	}
}

func (k keyMap) bindings() []key.Binding {
	return []key.Binding{k.toggle, k.weight, k.add, k.remove, k.reset, k.limit}
}

// loadedMsg arrives once the stored packed history has been read.
type loadedMsg struct{}

// savedMsg arrives when a persistence task finishes. Storage errors are
// logged by the manager and not shown.
type savedMsg struct{ id string }

// Model is the Bubble Tea model driving a checklist.Manager.
type Model struct {
	mgr  *checklist.Manager
	opt  Options
	keys keyMap
	list list.Model
	ti   textinput.Model

	mode     mode
	editID   int64  // item whose weight is being edited
	inputErr string // last add validation error (shown briefly)
	loading  *checklist.Task

	width, height int
}

// Custom delegate to control how items render (single line)
type itemDelegate struct {
	unit string
}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()

	box := t.Muted.Render(t.BoxUnchecked)
	name := it.Name
	if it.Packed {
		box = t.Success.Render(t.BoxChecked)
		name = t.Packed.Render(name)
	}
	weight := t.Muted.Render(fmt.Sprintf("[%s]%s", it.WeightInput, d.unit))

	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s  %s", prefix, box, name, weight)
}

// New builds the model. loading is the task returned by Initialize; the
// list is refreshed when it completes.
func New(mgr *checklist.Manager, loading *checklist.Task, opt Options) Model {
	if opt.Title == "" {
		opt.Title = "Packing List"
	}
	keys := newKeyMap()

	l := list.New(nil, itemDelegate{unit: opt.Unit}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = ui.Current().Title
	l.Styles.HelpStyle = ui.Current().Muted
	l.Styles.PaginationStyle = ui.Current().Muted
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")
	l.AdditionalShortHelpKeys = keys.bindings
	l.AdditionalFullHelpKeys = keys.bindings

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := Model{mgr: mgr, opt: opt, keys: keys, list: l, ti: ti, loading: loading, width: 80, height: 24}
	m.refresh()
	m.resize()
	return m
}

// Run starts the Bubble Tea program and waits for pending writes on exit.
func Run(ctx context.Context, mgr *checklist.Manager, opt Options) error {
	loading := mgr.Initialize(ctx)
	p := tea.NewProgram(New(mgr, loading, opt), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if ferr := mgr.Flush(flushCtx); ferr != nil && err == nil {
		err = fmt.Errorf("flush: %w", ferr)
	}
	return err
}

func (m Model) Init() tea.Cmd {
	if m.loading == nil {
		return nil
	}
	task := m.loading
	return func() tea.Msg {
		<-task.Done()
		return loadedMsg{}
	}
}

// waitSaved turns a persistence task into a command.
func waitSaved(task *checklist.Task) tea.Cmd {
	return func() tea.Msg {
		<-task.Done()
		return savedMsg{id: task.ID}
	}
}

// refresh rebuilds the list from the manager, keeping the cursor in range.
func (m *Model) refresh() tea.Cmd {
	items := m.mgr.Items()
	li := make([]list.Item, 0, len(items))
	for _, it := range items {
		li = append(li, listItem{it})
	}
	idx := m.list.Index()
	cmd := m.list.SetItems(li)
	if idx >= len(li) {
		idx = len(li) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
	m.list.Title = m.header(items)
	return cmd
}

func (m Model) header(items []model.Item) string {
	t := ui.Current()
	packed := len(model.PackedOnly(items))
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render(m.opt.Title),
		t.Success.Render(t.SymOK), packed,
		t.Pending.Render("•"), len(items)-packed,
		t.Accent.Render("Total"), len(items),
	)
}

func (m Model) selected() (listItem, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it, ok
}

func (m *Model) startInput(md mode, value, placeholder string) {
	m.mode = md
	m.inputErr = ""
	m.ti.SetValue(value)
	m.ti.CursorEnd()
	m.ti.Placeholder = placeholder
	m.ti.Focus()
}

func (m *Model) stopInput() {
	m.mode = modeBrowse
	m.ti.SetValue("")
	m.ti.Blur()
}

// Update and View implement Bubble Tea's Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	m.resize()
	return m, cmd
}

// resize fits the list between the header and the footer; the input box
// and the overweight banner take rows from it.
func (m *Model) resize() {
	h := m.height - 6
	if m.mode != modeBrowse {
		h -= 3
	}
	if m.mgr.IsOverweight() {
		h--
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case loadedMsg:
		return m, m.refresh()
	case savedMsg:
		return m, nil
	}

	if m.mode != modeBrowse {
		return m.updateInput(msg)
	}

	km, isKey := msg.(tea.KeyMsg)
	if !isKey || m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case km.String() == "q" || km.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(km, m.keys.toggle):
		if it, ok := m.selected(); ok {
			task := m.mgr.TogglePacked(it.ID)
			return m, tea.Batch(m.refresh(), waitSaved(task))
		}
		return m, nil
	case key.Matches(km, m.keys.remove):
		if it, ok := m.selected(); ok {
			task := m.mgr.RemoveItem(it.ID)
			return m, tea.Batch(m.refresh(), waitSaved(task))
		}
		return m, nil
	case key.Matches(km, m.keys.reset):
		task := m.mgr.ResetChecklist()
		return m, tea.Batch(m.refresh(), waitSaved(task))
	case key.Matches(km, m.keys.weight):
		if it, ok := m.selected(); ok {
			m.editID = it.ID
			m.startInput(modeWeight, it.WeightInput, "Weight...")
		}
		return m, nil
	case key.Matches(km, m.keys.add):
		m.startInput(modeAdd, "", "New item name...")
		return m, nil
	case key.Matches(km, m.keys.limit):
		m.startInput(modeLimit, m.mgr.LimitInput(), "Weight limit...")
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// updateInput handles the add / weight / limit text field. Weight and
// limit edits apply on every keystroke, the way a form field would.
func (m Model) updateInput(msg tea.Msg) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			if m.mode == modeAdd {
				if _, added := m.mgr.AddItem(m.ti.Value()); !added {
					m.inputErr = "Name cannot be empty"
					return m, nil
				}
				m.stopInput()
				cmd := m.refresh()
				m.list.Select(len(m.list.Items()) - 1)
				return m, cmd
			}
			m.stopInput()
			return m, nil
		case "esc":
			m.stopInput()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	switch m.mode {
	case modeWeight:
		m.mgr.UpdateWeight(m.editID, m.ti.Value())
		return m, tea.Batch(cmd, m.refresh())
	case modeLimit:
		m.mgr.SetWeightLimit(m.ti.Value())
	}
	return m, cmd
}

func (m Model) View() string {
	t := ui.Current()
	content := m.list.View()
	if m.mode != modeBrowse {
		bar := lipgloss.NewStyle().Border(t.Border).BorderForeground(t.BorderColor).Padding(0, 1)
		title := map[mode]string{modeAdd: "Add item", modeWeight: "Edit weight", modeLimit: "Weight limit"}[m.mode]
		if m.inputErr != "" {
			title += " - " + t.Error.Render(m.inputErr)
		}
		content += "\n" + bar.Render(title+"\n"+m.ti.View())
	}

	total, limit := m.mgr.TotalPackedWeight(), m.mgr.WeightLimit()
	footer := ui.Summary(total, limit, m.opt.Unit)
	footer = append(footer, ui.Gauge(total, limit, 28))
	content += "\n" + strings.Join(footer, "\n")
	return ui.Panel([]string{content})
}
