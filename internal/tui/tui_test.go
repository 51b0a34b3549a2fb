package tui

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/packlist/internal/checklist"
	"github.com/idilsaglam/packlist/internal/store/jsonstore"
	"github.com/idilsaglam/packlist/internal/ui"
)

func newTestModel(t *testing.T, seed bool) (Model, *checklist.Manager) {
	t.Helper()
	ui.DisableColor()
	s, err := jsonstore.New(filepath.Join(t.TempDir(), jsonstore.DataFileName))
	require.NoError(t, err)

	opts := []checklist.Option{checklist.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}
	if seed {
		opts = append(opts, checklist.WithSeed(checklist.DefaultSeed()))
	}
	mgr := checklist.New(s, opts...)
	loading := mgr.Initialize(context.Background())

	m := New(mgr, loading, Options{Unit: "lb"})
	require.IsType(t, loadedMsg{}, m.Init()())
	m = send(t, m, loadedMsg{})
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, mgr.Flush(ctx))
	})
	return m, mgr
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func typeText(t *testing.T, m Model, s string) Model {
	for _, r := range s {
		m = send(t, m, runes(string(r)))
	}
	return m
}

var (
	space     = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	enter     = tea.KeyMsg{Type: tea.KeyEnter}
	esc       = tea.KeyMsg{Type: tea.KeyEsc}
	backspace = tea.KeyMsg{Type: tea.KeyBackspace}
	down      = tea.KeyMsg{Type: tea.KeyDown}
)

func TestToggleAndWeight(t *testing.T) {
	m, mgr := newTestModel(t, true)
	require.Len(t, m.list.Items(), 5)

	m = send(t, m, runes("w"))
	require.Equal(t, modeWeight, m.mode)
	m = send(t, m, backspace)
	m = typeText(t, m, "10")
	m = send(t, m, enter)
	require.Equal(t, modeBrowse, m.mode)

	it, _ := mgr.Item(1)
	require.Equal(t, 10.0, it.Weight)
	require.Equal(t, "10", it.WeightInput)

	m = send(t, m, space)
	it, _ = mgr.Item(1)
	require.True(t, it.Packed)
	require.Equal(t, 10.0, mgr.TotalPackedWeight())
	require.Len(t, mgr.PackedHistory(), 1)

	m = send(t, m, down)
	m = send(t, m, runes("w"))
	m = send(t, m, backspace)
	m = typeText(t, m, "45")
	m = send(t, m, enter)
	m = send(t, m, space)

	require.Equal(t, 55.0, mgr.TotalPackedWeight())
	require.True(t, mgr.IsOverweight())
	require.Contains(t, m.View(), "Overweight Limit!")
	require.Contains(t, m.View(), "55.00lb")
}

func TestAddItem(t *testing.T) {
	m, mgr := newTestModel(t, false)
	require.Empty(t, m.list.Items())

	m = send(t, m, runes("a"))
	require.Equal(t, modeAdd, m.mode)
	m = send(t, m, enter)
	require.Equal(t, "Name cannot be empty", m.inputErr)
	require.Empty(t, mgr.Items())

	m = typeText(t, m, "Passport")
	m = send(t, m, enter)
	require.Equal(t, modeBrowse, m.mode)
	require.Empty(t, m.ti.Value())

	items := mgr.Items()
	require.Len(t, items, 1)
	require.Equal(t, "Passport", items[0].Name)
	require.Len(t, m.list.Items(), 1)
}

func TestEscCancelsAdd(t *testing.T) {
	m, mgr := newTestModel(t, false)
	m = send(t, m, runes("a"))
	m = typeText(t, m, "Hat")
	m = send(t, m, esc)
	require.Equal(t, modeBrowse, m.mode)
	require.Empty(t, mgr.Items())
}

func TestLimitEdit(t *testing.T) {
	m, mgr := newTestModel(t, true)

	m = send(t, m, runes("l"))
	require.Equal(t, "50", m.ti.Value())
	m = send(t, m, backspace)
	m = send(t, m, backspace)
	m = typeText(t, m, "5")
	require.Equal(t, 5.0, mgr.WeightLimit())

	m = send(t, m, backspace)
	m = typeText(t, m, "x")
	require.Equal(t, 50.0, mgr.WeightLimit())
	require.Equal(t, "x", mgr.LimitInput())
	m = send(t, m, enter)
	require.Equal(t, modeBrowse, m.mode)
}

func TestRemoveAndReset(t *testing.T) {
	m, mgr := newTestModel(t, true)

	m = send(t, m, space)
	m = send(t, m, runes("d"))
	require.Len(t, mgr.Items(), 4)
	require.Len(t, m.list.Items(), 4)
	require.Empty(t, mgr.PackedHistory())

	m = send(t, m, runes("r"))
	require.Len(t, mgr.Items(), 5)
	require.Len(t, m.list.Items(), 5)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, true)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestSavedMsgIsIgnored(t *testing.T) {
	m, mgr := newTestModel(t, true)
	task := mgr.TogglePacked(3)
	msg := waitSaved(task)()
	require.Equal(t, savedMsg{id: task.ID}, msg)
	m = send(t, m, msg)
	require.Equal(t, modeBrowse, m.mode)
}
