package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/idilsaglam/packlist/internal/checklist"
	"github.com/idilsaglam/packlist/internal/config"
	"github.com/idilsaglam/packlist/internal/metrics"
	"github.com/idilsaglam/packlist/internal/model"
	"github.com/idilsaglam/packlist/internal/store"
	"github.com/idilsaglam/packlist/internal/store/jsonstore"
	"github.com/idilsaglam/packlist/internal/store/sqlitestore"
	"github.com/idilsaglam/packlist/internal/tui"
	"github.com/idilsaglam/packlist/internal/ui"
)

// Options carry what every subcommand needs. Exit codes: 0 ok, 1 error, 2 usage.
type Options struct {
	Config   *config.Config
	Logger   *slog.Logger
	Recorder metrics.Recorder
	Out      io.Writer
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// OpenStore opens the configured key-value backend.
func OpenStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		if cfg.Storage.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
				return nil, fmt.Errorf("mkdir: %w", err)
			}
		}
		return sqlitestore.New(cfg.Storage.Path)
	case config.BackendJSON:
		return jsonstore.New(cfg.Storage.Path)
	}
	return nil, fmt.Errorf("unsupported storage backend: %q", cfg.Storage.Backend)
}

// NewManager builds a checklist manager from configuration.
func NewManager(s store.Store, opt Options) *checklist.Manager {
	cfg := opt.Config
	return checklist.New(s,
		checklist.WithSeed(cfg.SeedItems()),
		checklist.WithWeightLimit(cfg.Limit()),
		checklist.WithLoadTimeout(cfg.Checklist.LoadTimeout),
		checklist.WithRestorePacked(cfg.Checklist.RestorePacked),
		checklist.WithLogger(opt.logger()),
		checklist.WithRecorder(opt.Recorder),
	)
}

// -------------- subcommand impls ----------------

// RunTUI opens the interactive checklist.
func RunTUI(ctx context.Context, opt Options) int {
	s, err := OpenStore(opt.Config)
	if err != nil {
		ui.Fail("open store: " + err.Error())
		return 1
	}
	defer func() { _ = s.Close() }()

	mgr := NewManager(s, opt)
	if err := tui.Run(ctx, mgr, tui.Options{Unit: opt.Config.Checklist.Unit}); err != nil {
		ui.Fail("tui: " + err.Error())
		return 1
	}
	return 0
}

// History prints the stored packed snapshot, optionally fuzzy-filtered by name.
func History(ctx context.Context, opt Options, query string) int {
	s, err := OpenStore(opt.Config)
	if err != nil {
		ui.Fail("open store: " + err.Error())
		return 1
	}
	defer func() { _ = s.Close() }()

	ctx, cancel := context.WithTimeout(ctx, opt.Config.Checklist.LoadTimeout)
	defer cancel()
	snap, err := checklist.ReadSnapshot(ctx, s)
	if err != nil {
		ui.Fail("load: " + err.Error())
		return 1
	}

	shown := snap
	if query != "" {
		shown = filterSnapshot(snap, query)
	}

	t := ui.Current()
	unit, limit := opt.Config.Checklist.Unit, opt.Config.Limit()
	total := model.TotalWeight(snap)

	lines := []string{fmt.Sprintf("%s   %s %d", t.Title.Render("Packed History"), t.Success.Render(t.SymOK), len(snap))}
	if query != "" {
		lines = append(lines, t.Muted.Render(fmt.Sprintf("matching %q: %d", query, len(shown))))
	}
	lines = append(lines, "")
	lines = append(lines, snapshotLines(shown, unit)...)
	lines = append(lines, "")
	lines = append(lines, ui.Summary(total, limit, unit)...)
	lines = append(lines, ui.Gauge(total, limit, 28))
	fmt.Fprintln(opt.out(), ui.Panel(lines))
	return 0
}

// Reset overwrites the stored packed history with an empty snapshot.
func Reset(ctx context.Context, opt Options) int {
	s, err := OpenStore(opt.Config)
	if err != nil {
		ui.Fail("open store: " + err.Error())
		return 1
	}
	defer func() { _ = s.Close() }()

	mgr := NewManager(s, opt)
	task := mgr.ResetChecklist()
	if err := task.Wait(ctx); err != nil {
		ui.Fail("reset: " + err.Error())
		return 1
	}
	if err := task.Err(); err != nil {
		ui.Fail("save: " + err.Error())
		return 1
	}
	ui.OK("packed history cleared")
	return 0
}

// Seed prints the list the checklist starts from.
func Seed(opt Options) int {
	t := ui.Current()
	items := opt.Config.SeedItems()
	lines := []string{fmt.Sprintf("%s   %s %s", t.Title.Render("Seed"), t.Accent.Render("mode"), opt.Config.Checklist.Mode)}
	lines = append(lines, "")
	if len(items) == 0 {
		lines = append(lines, t.Muted.Render("no items (add them in the TUI with `a`)"))
	}
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s %s  %s",
			t.Muted.Render(fmt.Sprintf("%3d.", it.ID)), it.Name,
			t.Muted.Render(ui.Weight(it.Weight, opt.Config.Checklist.Unit))))
	}
	fmt.Fprintln(opt.out(), ui.Panel(lines))
	return 0
}

// Init writes an example configuration file.
func Init(path string, force bool) int {
	if err := config.Init(path, force); err != nil {
		ui.Fail("init: " + err.Error())
		return 1
	}
	ui.OK("wrote " + path)
	return 0
}

// ServeMetrics exposes rec on addr until the returned stop func is called.
// It returns the address actually bound.
func ServeMetrics(addr string, rec *metrics.PrometheusRecorder, logger *slog.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server stopped", "error", err)
		}
	}()
	logger.Info("Serving metrics", "addr", ln.Addr().String())

	return ln.Addr().String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

// -------------- rendering helpers --------------

type snapshotSource model.Snapshot

func (s snapshotSource) String(i int) string { return s[i].Name }
func (s snapshotSource) Len() int            { return len(s) }

func filterSnapshot(snap model.Snapshot, query string) model.Snapshot {
	matches := fuzzy.FindFrom(query, snapshotSource(snap))
	out := make(model.Snapshot, 0, len(matches))
	for _, m := range matches {
		out = append(out, snap[m.Index])
	}
	return out
}

func snapshotLines(snap model.Snapshot, unit string) []string {
	t := ui.Current()
	if len(snap) == 0 {
		return []string{t.Muted.Render("nothing packed")}
	}
	out := make([]string, 0, len(snap))
	for _, it := range snap {
		name := it.Name
		if len(name) > 60 {
			name = name[:57] + "..."
		}
		out = append(out, fmt.Sprintf("%s %s %s  %s",
			t.Muted.Render(fmt.Sprintf("%3d.", it.ID)), t.Success.Render(t.BoxChecked), name,
			t.Muted.Render(ui.Weight(it.Weight, unit))))
	}
	return out
}
