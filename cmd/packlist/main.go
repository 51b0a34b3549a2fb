package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/idilsaglam/packlist/internal/cli"
	"github.com/idilsaglam/packlist/internal/config"
	"github.com/idilsaglam/packlist/internal/metrics"
	"github.com/idilsaglam/packlist/internal/ui"
)

var CLI struct {
	Config      string `short:"c" help:"Configuration file path" default:"packlist.yaml" type:"path"`
	Verbose     bool   `short:"v" help:"Enable verbose logging"`
	Theme       string `help:"Color theme (classic, neon, mono); overrides the config file"`
	NoColor     bool   `help:"Disable colored output"`
	MetricsAddr string `help:"Serve Prometheus metrics on this address while running (e.g. :9090)"`

	TUI struct{} `cmd:"" name:"tui" default:"1" help:"Open the interactive checklist (default)"`

	History struct {
		Query string `arg:"" optional:"" help:"Fuzzy filter on item names"`
	} `cmd:"" help:"Show the saved packed history"`

	Reset struct{} `cmd:"" help:"Clear the saved packed history"`

	Seed struct{} `cmd:"" help:"Show the list the checklist starts from"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Write an example configuration file"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("packlist"),
		kong.Description("Track packed travel items and their weight against a limit."),
		kong.UsageOnError(),
	)

	code := run(kctx.Command())
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}

// run executes command and returns the process exit code.
func run(command string) int {
	if command == "init" {
		return cli.Init(CLI.Config, CLI.Init.Force)
	}

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		ui.Fail("config: " + err.Error())
		return 2
	}

	theme := cfg.UI.Theme
	if CLI.Theme != "" {
		theme = CLI.Theme
	}
	ui.SetTheme(theme)
	if CLI.NoColor {
		ui.DisableColor()
	}

	// The TUI owns the terminal, so its logs go to a file.
	var logOut io.Writer = os.Stderr
	if command == "tui" {
		f, err := openLogFile(cfg.Logging.File)
		if err != nil {
			ui.Fail("log file: " + err.Error())
			return 1
		}
		defer f.Close()
		logOut = f
	}
	logger := config.NewLogger(cfg.Logging, logOut, CLI.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opt := cli.Options{Config: cfg, Logger: logger}

	addr := CLI.MetricsAddr
	if addr == "" {
		addr = cfg.Metrics.Addr
	}
	if addr != "" {
		rec := metrics.NewPrometheusRecorder(prom.NewRegistry())
		_, stop, err := cli.ServeMetrics(addr, rec, logger)
		if err != nil {
			ui.Fail("metrics: " + err.Error())
			return 1
		}
		defer stop()
		opt.Recorder = rec
	}

	switch command {
	case "tui":
		return cli.RunTUI(ctx, opt)
	case "history", "history <query>":
		return cli.History(ctx, opt, CLI.History.Query)
	case "reset":
		return cli.Reset(ctx, opt)
	case "seed":
		return cli.Seed(opt)
	}
	ui.Fail("unknown command: " + command)
	return 2
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return f, nil
}
