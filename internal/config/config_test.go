package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "packlist.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PACKLIST_HOME", t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	require.Equal(t, BackendJSON, cfg.Storage.Backend)
	require.Equal(t, "packlist.json", filepath.Base(cfg.Storage.Path))
	require.Equal(t, ModeSeeded, cfg.Checklist.Mode)
	require.Len(t, cfg.SeedItems(), 5)
	require.Equal(t, 50.0, cfg.Limit())
	require.Equal(t, "lb", cfg.Checklist.Unit)
	require.Equal(t, 3*time.Second, cfg.Checklist.LoadTimeout)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "text", cfg.Logging.Format)
	require.Equal(t, "classic", cfg.UI.Theme)
}

func TestLoadDynamicSQLite(t *testing.T) {
	t.Setenv("PACKLIST_HOME", t.TempDir())
	p := writeConfig(t, `
storage:
  backend: SQLite
checklist:
  mode: dynamic
  weight_limit: 0
  unit: kg
  load_timeout: 250ms
logging:
  level: DEBUG
  format: json
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, BackendSQLite, cfg.Storage.Backend)
	require.Equal(t, "packlist.db", filepath.Base(cfg.Storage.Path))
	require.Equal(t, ModeDynamic, cfg.Checklist.Mode)
	require.Empty(t, cfg.SeedItems())
	require.Equal(t, 0.0, cfg.Limit())
	require.Equal(t, "kg", cfg.Checklist.Unit)
	require.Equal(t, 250*time.Millisecond, cfg.Checklist.LoadTimeout)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadExpandsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRIP_DATA", dir)
	p := writeConfig(t, `
storage:
  path: ${TRIP_DATA}/trip.json
checklist:
  seed:
    - {id: 10, name: Tent, weight: 4.5}
    - {id: 11, name: Stove}
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "trip.json"), cfg.Storage.Path)

	seed := cfg.SeedItems()
	require.Len(t, seed, 2)
	require.Equal(t, "Tent", seed[0].Name)
	require.Equal(t, 4.5, seed[0].Weight)
	require.Equal(t, int64(11), seed[1].ID)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("PACKLIST_HOME", t.TempDir())
	cases := map[string]string{
		"backend":  "storage:\n  backend: redis\n",
		"mode":     "checklist:\n  mode: weekly\n",
		"limit":    "checklist:\n  weight_limit: -5\n",
		"dup seed": "checklist:\n  seed:\n    - {id: 1, name: a}\n    - {id: 1, name: b}\n",
		"empty":    "checklist:\n  seed:\n    - {id: 1, name: \"\"}\n",
		"bad yaml": "storage: [\n",
		"neg seed": "checklist:\n  seed:\n    - {id: 1, name: a, weight: -1}\n",
		"bad dur":  "checklist:\n  load_timeout: soon\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
		})
	}
}

func TestInit(t *testing.T) {
	p := filepath.Join(t.TempDir(), "conf", "packlist.yaml")
	require.NoError(t, Init(p, false))
	require.Error(t, Init(p, false))
	require.NoError(t, Init(p, true))

	t.Setenv("PACKLIST_HOME", t.TempDir())
	cfg, err := Load(p)
	require.NoError(t, err)
	require.Len(t, cfg.SeedItems(), 5)
	require.False(t, cfg.Checklist.RestorePacked)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggingConfig{Level: "warn", Format: "json"}, &buf, false)
	logger.Info("hidden")
	logger.Warn("shown", "key", "packedHistory")
	out := buf.String()
	require.False(t, strings.Contains(out, "hidden"))
	require.Contains(t, out, `"key":"packedHistory"`)

	buf.Reset()
	logger = NewLogger(LoggingConfig{Level: "error"}, &buf, true)
	logger.Debug("verbose wins")
	require.Contains(t, buf.String(), "verbose wins")
}

func TestNormalize(t *testing.T) {
	require.Equal(t, LogLevelWarn, NormalizeLogLevel("Warning"))
	require.Equal(t, LogLevelInfo, NormalizeLogLevel("loud"))
	require.Equal(t, LogFormatText, NormalizeLogFormat("xml"))
}
