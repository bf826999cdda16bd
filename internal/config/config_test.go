package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/stepquiz/internal/domain"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	flags := Flags()
	require.NoError(t, flags.Parse(args))
	return Load(flags)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, Defaults(), *cfg)
	assert.Equal(t, domain.DefaultSubjects, cfg.SubjectCatalog())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Layers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stepquiz.yaml")
	yaml := `
server:
  addr: ":9000"
  shutdown_timeout: 3s
db: from-file.db
content:
  repo: https://github.com/example/usmle.git
stats:
  heatmap_weeks: 12
subjects:
  - key: cvs
    folder: CVS 23
    name_en: Cardiology
    name_zh: 心脏病学
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	t.Setenv("STEPQUIZ_DB", "from-env.db")
	t.Setenv("STEPQUIZ_LOG_LEVEL", "debug")
	t.Setenv("STEPQUIZ_STATS_HEATMAP__WEEKS", "8")

	cfg, err := load(t, "--config", path, "--server.addr", ":7000")
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "from-env.db", cfg.DB)
	assert.Equal(t, "https://github.com/example/usmle.git", cfg.Content.Repo)
	assert.Equal(t, "content", cfg.Content.Dir)
	assert.Equal(t, 8, cfg.Stats.HeatmapWeeks)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	require.Len(t, cfg.SubjectCatalog(), 1)
	assert.Equal(t, domain.Subject{Key: "cvs", FolderName: "CVS 23", NameEN: "Cardiology", NameZH: "心脏病学"}, cfg.SubjectCatalog()[0])
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "bad email", args: []string{"--user", "not-an-email"}},
		{name: "too many weeks", args: []string{"--stats.heatmap_weeks", "60"}},
		{name: "bad log level", args: []string{"--log.level", "loud"}},
		{name: "bad content url", args: []string{"--content.url", "::nope"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(t, tc.args...)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := load(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.addr", envKey("STEPQUIZ_SERVER_ADDR"))
	assert.Equal(t, "stats.heatmap_weeks", envKey("STEPQUIZ_STATS_HEATMAP__WEEKS"))
	assert.Equal(t, "db", envKey("STEPQUIZ_DB"))
}
