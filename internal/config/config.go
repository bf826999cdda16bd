package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/stepquiz/internal/domain"
)

// EnvPrefix is the prefix of environment overrides, e.g. STEPQUIZ_SERVER_ADDR.
const EnvPrefix = "STEPQUIZ_"

type Config struct {
	Server  ServerConfig     `koanf:"server"`
	DB      string           `koanf:"db" validate:"required"`
	User    string           `koanf:"user" validate:"required,email"`
	Content ContentConfig    `koanf:"content"`
	Stats   StatsConfig      `koanf:"stats"`
	Log     LogConfig        `koanf:"log"`
	Sync    bool             `koanf:"sync"`
	// Subjects overrides the built-in subject catalog when non-empty.
	Subjects []domain.Subject `koanf:"subjects" validate:"dive"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type ContentConfig struct {
	// Dir is a local checkout of the content repository.
	Dir string `koanf:"dir"`
	// Repo, when set, is cloned or pulled into Dir by a sync.
	Repo string `koanf:"repo"`
	// URL serves the content over HTTP instead of Dir, e.g.
	// https://raw.githubusercontent.com/<user>/<repo>/<branch>/
	URL     string        `koanf:"url" validate:"omitempty,url"`
	Timeout time.Duration `koanf:"timeout"`
}

type StatsConfig struct {
	HeatmapWeeks int `koanf:"heatmap_weeks" validate:"gte=1,lte=53"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// Defaults are applied before any file, environment or flag.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		DB:   "stepquiz.db",
		User: "student@example.com",
		Content: ContentConfig{
			Dir:     "content",
			Timeout: 15 * time.Second,
		},
		Stats: StatsConfig{HeatmapWeeks: 20},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// Flags declares the command line flags understood by Load. Flag defaults
// mirror Defaults so that unset flags never override a file or environment.
func Flags() *pflag.FlagSet {
	d := Defaults()
	f := pflag.NewFlagSet("stepquiz", pflag.ContinueOnError)
	f.String("config", "", "Path to a YAML config file")
	f.String("server.addr", d.Server.Addr, "Address to listen on")
	f.String("db", d.DB, "Path to the SQLite database file")
	f.String("user", d.User, "Email of the study account")
	f.String("content.dir", d.Content.Dir, "Local directory of the question bank repository")
	f.String("content.repo", d.Content.Repo, "Git URL of the question bank repository")
	f.String("content.url", d.Content.URL, "Base URL serving the question bank over HTTP")
	f.Int("stats.heatmap_weeks", d.Stats.HeatmapWeeks, "Number of weeks shown on the activity heatmap")
	f.String("log.level", d.Log.Level, "Log level: debug, info, warn or error")
	f.String("log.format", d.Log.Format, "Log format: text or json")
	f.Bool("sync", d.Sync, "Sync the content repository before serving")
	return f
}

// Load layers defaults, an optional YAML file, a .env file, STEPQUIZ_*
// environment variables and finally flags set on the command line.
func Load(flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path, _ := flags.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Load .env file if it exists
	_ = godotenv.Load()
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}
	k.Delete("config")

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps STEPQUIZ_SERVER_ADDR to server.addr. A double underscore
// keeps a literal underscore: STEPQUIZ_STATS_HEATMAP__WEEKS is stats.heatmap_weeks.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	s = strings.ReplaceAll(s, "__", "\x00")
	s = strings.ReplaceAll(s, "_", ".")
	return strings.ReplaceAll(s, "\x00", "_")
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SubjectCatalog returns the configured subjects or the built-in catalog.
func (c *Config) SubjectCatalog() []domain.Subject {
	if len(c.Subjects) > 0 {
		return c.Subjects
	}
	return domain.DefaultSubjects
}

// SlogLevel maps the configured level to slog.
func (c *Config) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
