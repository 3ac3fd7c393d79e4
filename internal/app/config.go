package app

import (
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

const defaultAddr = "0.0.0.0:8080"

// Report sink names accepted in ReportConfig.Sinks.
const (
	SinkNop      = "nop"
	SinkFile     = "file"
	SinkPostgres = "postgres"
)

// Config holds the complete application configuration, loadable from
// environment variables (SOLIDKART_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL; enables stored discount rules and the postgres report sink" flag:"database-url"`
	Report      ReportConfig
	RateLimit   RateLimitConfig
	Graceful    GracefulConfig
}

// ReportConfig selects and decorates the report sinks.
type ReportConfig struct {
	Sinks         []string      `default:"file" usage:"Report sinks: nop, file, postgres (several are written concurrently)"`
	Dir           string        `default:"reports" usage:"Directory for the file sink"`
	Compress      bool          `default:"false" usage:"Gzip files written by the file sink"`
	Dedup         bool          `default:"false" usage:"Skip saving reports whose content was already saved"`
	DedupCapacity int           `default:"100000" usage:"Expected number of distinct reports for deduplication" flag:"dedup-capacity"`
	Retries       int           `default:"3" usage:"Save attempts per report"`
	RetryDelay    time.Duration `default:"100ms" usage:"Delay between save attempts" flag:"retry-delay"`
}

// RateLimitConfig controls the per-client token bucket limiter.
type RateLimitConfig struct {
	RPS   float64 `default:"20" usage:"Sustained requests per second per client"`
	Burst int     `default:"40" usage:"Burst size per client"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads an optional .env file, then configuration from
// environment variables, flags and YAML config files.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SOLIDKART",
		Files:     []string{"config.yaml", "/etc/solidkart/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided DATABASE_URL and PORT onto the
// SOLIDKART_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

// Validate checks sink names and their prerequisites.
func (c *Config) Validate() error {
	if len(c.Report.Sinks) == 0 {
		return errors.New("at least one report sink is required")
	}
	for i, s := range c.Report.Sinks {
		s = strings.ToLower(strings.TrimSpace(s))
		c.Report.Sinks[i] = s
		switch s {
		case SinkNop, SinkFile:
		case SinkPostgres:
			if c.DatabaseURL == "" {
				return errors.New("postgres report sink requires a database URL: set SOLIDKART_DATABASE_URL or DATABASE_URL")
			}
		default:
			return errors.Errorf("unknown report sink %q", s)
		}
	}
	if c.Report.Dedup && c.Report.DedupCapacity <= 0 {
		return errors.New("dedup capacity must be positive")
	}
	return nil
}

func (c *Config) hasSink(name string) bool {
	return slices.Contains(c.Report.Sinks, name)
}
