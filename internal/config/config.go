// Package config loads punchclock settings: built-in defaults, then an
// optional TOML file, then PUNCHCLOCK_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment override,
// e.g. PUNCHCLOCK_STORE_DRIVER.
const EnvPrefix = "PUNCHCLOCK"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration. Environment keys are derived
// from field names, e.g. PUNCHCLOCK_SWEEP_ITEM_TIMEOUT.
type Config struct {
	// Timezone is the server zone used for daily cap checks. Empty means
	// $TZ, then the system zone, then UTC.
	Timezone string `toml:"timezone"`
	Store    Store  `toml:"store"`
	Sweep    Sweep  `toml:"sweep"`
	Notify   Notify `toml:"notify"`
	Log      Log    `toml:"log"`
}

type Store struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
	URL    string `toml:"url"`
}

type Sweep struct {
	Interval    Duration `toml:"interval"`
	ItemTimeout Duration `toml:"item_timeout" split_words:"true"`
	LockFile    string   `toml:"lock_file" split_words:"true"`
}

type Notify struct {
	QueueSize int `toml:"queue_size" split_words:"true"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration is a time.Duration written as a Go duration string in TOML
// and the environment.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Decode lets envconfig parse Duration values.
func (d *Duration) Decode(value string) error {
	return d.UnmarshalText([]byte(value))
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Store: Store{
			Driver: DriverSQLite,
			Path:   DefaultDBPath(),
		},
		Sweep: Sweep{
			Interval:    Duration{2 * time.Minute},
			ItemTimeout: Duration{10 * time.Second},
		},
		Notify: Notify{QueueSize: 64},
		Log:    Log{Level: "info", Format: "text"},
	}
}

// DefaultDBPath is the SQLite file under the user's data directory.
func DefaultDBPath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "punchclock", "punchclock.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "punchclock.db"
	}
	return filepath.Join(home, ".local", "share", "punchclock", "punchclock.db")
}

// DefaultPath is where Load looks for a config file when none is named.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "punchclock", "config.toml")
}

// Load reads the configuration. An explicitly named file must exist; the
// default file is optional.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case err == nil:
			if undec := md.Undecoded(); len(undec) > 0 {
				return cfg, fmt.Errorf("config %s: unknown keys %v", path, undec)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("reading environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.Path == "" {
			return errors.New("store.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Store.URL == "" {
			return errors.New("store.url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.Sweep.Interval.Duration <= 0 {
		return fmt.Errorf("sweep.interval must be positive, got %s", c.Sweep.Interval)
	}
	if c.Sweep.ItemTimeout.Duration <= 0 {
		return fmt.Errorf("sweep.item_timeout must be positive, got %s", c.Sweep.ItemTimeout)
	}
	if c.Notify.QueueSize <= 0 {
		return fmt.Errorf("notify.queue_size must be positive, got %d", c.Notify.QueueSize)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}
	return nil
}
