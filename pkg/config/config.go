package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eez-psu/psu-go/pkg/channel"
	"github.com/eez-psu/psu-go/pkg/listfile"
)

// Configuration errors.
var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Defaults.
const (
	DefaultTickPeriod     = time.Millisecond
	DefaultErrorQueueSize = 20
	DefaultChannelCount   = 2
)

// DefaultLimits are the limits of a channel that does not configure its own.
var DefaultLimits = channel.Limits{Voltage: 40, Current: 5, Power: 155}

// Config is the supply configuration.
type Config struct {
	// Channels lists every channel's limits in channel order.
	Channels []channel.Limits `yaml:"channels"`

	Storage Storage `yaml:"storage"`

	// TickPeriod is the interval between engine ticks.
	TickPeriod time.Duration `yaml:"tick_period"`

	// ErrorQueueSize bounds the error queue.
	ErrorQueueSize int `yaml:"error_queue_size"`

	// EventLog is the path of the CBOR execution log (empty = off).
	EventLog string `yaml:"event_log"`

	// StateFile is the path of the list state snapshot (empty = off).
	StateFile string `yaml:"state_file"`
}

// Storage configures the list file medium.
type Storage struct {
	// Root is the directory list file paths are resolved against.
	// Empty means the storage option is not installed.
	Root string `yaml:"root"`

	// Separator separates the columns of a row.
	Separator string `yaml:"separator"`

	// NoValue marks a column that has ended.
	NoValue string `yaml:"no_value"`
}

// Installed reports whether a storage medium is configured.
func (s Storage) Installed() bool {
	return s.Root != ""
}

// Format returns the list file format.
func (s Storage) Format() listfile.Format {
	return listfile.Format{Separator: s.Separator[0], NoValue: s.NoValue[0]}
}

// Default returns a configuration with two channels and no storage.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if len(c.Channels) == 0 {
		c.Channels = make([]channel.Limits, DefaultChannelCount)
		for i := range c.Channels {
			c.Channels[i] = DefaultLimits
		}
	}
	if c.Storage.Separator == "" {
		c.Storage.Separator = string(listfile.DefaultSeparator)
	}
	if c.Storage.NoValue == "" {
		c.Storage.NoValue = string(listfile.DefaultNoValue)
	}
	if c.TickPeriod == 0 {
		c.TickPeriod = DefaultTickPeriod
	}
	if c.ErrorQueueSize == 0 {
		c.ErrorQueueSize = DefaultErrorQueueSize
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if len(c.Channels) < 1 || len(c.Channels) > channel.MaxCount {
		return fmt.Errorf("%w: %d channels (1-%d)", ErrInvalidConfig, len(c.Channels), channel.MaxCount)
	}
	for i, l := range c.Channels {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, channel.FromIndex(i), err)
		}
	}
	if len(c.Storage.Separator) != 1 || len(c.Storage.NoValue) != 1 {
		return fmt.Errorf("%w: separator and no_value must be single characters", ErrInvalidConfig)
	}
	if err := c.Storage.Format().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.TickPeriod <= 0 {
		return fmt.Errorf("%w: tick period %v", ErrInvalidConfig, c.TickPeriod)
	}
	if c.ErrorQueueSize < 2 {
		return fmt.Errorf("%w: error queue size %d", ErrInvalidConfig, c.ErrorQueueSize)
	}
	return nil
}

// Parse decodes a YAML configuration, applies defaults and validates it.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("YAML parse error: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
