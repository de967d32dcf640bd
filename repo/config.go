package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/named-data/ndnrepo/repo/storage"
	enc "github.com/named-data/ndnrepo/std/encoding"
	"github.com/named-data/ndnrepo/std/log"
)

type Config struct {
	// Name is the name of the repo service.
	Name string `json:"name"`
	// StorageDir is the directory to store data.
	StorageDir string `json:"storage_dir"`
	// StorageBackend is one of memory, badger, bolt or sqlite.
	StorageBackend string `json:"storage_backend"`
	// Capacity is the maximum number of stored packets.
	Capacity int `json:"capacity"`
	// LogLevel is the log level of the repo.
	LogLevel string `json:"log_level"`
	// CompactInterval is how often tombstones are checked, e.g. "1m".
	// Periodic compaction is disabled when empty.
	CompactInterval string `json:"compact_interval"`
	// CompactThreshold is the number of tombstones that triggers compaction.
	CompactThreshold int `json:"compact_threshold"`

	// NameN is the parsed name of the repo service.
	NameN enc.Name `json:"-"`
	// CompactIntervalD is the parsed compaction interval.
	CompactIntervalD time.Duration `json:"-"`
	// LogLevelL is the parsed log level.
	LogLevelL log.Level `json:"-"`
}

func (c *Config) Parse() (err error) {
	c.NameN, err = enc.NameFromStr(c.Name)
	if err != nil {
		return fmt.Errorf("failed to parse repo name (%s): %w", c.Name, err)
	}
	if len(c.NameN) == 0 {
		return fmt.Errorf("repo name must not be empty")
	}

	if !slices.Contains(storage.Backends, c.StorageBackend) {
		return fmt.Errorf("unknown storage backend: %s", c.StorageBackend)
	}

	if c.StorageBackend != "memory" {
		if c.StorageDir == "" {
			return fmt.Errorf("storage-dir must be set")
		}
		path, err := filepath.Abs(c.StorageDir)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
		c.StorageDir = path
	}

	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive")
	}

	c.LogLevelL, err = log.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level (%s): %w", c.LogLevel, err)
	}

	c.CompactIntervalD = 0
	if c.CompactInterval != "" {
		c.CompactIntervalD, err = time.ParseDuration(c.CompactInterval)
		if err != nil {
			return fmt.Errorf("invalid compact interval (%s): %w", c.CompactInterval, err)
		}
		if c.CompactIntervalD <= 0 {
			return fmt.Errorf("compact interval must be positive (%s)", c.CompactInterval)
		}
	}
	if c.CompactThreshold < 0 {
		return fmt.Errorf("compact-threshold must not be negative")
	}

	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Name:             "", // invalid
		StorageDir:       "", // invalid
		StorageBackend:   "badger",
		Capacity:         100000,
		LogLevel:         "INFO",
		CompactInterval:  "1m",
		CompactThreshold: 1000,

		NameN: nil,
	}
}
