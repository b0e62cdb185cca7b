package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDatabase()
	c.normalizeGGIR()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("ACTIGRAPHY_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = value
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}

	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDatabase() {
	if value, ok := os.LookupEnv("ACTIGRAPHY_DATABASE_DSN"); ok && strings.TrimSpace(value) != "" {
		c.Database.DSN = value
	}
	c.Database.DSN = strings.TrimSpace(c.Database.DSN)
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case "":
		c.Database.Driver = defaultDatabaseDriver
		if c.Database.DSN != "" {
			c.Database.Driver = "postgres"
		}
	case "sqlite3":
		c.Database.Driver = "sqlite"
	case "postgresql", "pq":
		c.Database.Driver = "postgres"
	}
	if c.Database.BusyRetries == 0 {
		c.Database.BusyRetries = defaultBusyRetries
	}
}

func (c *Config) normalizeGGIR() {
	c.GGIR.DefaultSleepTime = strings.TrimSpace(c.GGIR.DefaultSleepTime)
	if c.GGIR.DefaultSleepTime == "" {
		c.GGIR.DefaultSleepTime = defaultSleepTime
	}
	if c.GGIR.CacheEntries == 0 {
		c.GGIR.CacheEntries = defaultGGIRCacheEntries
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv("ACTIGRAPHY_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
