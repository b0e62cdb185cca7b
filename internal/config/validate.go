package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateGGIR(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.DSN == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = defaultConfigPath
			}
			return fmt.Errorf("database.dsn is required for the postgres driver. Set ACTIGRAPHY_DATABASE_DSN or edit %s (create with 'actigraphy config init')", defaultPath)
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.BusyRetries < 1 {
		return errors.New("database.busy_retries must be positive")
	}
	return nil
}

func (c *Config) validateGGIR() error {
	if _, err := c.DefaultSleepClock(); err != nil {
		return err
	}
	if c.GGIR.CacheEntries < 1 {
		return errors.New("ggir.cache_entries must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}

// DefaultSleepClock returns ggir.default_sleep_time as an offset from local
// midnight.
func (c *Config) DefaultSleepClock() (time.Duration, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, c.GGIR.DefaultSleepTime); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("ggir.default_sleep_time must be HH:MM or HH:MM:SS, got %q", c.GGIR.DefaultSleepTime)
}
