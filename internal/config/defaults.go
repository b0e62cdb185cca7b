package config

const (
	defaultConfigPath       = "~/.config/actigraphy/config.toml"
	defaultDataDir          = "/data"
	defaultLogDir           = "~/.local/share/actigraphy/logs"
	defaultDatabaseDriver   = "sqlite"
	defaultBusyRetries      = 5
	defaultSleepTime        = "12:00:00"
	defaultGGIRCacheEntries = 16
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Database: Database{
			Driver:      defaultDatabaseDriver,
			BusyRetries: defaultBusyRetries,
		},
		GGIR: GGIR{
			DefaultSleepTime: defaultSleepTime,
			CacheEntries:     defaultGGIRCacheEntries,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
