package constants

const (
	// ConfigName is the base name of the config file (without extension).
	ConfigName = "config"
	// ConfigFormat is the config file format read by viper.
	ConfigFormat = "yaml"

	// EnvPrefix is the prefix for environment variable overrides,
	// e.g. YARRO_DATABASE_HOST overrides database.host.
	EnvPrefix = "YARRO"
)
