package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Import   ImportConfig   `mapstructure:"import"   validate:"required"`
	SRS      SRSConfig      `mapstructure:"srs"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port      int    `mapstructure:"port"       validate:"required,gt=0,lt=65536"`
	LogLevel  string `mapstructure:"log_level"  validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"omitempty,oneof=json text"`
	// Seconds to wait for in-flight requests on shutdown
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// For sqlite3 the URL is a file path (or ":memory:").
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"         validate:"required,oneof=postgres sqlite3"`
	URL          string `mapstructure:"url"            validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// ImportConfig controls how delimited card files are read.
type ImportConfig struct {
	Delimiter string `mapstructure:"delimiter"  validate:"required,len=1|eq=tab|eq=\\t"`
	HasHeader bool   `mapstructure:"has_header"`
}

// SRSConfig overrides scheduling parameters. Zero values keep the SM-2 defaults.
type SRSConfig struct {
	DefaultEaseFactor float64 `mapstructure:"default_ease_factor" validate:"omitempty,gte=1.3"`
	MinEaseFactor     float64 `mapstructure:"min_ease_factor"     validate:"omitempty,gte=1.3"`
	FirstInterval     int     `mapstructure:"first_interval"      validate:"gte=0"`
	SecondInterval    int     `mapstructure:"second_interval"     validate:"gte=0"`
	LapseInterval     int     `mapstructure:"lapse_interval"      validate:"gte=0"`
}
