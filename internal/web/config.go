package web

import (
	"github.com/fuzzydedup/internal/config"
)

// Config represents the web server configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Engine   EngineConfig   `json:"engine"`
	Features FeatureConfig  `json:"features"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port int    `json:"port"`
	Host string `json:"host"`
}

// DatabaseConfig contains database connection settings. An empty URL
// disables persistence entirely.
type DatabaseConfig struct {
	URL            string `json:"url"`
	MaxConnections int    `json:"max_connections"`
}

// EngineConfig contains deduplication engine settings
type EngineConfig struct {
	Workers int `json:"workers"`
}

// FeatureConfig contains feature toggles
type FeatureConfig struct {
	ExportEnabled bool `json:"export_enabled"`
}

// ConfigFromEnv builds a configuration from environment variables,
// with development defaults.
func ConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Host: config.GetEnv("WEB_HOST", "0.0.0.0"),
			Port: config.GetEnvInt("WEB_PORT", 8080),
		},
		Database: DatabaseConfig{
			URL:            config.GetEnv("DATABASE_URL", ""),
			MaxConnections: config.GetEnvInt("DATABASE_MAX_CONNECTIONS", 20),
		},
		Engine: EngineConfig{
			Workers: config.GetEnvInt("DEDUPE_WORKERS", 1),
		},
		Features: FeatureConfig{
			ExportEnabled: config.GetEnvBool("EXPORT_ENABLED", true),
		},
	}
}
