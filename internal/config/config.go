// Package config handles viewer configuration loading and management.
package config

// Config holds all termesh settings.
type Config struct {
	Viewer  ViewerConfig  `yaml:"viewer"`
	Logging LoggingConfig `yaml:"logging"`
}

// ViewerConfig holds rendering and interaction settings.
type ViewerConfig struct {
	FPS        int    `yaml:"fps"`
	Projection string `yaml:"projection"` // "perspective" or "orthographic"
	Spin       bool   `yaml:"spin"`
	Wireframe  bool   `yaml:"wireframe"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			FPS:        30,
			Projection: "perspective",
			Spin:       true,
			Wireframe:  false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}
