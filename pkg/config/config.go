package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP server settings loaded from a YAML file.
// Timeouts are in seconds.
type ServerConfig struct {
	Addr                string `yaml:"addr"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `yaml:"idle_timeout_seconds"`
}

func Default() ServerConfig {
	return ServerConfig{
		Addr:                ":8080",
		ReadTimeoutSeconds:  10,
		WriteTimeoutSeconds: 15,
		IdleTimeoutSeconds:  60,
	}
}

// LoadServerConfig reads the config file at path, falling back to defaults
// when the file is absent. A present but malformed file is an error.
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

func (c ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}
