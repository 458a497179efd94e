package main

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultServer = "http://localhost:8080"

// Config is the CLI state stored in ~/.chater/config.toml.
type Config struct {
	Server ConfigServer `toml:"server"`
	Auth   ConfigAuth   `toml:"auth"`
}

type ConfigServer struct {
	URL    string `toml:"url"`
	Colors bool   `toml:"colors"`
}

// ConfigAuth holds the session of the logged in user.
type ConfigAuth struct {
	Token      string `toml:"token"`
	UserID     string `toml:"user_id"`
	Email      string `toml:"email"`
	Name       string `toml:"name"`
	LoggedInAt string `toml:"logged_in_at,omitempty"`
}

func (c *Config) serverURL() string {
	if c.Server.URL == "" {
		return defaultServer
	}
	return c.Server.URL
}

// configDir returns $CHATER_HOME or ~/.chater, creating it if needed.
func configDir() (string, error) {
	dir := os.Getenv("CHATER_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".chater")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("cannot create config directory: %w", err)
	}
	return dir, nil
}

func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// loadConfig reads the config file. A missing file yields the defaults.
func loadConfig() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	cfg := &Config{Server: ConfigServer{URL: defaultServer, Colors: true}}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}
	return cfg, nil
}

func saveConfig(cfg *Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("cannot write config: %w", err)
	}
	return nil
}
