// Package clientconfig stores the planctl settings in ~/.config/planctl/config.yaml.
package clientconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const DefaultServer = "http://localhost:8080"

type Config struct {
	Server   string `mapstructure:"server"`
	Token    string `mapstructure:"token"`
	Username string `mapstructure:"username"`
}

// LoggedIn reports whether a session token is stored.
func (c *Config) LoggedIn() bool {
	return c.Token != ""
}

// Path returns the user config file location.
func Path() string {
	return filepath.Join(configDir(), "config.yaml")
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "planctl")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".planctl")
	}
	return filepath.Join(home, ".config", "planctl")
}

// Load reads the user config. PLANCTL_SERVER and PLANCTL_TOKEN override the file.
func Load() (*Config, error) {
	return LoadFromPath(Path())
}

// LoadFromPath reads the config at path; a missing file yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("planctl")
	_ = v.BindEnv("server")
	_ = v.BindEnv("token")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// Save writes the user config with owner-only permissions.
func Save(cfg *Config) error {
	return SaveToPath(Path(), cfg)
}

func SaveToPath(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.Set("server", cfg.Server)
	v.Set("token", cfg.Token)
	v.Set("username", cfg.Username)

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return os.Chmod(path, 0o600)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server", DefaultServer)
	v.SetDefault("token", "")
	v.SetDefault("username", "")
}
