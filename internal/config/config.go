package config

import (
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

type Config struct {
	Home    string `yaml:"home"`
	DataDir string `yaml:"data_dir"`
	LogDir  string `yaml:"log_dir"`
	// DefaultDB is the database file used when no path argument is
	// given on the command line.
	DefaultDB string `yaml:"default_db"`
}

// LoadConfig resolves the application home (override flag, then
// TINYDB_HOME, then ~/.local/share/tinydb), applies config.yaml when
// present and makes sure the data and log directories exist.
func LoadConfig(homeOverride, configOverride string) (*Config, error) {
	home := homeOverride
	if home == "" {
		home = os.Getenv("TINYDB_HOME")
	}

	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		home = filepath.Join(userHome, ".local", "share", "tinydb")
	}

	if err := os.MkdirAll(home, 0o755); err != nil {
		return nil, err
	}

	cfg := &Config{
		Home:      home,
		DataDir:   filepath.Join(home, "data"),
		LogDir:    filepath.Join(home, "log"),
		DefaultDB: filepath.Join(home, "data", "tinydb.db"),
	}

	cfgPath := configOverride
	if cfgPath == "" {
		cfgPath = filepath.Join(home, "config.yaml")
	}

	if f, err := os.Open(cfgPath); err == nil {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, err
		}
	}

	_ = os.MkdirAll(cfg.DataDir, 0o755)
	_ = os.MkdirAll(cfg.LogDir, 0o755)

	return cfg, nil
}
