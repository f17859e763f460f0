package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Loader handles configuration loading.
type Loader struct {
	configPath string
}

// NewLoader creates a loader for the given path. An empty path means the
// default location under the user's home directory.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
	}
}

// Load reads the config file, applies the DOCQNA_API_KEY fallback and
// fills derived path defaults. A missing file is not an error.
func (l *Loader) Load() (*Config, error) {
	configPath, err := l.resolvePath()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		v := viper.New()
		v.SetConfigFile(configPath)
		v.SetConfigType("json")

		v.SetEnvPrefix("DOCQNA")
		v.AutomaticEnv()

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	// The original kept the key out of the settings file.
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = os.Getenv("DOCQNA_API_KEY")
	}

	if err := fillDerived(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// fillDerived completes paths the file left unset.
func fillDerived(cfg *Config) error {
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".docqna")
	}

	if cfg.Storage.DocumentsPath == "" {
		cfg.Storage.DocumentsPath = "documents"
	}
	if cfg.Storage.CachedPromptsPath == "" {
		cfg.Storage.CachedPromptsPath = filepath.Join(cfg.DataDir, "cached_prompts")
	}
	if cfg.Storage.TranscriptsPath == "" {
		cfg.Storage.TranscriptsPath = filepath.Join(cfg.DataDir, "transcripts")
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = filepath.Join(cfg.DataDir, "docqna.log")
	}

	return nil
}

func (l *Loader) resolvePath() (string, error) {
	if l.configPath != "" {
		return l.configPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".docqna", "docqna.json"), nil
}

// GetConfigPath returns the config file path.
func (l *Loader) GetConfigPath() string {
	path, err := l.resolvePath()
	if err != nil {
		return ""
	}
	return path
}

// Load is a convenience function that creates a loader and loads the config.
func Load(configPath string) (*Config, error) {
	loader := NewLoader(configPath)
	return loader.Load()
}
