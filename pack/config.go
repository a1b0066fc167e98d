package pack

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tie/internal/renameio"
	"github.com/tie/internal/robustio"

	"github.com/tie/mrpacker"
)

// ConfigName is the updater settings file name.
const ConfigName = "updater_config.json"

// Logging levels accepted in the config file.
var LogLevels = []string{"debug", "info", "warning", "error"}

// Config is the updater settings document. It is loaded at startup
// and rewritten whenever the configure menu changes a value.
type Config struct {
	// LoggingLevel is one of LogLevels.
	LoggingLevel string `json:"logging_level"`

	// AsyncDownloads enables the bounded worker pool.
	AsyncDownloads bool `json:"async_downloads"`

	// ServerDir holds server-only mods; ModsDir everything else.
	ServerDir string `json:"server_directory"`
	ModsDir   string `json:"mods_directory"`

	BackupsDir string `json:"backup_directory"`
	LogsDir    string `json:"logs_directory"`

	// OverridesPath is the optional HCL manifest of extra files
	// bundled into built packages.
	OverridesPath string `json:"overrides_manifest"`
}

func DefaultConfig() Config {
	return Config{
		LoggingLevel:   "info",
		AsyncDownloads: true,
		ServerDir:      "server",
		ModsDir:        "mods",
		BackupsDir:     "backups",
		LogsDir:        "logs",
		OverridesPath:  "overrides.pack",
	}
}

// LoadConfig reads the settings file, creating it with defaults when
// absent. A present but malformed file is an error; the updater never
// silently replaces user settings.
func LoadConfig(path string) (Config, error) {
	src, err := robustio.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := SaveConfig(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(src, &cfg); err != nil {
		return cfg, fmt.Errorf("%q: %v: %w", path, err, mrpacker.ErrBadConfig)
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, fmt.Errorf("%q: %w", path, err)
	}
	return cfg, nil
}

func SaveConfig(path string, cfg Config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	data, err := json.MarshalIndent(&cfg, "", "    ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return renameio.WriteFile(path, data, 0644)
}

func validateConfig(cfg Config) error {
	ok := false
	for _, l := range LogLevels {
		if cfg.LoggingLevel == l {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("logging level %q: %w", cfg.LoggingLevel, mrpacker.ErrBadConfig)
	}
	if cfg.ServerDir == "" || cfg.ModsDir == "" {
		return fmt.Errorf("empty mods directory: %w", mrpacker.ErrBadConfig)
	}
	return nil
}
