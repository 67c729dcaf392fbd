package locator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

const (
	configSection = "Paths"
	configKey     = "ApsimXbinPath"
)

// DefaultConfigPath is the INI file used when none is configured.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "apsimgo", "config.ini")
}

func readConfig(path string) (string, error) {
	if path == "" {
		return "", errors.New("no config path")
	}
	cfg, err := ini.Load(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return cfg.Section(configSection).Key(configKey).String(), nil
}

// writeConfig stores dir under [Paths], keeping any other content of an
// existing file.
func writeConfig(path, dir string) error {
	cfg := ini.Empty()
	if _, err := os.Stat(path); err == nil {
		if cfg, err = ini.Load(path); err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
	}
	cfg.Section(configSection).Key(configKey).SetValue(dir)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return cfg.SaveTo(path)
}
