package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRepos(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRepos() error {
	seen := make(map[string]struct{}, len(c.Repos))
	for i, entry := range c.Repos {
		if entry.Name == "" {
			return fmt.Errorf("repos[%d].name must be set", i)
		}
		if _, dup := seen[entry.Name]; dup {
			return fmt.Errorf("repos: duplicate repository name %q", entry.Name)
		}
		seen[entry.Name] = struct{}{}
		if entry.Repo == "" {
			return fmt.Errorf("repos[%d] (%s): repo must be set", i, entry.Name)
		}
		presets := make(map[string]struct{}, len(entry.Backups))
		for j, preset := range entry.Backups {
			if preset.Name == "" {
				return fmt.Errorf("repos[%d].backups[%d].name must be set", i, j)
			}
			if _, dup := presets[preset.Name]; dup {
				return fmt.Errorf("repos[%d] (%s): duplicate backup name %q", i, entry.Name, preset.Name)
			}
			presets[preset.Name] = struct{}{}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return errors.New("logging.level must be one of debug, info, warn, error")
	}
}
