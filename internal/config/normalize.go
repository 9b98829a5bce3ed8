package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	c.BorgBin = strings.TrimSpace(c.BorgBin)
	if c.BorgBin == "" {
		c.BorgBin = defaultBorgBin
	}
	if strings.TrimSpace(c.MountRoot) == "" {
		c.MountRoot = Default().MountRoot
	}
	if c.MountRoot, err = expandPath(strings.TrimSpace(c.MountRoot)); err != nil {
		return fmt.Errorf("mount_root: %w", err)
	}
	if c.ProbeWorkers <= 0 {
		c.ProbeWorkers = defaultProbeWorkers
	}
	if c.Repo, err = absLocator(strings.TrimSpace(c.Repo)); err != nil {
		return fmt.Errorf("repo: %w", err)
	}
	if err := c.normalizeRepos(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return c.normalizeJournal()
}

func (c *Config) normalizeRepos() error {
	var err error
	for i := range c.Repos {
		entry := &c.Repos[i]
		entry.Name = strings.TrimSpace(entry.Name)
		if entry.Repo, err = absLocator(strings.TrimSpace(entry.Repo)); err != nil {
			return fmt.Errorf("repos[%d].repo: %w", i, err)
		}
		entry.BorgBin = strings.TrimSpace(entry.BorgBin)
		if mountRoot := strings.TrimSpace(entry.MountRoot); mountRoot != "" {
			if entry.MountRoot, err = expandPath(mountRoot); err != nil {
				return fmt.Errorf("repos[%d].mount_root: %w", i, err)
			}
		}
		for j := range entry.Backups {
			preset := &entry.Backups[j]
			preset.Name = strings.TrimSpace(preset.Name)
			preset.Compression = strings.TrimSpace(preset.Compression)
			preset.ArchivePrefix = strings.TrimSpace(preset.ArchivePrefix)
			preset.Includes = trimList(preset.Includes)
			for k, include := range preset.Includes {
				if strings.HasPrefix(include, "~") {
					if preset.Includes[k], err = expandPath(include); err != nil {
						return fmt.Errorf("repos[%d].backups[%d].includes: %w", i, j, err)
					}
				}
			}
			preset.Excludes = trimList(preset.Excludes)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	file := strings.TrimSpace(c.Logging.File)
	if file == "" {
		file = Default().Logging.File
	}
	var err error
	if c.Logging.File, err = expandPath(file); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func (c *Config) normalizeJournal() error {
	path := strings.TrimSpace(c.Journal.Path)
	if path == "" {
		path = Default().Journal.Path
	}
	var err error
	if c.Journal.Path, err = expandPath(path); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func trimList(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
