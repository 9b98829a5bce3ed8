package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"borgtool/internal/services"
)

//go:embed sample_config.toml
var sampleConfig string

// BackupPreset describes one reusable `borg create` recipe.
type BackupPreset struct {
	Name          string   `toml:"name"`
	Includes      []string `toml:"includes"`
	Excludes      []string `toml:"excludes,omitempty"`
	Compression   string   `toml:"compression,omitempty"`
	OneFileSystem bool     `toml:"one_file_system,omitempty"`
	ExcludeCaches bool     `toml:"exclude_caches,omitempty"`
	ArchivePrefix string   `toml:"archive_prefix,omitempty"`
}

// Repository is one `[[repos]]` entry. Empty BorgBin and MountRoot inherit the
// global values.
type Repository struct {
	Name      string         `toml:"name"`
	Repo      string         `toml:"repo"`
	BorgBin   string         `toml:"borg_bin,omitempty"`
	MountRoot string         `toml:"mount_root,omitempty"`
	Backups   []BackupPreset `toml:"backups,omitempty"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Journal controls the local history of mutating engine operations.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Config encapsulates all configuration values for borg-tool.
//
// Repositories are declared either through Repos or, for older files, a single
// legacy Repo locator which is treated as a repository named "default".
type Config struct {
	BorgBin      string       `toml:"borg_bin"`
	MountRoot    string       `toml:"mount_root"`
	ProbeSSH     bool         `toml:"probe_ssh"`
	ProbeWorkers int          `toml:"probe_workers"`
	Repo         string       `toml:"repo,omitempty"`
	Repos        []Repository `toml:"repos,omitempty"`
	Logging      Logging      `toml:"logging"`
	Journal      Journal      `toml:"journal"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(filepath.Join(configHome(), appDirName, "config.toml"))
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A missing file yields defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, services.Wrap(services.ErrConfiguration, "config", "open", resolvedPath, err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, services.Wrap(services.ErrConfiguration, "config", "parse", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, services.Wrap(services.ErrConfiguration, "config", "normalize", "", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, services.Wrap(services.ErrConfiguration, "config", "validate", "", err)
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("config.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// RepositoryEntries returns the configured repositories in declaration order.
// A legacy single locator is presented as one entry named "default".
func (c *Config) RepositoryEntries() []Repository {
	if len(c.Repos) > 0 {
		out := make([]Repository, len(c.Repos))
		copy(out, c.Repos)
		return out
	}
	if strings.TrimSpace(c.Repo) != "" {
		return []Repository{{Name: LegacyRepositoryName, Repo: c.Repo}}
	}
	return nil
}

// MigrateLegacy rewrites a legacy single locator into a `[[repos]]` entry.
func (c *Config) MigrateLegacy() {
	if len(c.Repos) == 0 && strings.TrimSpace(c.Repo) != "" {
		c.Repos = []Repository{{Name: LegacyRepositoryName, Repo: c.Repo}}
	}
	c.Repo = ""
}

// AddRepository appends a new repository entry after checking it against the
// existing ones. The config is left untouched on error.
func (c *Config) AddRepository(entry Repository) error {
	entry.Name = strings.TrimSpace(entry.Name)
	entry.Repo = strings.TrimSpace(entry.Repo)
	if entry.Name == "" {
		return services.Wrap(services.ErrConfiguration, "config", "add repository", "name must not be empty", nil)
	}
	if entry.Repo == "" {
		return services.Wrap(services.ErrConfiguration, "config", "add repository", "repo must not be empty", nil)
	}
	locator, err := absLocator(entry.Repo)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "add repository", "resolve repo path", err)
	}
	entry.Repo = locator
	for _, existing := range c.RepositoryEntries() {
		if existing.Name == entry.Name {
			return services.Wrap(services.ErrConfiguration, "config", "add repository", fmt.Sprintf("repository %q already exists", entry.Name), nil)
		}
	}
	c.MigrateLegacy()
	c.Repos = append(c.Repos, entry)
	return nil
}

// AddPreset appends a backup preset to the named repository.
func (c *Config) AddPreset(repoName string, preset BackupPreset) error {
	preset.Name = strings.TrimSpace(preset.Name)
	if preset.Name == "" {
		return services.Wrap(services.ErrConfiguration, "config", "add preset", "name must not be empty", nil)
	}
	c.MigrateLegacy()
	for i := range c.Repos {
		if c.Repos[i].Name != repoName {
			continue
		}
		for _, existing := range c.Repos[i].Backups {
			if existing.Name == preset.Name {
				return services.Wrap(services.ErrConfiguration, "config", "add preset", fmt.Sprintf("backup %q already exists in %s", preset.Name, repoName), nil)
			}
		}
		c.Repos[i].Backups = append(c.Repos[i].Backups, preset)
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "config", "add preset", fmt.Sprintf("repository %q not found", repoName), nil)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// IsRemoteLocator reports whether locator names a remote repository: either a
// URL with a scheme ("ssh://...") or an SCP-style "user@host:path".
func IsRemoteLocator(locator string) bool {
	if strings.Contains(locator, "://") {
		return true
	}
	at := strings.Index(locator, "@")
	return at >= 0 && strings.Contains(locator[at+1:], ":")
}

// absLocator makes a local repository path absolute. Remote locators are
// returned unchanged.
func absLocator(locator string) (string, error) {
	if locator == "" || IsRemoteLocator(locator) {
		return locator, nil
	}
	return expandPath(locator)
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func configHome() string {
	if base, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && strings.TrimSpace(base) != "" {
		return base
	}
	return "~/.config"
}

func stateHome() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return base
	}
	return "~/.local/state"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
