package repo

import (
	"fmt"
	"path/filepath"

	"borgtool/internal/config"
	"borgtool/internal/services"
	"borgtool/internal/textutil"
)

// Context is one resolved repository with its effective settings.
type Context struct {
	Name       string
	Locator    string
	EnginePath string
	MountRoot  string
	Presets    []config.BackupPreset
	Status     Status
}

// ArchiveLocator returns the engine's "repo::archive" form.
func (c Context) ArchiveLocator(archive string) string {
	return c.Locator + "::" + archive
}

// DefaultMountpoint returns the directory under MountRoot used when the
// operator does not pick a mountpoint.
func (c Context) DefaultMountpoint(archive string) string {
	return filepath.Join(c.MountRoot, textutil.SanitizeFileName(archive))
}

// PresetNames lists backup presets in configured order.
func (c Context) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for _, p := range c.Presets {
		names = append(names, p.Name)
	}
	return names
}

// Preset looks up a backup preset by name.
func (c Context) Preset(name string) (config.BackupPreset, error) {
	for _, p := range c.Presets {
		if p.Name == name {
			return p, nil
		}
	}
	return config.BackupPreset{}, services.Wrap(services.ErrConfiguration, "repo", "preset",
		fmt.Sprintf("Backup '%s' not found. Available: %s", name, textutil.JoinNames(c.PresetNames())), nil)
}

func (c Context) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.Locator)
}
