package navigator

import (
	"fmt"

	"borgtool/internal/services/borg"
)

// State is one screen of the console. Each state carries only the data its
// screen needs.
type State interface {
	state()
}

// RepoSelect lists repositories. First is set on the initial entry only,
// when a sole or preselected repository is entered without asking.
type RepoSelect struct {
	First     bool
	Preselect string
}

type MainMenu struct{}

// ArchiveList shows the cached archive listing, fetching it when empty.
type ArchiveList struct {
	Reload bool
}

type ArchiveAction struct {
	Archive string
}

// BrowseFiles lists the items of Archive. Items is filled on first entry
// and kept while extraction prompts come and go.
type BrowseFiles struct {
	Archive string
	Items   []borg.Item
}

type MountPrompt struct {
	Archive string
}

type UnmountCurrent struct {
	Archive string
}

type BackupList struct{}

type BackupRun struct {
	Preset string
}

type AddRepository struct{}

type AddPreset struct{}

// ChangeRepo releases the current repository and returns to RepoSelect.
type ChangeRepo struct{}

// Quit is terminal.
type Quit struct{}

func (RepoSelect) state()     {}
func (MainMenu) state()       {}
func (ArchiveList) state()    {}
func (ArchiveAction) state()  {}
func (BrowseFiles) state()    {}
func (MountPrompt) state()    {}
func (UnmountCurrent) state() {}
func (BackupList) state()     {}
func (BackupRun) state()      {}
func (AddRepository) state()  {}
func (AddPreset) state()      {}
func (ChangeRepo) state()     {}
func (Quit) state()           {}

func stateName(st State) string {
	return fmt.Sprintf("%T", st)
}
