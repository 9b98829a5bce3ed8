package backup

import (
	"strings"
	"time"

	"borgtool/internal/config"
	"borgtool/internal/textutil"
)

const archiveTimeLayout = "2006-01-02_15-04-05"

// ArchiveName derives a new archive name as
// "<prefix or repository>-<preset>-YYYY-MM-DD_HH-MM-SS" in local time.
// A prefix that is empty after trimming trailing separators falls back to
// the repository name.
func ArchiveName(preset config.BackupPreset, repoName string, now time.Time) string {
	lead := textutil.TrimSeparators(preset.ArchivePrefix)
	if lead == "" {
		lead = repoName
	}
	segments := []string{lead, preset.Name, now.Local().Format(archiveTimeLayout)}
	return strings.Join(segments, "-")
}
