// Package backup builds archive names and runs `borg create` for a backup
// preset. Before invoking the engine it rejects presets without includes and
// adds the repository's own storage path to the exclusions so a backup of a
// parent directory never archives the repository into itself.
package backup
