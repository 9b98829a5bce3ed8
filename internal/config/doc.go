// Package config loads, normalizes, validates, and persists borg-tool
// configuration.
//
// It supplies defaults (engine binary, mount root, probing, log and journal
// locations), expands user paths including tilde shortcuts, reads TOML files,
// and accepts both the multi-repository `[[repos]]` layout and the legacy
// single `repo` key. Save rewrites the file under an exclusive lock so the
// setup wizards can persist new repositories and presets safely.
package config
