// Package repo resolves configured repositories into Contexts carrying their
// effective engine path, mount root, backup presets, and probed reachability.
//
// Resolve implements the selection rules shared by every command: an explicit
// --repo name must exist, a single repository is chosen automatically, and
// several repositories are handed back for interactive choice.
package repo
