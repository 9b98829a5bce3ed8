// Package preflight provides read-only readiness checks.
//
// The Prober classifies repository locators as local or remote and assigns a
// reachability status: a filesystem stat for local paths, a batch-mode ssh
// probe with a bounded timeout for remote ones. ProbeAll fans probes out over
// a fixed number of workers before the selection list is shown.
//
// The remaining checks back the `borg-tool doctor` command: binary
// availability (via deps) and mount root access.
package preflight
