// Package main hosts the borg-tool CLI entrypoint and command graph.
//
// The Cobra command tree resolves the configuration and the target
// repository, then hands single-shot commands to the borg client and the
// interactive command to the navigator. Session wiring (logger, journal,
// prompter, passphrase cache, mount manager) lives in context.go so
// subcommands only describe their own behaviour.
package main
