// Package navigator implements the interactive console as an explicit state
// machine. Every screen is a State value; Step performs one transition and
// Run loops until Quit.
//
// Recoverable failures (engine operations, mount state, configuration
// problems raised by wizards) are shown through the Prompter and the operator
// returns to the nearest menu. Malformed engine output and missing engine
// binaries end the run.
package navigator
