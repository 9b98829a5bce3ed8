// Package input defines the Prompter contract the interactive navigator uses
// and a line-oriented implementation for pipes and plain terminals.
//
// Select, Confirm and Input never block past context cancellation. Back
// navigation is reported as ErrBack; exhausted or closed input as ErrAborted.
package input
