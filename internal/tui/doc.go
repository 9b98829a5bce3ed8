// Package tui implements input.Prompter with tview screens: a list for
// menus, modals for confirmations and notices, and input fields for free text
// and masked passphrases. Esc maps to input.ErrBack and Ctrl+C to
// input.ErrAborted.
package tui
