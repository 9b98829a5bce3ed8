// Package services defines shared utilities consumed by the engine wrappers and
// the interactive console.
//
// Key responsibilities:
//   - Context helpers that stamp the session identifier and the active
//     repository name for logging and the operation journal.
//   - Structured error markers plus the Wrap helper and OperationError type that
//     classify failures as fatal or recoverable for the interactive loop.
//
// Engine-specific wrappers live in subpackages (see services/borg).
package services
