// Package textutil provides small string helpers shared by the resolver, the
// backup orchestrator, and the mount manager: path-segment sanitizing for
// default mountpoints, separator trimming for archive prefixes, and name
// lists for operator-facing errors.
package textutil
