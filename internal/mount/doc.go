// Package mount manages the lifetime of the one archive an interactive
// session may have mounted. Manager pairs mount and unmount, refuses a second
// mount while one is active, and validates mountpoints before the engine
// touches them. Mounts left behind by a crashed process are not detected.
package mount
