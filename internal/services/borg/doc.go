// Package borg wraps the BorgBackup command line. Client builds argument
// lists for list, extract, create, mount, umount and init, passes the cached
// passphrase through the environment, and classifies failures with the
// services error markers. Mutating invocations can be journaled.
package borg
