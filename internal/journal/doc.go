// Package journal records mutating engine operations (create, extract, mount,
// umount, init) in a small SQLite database so `borg-tool history` can show
// what ran, against which repository, and how it ended. Rows carry the
// session identifier of the process run that produced them.
package journal
