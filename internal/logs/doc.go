// Package logs reads the borg-tool log file for `borg-tool logs`.
//
// Last returns the trailing lines with bounded memory, and Follow polls for
// appended lines until the context ends. Both tolerate a log file that does
// not exist yet.
package logs
