// Package deps lists the external binaries borg-tool shells out to and checks
// whether they resolve on PATH.
package deps
