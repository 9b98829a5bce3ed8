// Package credentials holds the process-lifetime passphrase cache handed to
// every engine invocation. The secret travels only as an environment variable
// and is never rendered by fmt.
package credentials
