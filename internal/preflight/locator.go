package preflight

import (
	"strings"

	"borgtool/internal/config"
)

// IsRemote reports whether locator names a remote repository.
func IsRemote(locator string) bool {
	return config.IsRemoteLocator(locator)
}

// ExtractHost returns the bare host of a remote locator, without user info,
// port, or path. It returns "" for local paths and unparseable locators.
func ExtractHost(locator string) string {
	locator = strings.TrimSpace(locator)
	if !IsRemote(locator) {
		return ""
	}
	if _, rest, ok := strings.Cut(locator, "://"); ok {
		authority, _, _ := strings.Cut(rest, "/")
		return hostOf(authority[strings.LastIndex(authority, "@")+1:])
	}
	rest := locator[strings.Index(locator, "@")+1:]
	if !strings.Contains(rest, ":") {
		return ""
	}
	return hostOf(rest)
}

// hostOf drops a trailing ":port" (or ":path" for SCP-style locators) and the
// brackets around an IPv6 literal.
func hostOf(hostPort string) string {
	if strings.HasPrefix(hostPort, "[") {
		if end := strings.Index(hostPort, "]"); end > 0 {
			return hostPort[1:end]
		}
		return strings.TrimPrefix(hostPort, "[")
	}
	host, _, _ := strings.Cut(hostPort, ":")
	return host
}
