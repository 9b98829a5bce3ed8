package deps

import (
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"borgtool/internal/config"
)

// Requirement defines an external binary borg-tool relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Detail      string
}

// Requirements lists the engine binaries referenced by cfg (the global one and
// every per-repository override) plus the optional helpers used for remote
// probing and FUSE unmounts.
func Requirements(cfg *config.Config) []Requirement {
	engines := map[string]struct{}{}
	if cfg != nil {
		engines[cfg.BorgBin] = struct{}{}
		for _, entry := range cfg.RepositoryEntries() {
			if entry.BorgBin != "" {
				engines[entry.BorgBin] = struct{}{}
			}
		}
	}
	if len(engines) == 0 {
		engines["borg"] = struct{}{}
	}
	commands := make([]string, 0, len(engines))
	for command := range engines {
		commands = append(commands, command)
	}
	sort.Strings(commands)

	reqs := make([]Requirement, 0, len(commands)+2)
	for _, command := range commands {
		reqs = append(reqs, Requirement{Name: "BorgBackup", Command: command, Description: "archive engine"})
	}
	reqs = append(reqs,
		Requirement{Name: "OpenSSH", Command: "ssh", Description: "remote reachability probes", Optional: true},
		Requirement{Name: "FUSE", Command: "fusermount", Description: "archive mounts", Optional: true},
	)
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		results = append(results, status)
	}
	return results
}
