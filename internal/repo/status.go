package repo

// Status is the reachability of a repository as seen by the connectivity probe.
// StatusUnknown is the only value before probing and stays in place when
// remote probing is disabled.
type Status int

const (
	StatusUnknown Status = iota
	StatusReachable
	StatusMissingLocal
	StatusRemoteReachable
	StatusRemoteAuthUnclear
)

// Label is the short tag shown next to a repository in selection lists.
func (s Status) Label() string {
	switch s {
	case StatusReachable:
		return "ok"
	case StatusMissingLocal:
		return "missing"
	case StatusRemoteReachable:
		return "remote-ok"
	case StatusRemoteAuthUnclear:
		return "remote-auth?"
	default:
		return "remote?"
	}
}

func (s Status) String() string {
	switch s {
	case StatusReachable:
		return "reachable"
	case StatusMissingLocal:
		return "missing local path"
	case StatusRemoteReachable:
		return "remote reachable"
	case StatusRemoteAuthUnclear:
		return "remote authentication unclear"
	default:
		return "unknown"
	}
}

// NeedsAttention reports statuses that warn interactive runs and fail
// single-shot commands.
func (s Status) NeedsAttention() bool {
	return s == StatusMissingLocal || s == StatusRemoteAuthUnclear
}
