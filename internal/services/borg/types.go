package borg

import (
	"strings"
	"time"
)

// Archive is one entry of `borg list --json`.
type Archive struct {
	Name string `json:"archive"`
	Time string `json:"time,omitempty"`
}

var archiveTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000000",
	"2006-01-02T15:04:05",
}

// Timestamp parses Time. Borg emits local time without a zone, which is
// interpreted in the local timezone.
func (a Archive) Timestamp() (time.Time, bool) {
	value := strings.TrimSpace(a.Time)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range archiveTimeLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

type listResponse struct {
	Archives []Archive `json:"archives"`
}

// Item is one line of `borg list --json-lines repo::archive`.
type Item struct {
	Path string `json:"path"`
	Type string `json:"type,omitempty"`
	Size *int64 `json:"size,omitempty"`
}

// IsDir reports whether the entry is a directory.
func (i Item) IsDir() bool {
	return i.Type == "d"
}
