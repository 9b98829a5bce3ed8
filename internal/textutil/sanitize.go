package textutil

import "strings"

// pathSegmentReplacer replaces characters that cannot appear in one path
// segment or that shells and FUSE helpers treat specially.
var pathSegmentReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName turns an archive name into a single directory name usable
// as a default mountpoint. Returns "archive" when nothing printable remains.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(pathSegmentReplacer.Replace(strings.TrimSpace(name)))
	switch name {
	case "", ".", "..":
		return "archive"
	}
	return name
}

// TrimSeparators removes trailing '-' and '_' characters.
func TrimSeparators(value string) string {
	return strings.TrimRight(strings.TrimSpace(value), "-_")
}

// JoinNames renders a list for operator-facing messages ("a, b, c").
func JoinNames(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
