package textutil

import "strings"

// fileNameReplacer maps characters that are unsafe in file names on common
// filesystems to underscores.
var fileNameReplacer = strings.NewReplacer(
	"*", "_",
	"\"", "_",
	"/", "_",
	"\\", "_",
	"<", "_",
	">", "_",
	":", "_",
	"|", "_",
	"?", "_",
)

// SanitizeFileName replaces filesystem-unsafe characters in a playlist name
// with underscores. Empty names become "playlist".
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(fileNameReplacer.Replace(name))
	if name == "" || name == "." || name == ".." {
		return "playlist"
	}
	return name
}
