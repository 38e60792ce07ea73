package capture

import (
	"path/filepath"
	"strings"

	"github.com/nathanj/recorder-agent/internal/records"
)

// fallbackName stands in when sanitization leaves nothing usable.
const fallbackName = "unknown"

// SanitizeFilename rewrites a document identifier into a safe filename:
// characters that are invalid in filenames become underscores, and an
// identifier that sanitizes to nothing yields the fallback token.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_ ")
	if out == "" {
		return fallbackName
	}
	return out
}

// artifactRelPath derives the local destination for a captured PDF from the
// document's recording date and identifier: a year/month folder hierarchy
// with a sanitized filename. Documents whose recording date cannot be parsed
// land in a single "unknown" folder.
func artifactRelPath(entryNumber, recordingDate string) string {
	name := SanitizeFilename(entryNumber) + ".pdf"
	date, err := records.ParseSiteDate(recordingDate)
	if err != nil {
		return filepath.Join(fallbackName, name)
	}
	return filepath.Join(date.Format("2006"), date.Format("01"), name)
}
