package records

import (
	"fmt"
	"strings"
	"time"
)

const (
	// SiteDateLayout is the date format the recorder's search form expects.
	SiteDateLayout = "01/02/2006"
	// ISODateLayout is the format used for checkpoints and config files.
	ISODateLayout = "2006-01-02"
)

// SearchRange is the recording-date window for one acquisition run. Both ends
// are inclusive and expressed in the site's MM/DD/YYYY form. The search
// interface itself defines the result of an inverted range.
type SearchRange struct {
	Start string `json:"start_date"`
	End   string `json:"end_date"`
}

// NormalizeDate rewrites an ISO yyyy-MM-dd date to the form's MM/dd/yyyy.
// Anything that does not parse as ISO passes through unchanged; the form's
// own validation is the backstop. Idempotent on already-normalized input.
func NormalizeDate(s string) string {
	t, err := time.Parse(ISODateLayout, s)
	if err != nil {
		return s
	}
	return t.Format(SiteDateLayout)
}

// ParseSiteDate parses a date as it appears on the site (MM/DD/YYYY), also
// accepting the ISO form so checkpoint and config values interchange freely.
// A trailing time component ("03/10/2024 09:15 AM") is tolerated.
func ParseSiteDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(SiteDateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(ISODateLayout, s); err == nil {
		return t, nil
	}
	if fields := strings.Fields(s); len(fields) > 1 {
		if t, err := time.Parse(SiteDateLayout, fields[0]); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
