// ABOUTME: Relative timestamps for table cells and detail views
// ABOUTME: Backend dates render as "3 days ago", unparseable values pass through

package widgets

import (
	"time"

	"github.com/dustin/go-humanize"
)

// When renders a backend timestamp relative to now
func When(raw string) string {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return humanize.Time(t)
		}
	}
	return raw
}
