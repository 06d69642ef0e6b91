// ABOUTME: Report file naming and saving
// ABOUTME: Reports are written to the configured directory with a date-stamped name

package listing

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

// ReportFilename names a list report, e.g. interns-report-2024-05-01.pdf
func ReportFilename(resource string, now time.Time) string {
	return fmt.Sprintf("%s-report-%s.pdf", resource, now.Format(dateLayout))
}

var whitespace = regexp.MustCompile(`\s+`)

// ProfileReportFilename names a single intern's report, e.g. intern-profile-Jane-Doe-4.pdf
func ProfileReportFilename(name string, id int) string {
	return "intern-profile-" + whitespace.ReplaceAllString(name, "-") + "-" + strconv.Itoa(id) + ".pdf"
}

// SaveReport writes data to dir/name and returns the full path
func SaveReport(dir, name string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	return path, nil
}
