package exporter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/srstoner21/Cyclistic-Case-Study/pkg/contracts/domain"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	// Always format with exactly 2 decimal places for consistency
	// This ensures values like 13.4 appear as 13.40 in CSV
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}

// formatSeconds renders a derived duration in seconds without trailing
// zeros, so whole-second durations stay whole (1783, not 1783.00).
func formatSeconds(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatTimestamp renders a timestamp in the source layout. A missing
// timestamp becomes an empty cell.
func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(domain.TimestampLayout)
}
