package dataprocessing

import (
	"context"
	"log/slog"

	"github.com/srstoner21/Cyclistic-Case-Study/pkg/contracts/domain"
)

// MinDurationSeconds is the retention threshold: a ride must last strictly
// longer than this to count as a real trip rather than a dock re-rack or a
// false start.
const MinDurationSeconds = 60

// RowFilter retains the rows that can contribute to ride statistics and
// drops the geolocation columns no aggregate reads. Nothing else is
// validated here; outlier handling beyond the duration threshold is the
// consumer's business.
type RowFilter struct {
	logger *slog.Logger
}

// NewRowFilter creates a row filter. A nil logger falls back to
// slog.Default.
func NewRowFilter(logger *slog.Logger) *RowFilter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RowFilter{logger: logger}
}

// Filter returns a new table holding only the retained rows. A row is
// retained iff its duration is present and greater than 60 seconds and both
// station names are present. Dropped rows are tallied against the first
// clause they fail. Filtering an already filtered table changes nothing.
func (f *RowFilter) Filter(ctx context.Context, table *RawTable, stats *domain.SourceStats) *RawTable {
	geo := make(map[string]struct{}, len(domain.GeoColumns))
	for _, col := range domain.GeoColumns {
		geo[col] = struct{}{}
	}

	columns := make([]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		if _, drop := geo[col]; !drop {
			columns = append(columns, col)
		}
	}

	rows := make([]Row, 0, len(table.Rows))
	for _, src := range table.Rows {
		duration, ok := src[domain.ColDurationSeconds].(float64)
		if !ok || duration <= MinDurationSeconds {
			stats.DroppedDuration++
			continue
		}
		if !hasText(src[domain.ColStartStationName]) || !hasText(src[domain.ColEndStationName]) {
			stats.DroppedStation++
			continue
		}

		row := make(Row, len(columns))
		for col, v := range src {
			if _, drop := geo[col]; !drop {
				row[col] = v
			}
		}
		rows = append(rows, row)
	}
	stats.RowsRetained = len(rows)

	f.logger.InfoContext(ctx, "filtered trip rows",
		slog.String("schema", string(table.Source)),
		slog.Int("retained", len(rows)),
		slog.Int("dropped_duration", stats.DroppedDuration),
		slog.Int("dropped_station", stats.DroppedStation))

	return &RawTable{Source: table.Source, File: table.File, Columns: columns, Rows: rows}
}

func hasText(v any) bool {
	s, ok := v.(string)
	return ok && s != ""
}
