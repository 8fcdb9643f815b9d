package dataprocessing

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/srstoner21/Cyclistic-Case-Study/pkg/contracts/domain"
)

// TimestampLayout is the textual timestamp pattern both source generations
// use for ride start and end times.
const TimestampLayout = domain.TimestampLayout

// Deriver computes the calculated fields the filter and the aggregates
// depend on: parsed start/end timestamps and the ride duration in seconds.
// The legacy generation ships a tripduration column that is trusted as
// seconds without recomputation; the current generation derives duration as
// ended_at minus started_at.
type Deriver struct {
	logger *slog.Logger
}

// NewDeriver creates a field deriver. A nil logger falls back to
// slog.Default.
func NewDeriver(logger *slog.Logger) *Deriver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deriver{logger: logger}
}

// Derive returns a new table whose started_at and ended_at cells hold
// time.Time values and whose duration_seconds cells hold float64 seconds.
// A timestamp or duration that fails to parse becomes a missing value and
// is tallied in stats; one bad row never aborts the batch. The legacy
// tripduration column is consumed here and replaced by duration_seconds.
func (d *Deriver) Derive(ctx context.Context, table *RawTable, stats *domain.SourceStats) *RawTable {
	legacy := table.Source == domain.SchemaLegacy

	columns := make([]string, 0, len(table.Columns)+1)
	for _, col := range table.Columns {
		if legacy && col == domain.LegacyColTripDuration {
			continue
		}
		columns = append(columns, col)
	}
	columns = append(columns, domain.ColDurationSeconds)

	rows := make([]Row, 0, len(table.Rows))
	for _, src := range table.Rows {
		row := make(Row, len(src)+1)
		for col, v := range src {
			if legacy && col == domain.LegacyColTripDuration {
				continue
			}
			row[col] = v
		}

		start, startOK := parseTimestamp(src[domain.ColStartedAt])
		if !startOK {
			stats.StartParseFailures++
		}
		if start.IsZero() {
			row[domain.ColStartedAt] = nil
		} else {
			row[domain.ColStartedAt] = start
		}

		end, endOK := parseTimestamp(src[domain.ColEndedAt])
		if !endOK {
			stats.EndParseFailures++
		}
		if end.IsZero() {
			row[domain.ColEndedAt] = nil
		} else {
			row[domain.ColEndedAt] = end
		}

		if legacy {
			seconds, ok := parseSeconds(src[domain.LegacyColTripDuration])
			if !ok {
				stats.BadDurations++
			}
			row[domain.ColDurationSeconds] = seconds
		} else if !start.IsZero() && !end.IsZero() {
			row[domain.ColDurationSeconds] = end.Sub(start).Seconds()
		} else {
			row[domain.ColDurationSeconds] = nil
		}

		rows = append(rows, row)
	}

	d.logger.InfoContext(ctx, "derived ride fields",
		slog.String("schema", string(table.Source)),
		slog.Int("rows", len(rows)),
		slog.Int("start_parse_failures", stats.StartParseFailures),
		slog.Int("end_parse_failures", stats.EndParseFailures),
		slog.Int("bad_durations", stats.BadDurations))

	return &RawTable{Source: table.Source, File: table.File, Columns: columns, Rows: rows}
}

// parseTimestamp turns a raw cell into a time.Time. The second return value
// is false only for a present value that failed to parse; a missing cell is
// a missing timestamp, not a parse failure.
func parseTimestamp(v any) (time.Time, bool) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, true
	case time.Time:
		return val, true
	case string:
		ts, err := time.Parse(TimestampLayout, strings.TrimSpace(val))
		if err != nil {
			return time.Time{}, false
		}
		return ts, true
	default:
		return time.Time{}, false
	}
}

// parseSeconds turns a raw duration cell into float64 seconds. Thousands
// separators are stripped first: legacy exports render long rides as
// "1,783.0". The second return value is false only for a present value that
// failed to parse.
func parseSeconds(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, true
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(val), ",", ""), 64)
		if err != nil {
			return nil, false
		}
		return f, true
	default:
		return nil, false
	}
}
