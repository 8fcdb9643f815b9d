package dataprocessing

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srstoner21/Cyclistic-Case-Study/pkg/contracts/domain"
)

func TestDeriver_CurrentDuration(t *testing.T) {
	ctx := context.Background()
	deriver := NewDeriver(slog.Default())

	tests := []struct {
		name    string
		started any
		ended   any
		want    any
	}{
		{
			name:    "thirty minute ride",
			started: "2020-01-05 10:00:00",
			ended:   "2020-01-05 10:30:00",
			want:    float64(1800),
		},
		{
			name:    "identical timestamps yield zero",
			started: "2020-01-05 11:00:00",
			ended:   "2020-01-05 11:00:00",
			want:    float64(0),
		},
		{
			name:    "end before start yields negative",
			started: "2020-01-05 11:00:00",
			ended:   "2020-01-05 10:59:00",
			want:    float64(-60),
		},
		{
			name:    "missing start yields missing duration",
			started: nil,
			ended:   "2020-01-05 10:30:00",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := &domain.SourceStats{Source: domain.SchemaCurrent}
			table := &RawTable{
				Source:  domain.SchemaCurrent,
				Columns: []string{"ride_id", "started_at", "ended_at"},
				Rows:    []Row{{"ride_id": "A1", "started_at": tt.started, "ended_at": tt.ended}},
			}

			out := deriver.Derive(ctx, table, stats)
			require.Len(t, out.Rows, 1)
			assert.Equal(t, tt.want, out.Rows[0]["duration_seconds"])
			assert.Zero(t, stats.StartParseFailures, "missing values are not parse failures")
		})
	}
}

func TestDeriver_TimestampParsing(t *testing.T) {
	ctx := context.Background()
	deriver := NewDeriver(slog.Default())
	stats := &domain.SourceStats{Source: domain.SchemaCurrent}

	table := &RawTable{
		Source:  domain.SchemaCurrent,
		Columns: []string{"ride_id", "started_at", "ended_at"},
		Rows: []Row{
			{"ride_id": "A1", "started_at": "2020-01-05 10:00:00", "ended_at": "2020-01-05 10:30:00"},
			{"ride_id": "A2", "started_at": "05/01/2020 10:00", "ended_at": "2020-01-05 10:30:00"},
			{"ride_id": "A3", "started_at": "2020-01-05 10:00:00", "ended_at": "garbage"},
		},
	}

	out := deriver.Derive(ctx, table, stats)

	assert.Equal(t, time.Date(2020, 1, 5, 10, 0, 0, 0, time.UTC), out.Rows[0]["started_at"])
	assert.Equal(t, time.Date(2020, 1, 5, 10, 30, 0, 0, time.UTC), out.Rows[0]["ended_at"])

	assert.Nil(t, out.Rows[1]["started_at"], "a failed parse becomes a missing value, never an error")
	assert.Nil(t, out.Rows[1]["duration_seconds"])
	assert.Nil(t, out.Rows[2]["ended_at"])
	assert.Nil(t, out.Rows[2]["duration_seconds"])

	assert.Equal(t, 1, stats.StartParseFailures)
	assert.Equal(t, 1, stats.EndParseFailures)
}

func TestDeriver_LegacyDuration(t *testing.T) {
	ctx := context.Background()
	deriver := NewDeriver(slog.Default())

	tests := []struct {
		name    string
		raw     any
		want    any
		wantBad int
	}{
		{name: "plain seconds", raw: "390.0", want: float64(390)},
		{name: "thousands separator stripped", raw: "1,783.0", want: float64(1783)},
		{name: "integer seconds", raw: "45", want: float64(45)},
		{name: "unparseable tallies and goes missing", raw: "n/a", want: nil, wantBad: 1},
		{name: "missing stays missing without tally", raw: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := &domain.SourceStats{Source: domain.SchemaLegacy}
			table := &RawTable{
				Source:  domain.SchemaLegacy,
				Columns: []string{"ride_id", "started_at", "ended_at", "tripduration"},
				Rows: []Row{{
					"ride_id":      "1001",
					"started_at":   "2019-01-07 08:05:00",
					"ended_at":     "2019-01-07 09:05:00",
					"tripduration": tt.raw,
				}},
			}

			out := deriver.Derive(ctx, table, stats)
			require.Len(t, out.Rows, 1)
			assert.Equal(t, tt.want, out.Rows[0]["duration_seconds"])
			assert.Equal(t, tt.wantBad, stats.BadDurations)
		})
	}
}

func TestDeriver_LegacyTrustsSourceDuration(t *testing.T) {
	ctx := context.Background()
	deriver := NewDeriver(slog.Default())
	stats := &domain.SourceStats{Source: domain.SchemaLegacy}

	// The recorded duration disagrees with the timestamps on purpose: the
	// legacy value is trusted, not recomputed.
	table := &RawTable{
		Source:  domain.SchemaLegacy,
		Columns: []string{"ride_id", "started_at", "ended_at", "tripduration"},
		Rows: []Row{{
			"ride_id":      "1001",
			"started_at":   "2019-01-07 08:05:00",
			"ended_at":     "2019-01-07 09:05:00",
			"tripduration": "120.0",
		}},
	}

	out := deriver.Derive(ctx, table, stats)
	assert.Equal(t, float64(120), out.Rows[0]["duration_seconds"])
}

func TestDeriver_ReplacesTripdurationColumn(t *testing.T) {
	ctx := context.Background()
	deriver := NewDeriver(slog.Default())
	stats := &domain.SourceStats{Source: domain.SchemaLegacy}

	table := &RawTable{
		Source:  domain.SchemaLegacy,
		Columns: []string{"ride_id", "started_at", "ended_at", "tripduration"},
		Rows: []Row{{
			"ride_id":      "1001",
			"started_at":   "2019-01-07 08:05:00",
			"ended_at":     "2019-01-07 09:05:00",
			"tripduration": "3600.0",
		}},
	}

	out := deriver.Derive(ctx, table, stats)

	assert.Equal(t, []string{"ride_id", "started_at", "ended_at", "duration_seconds"}, out.Columns)
	_, present := out.Rows[0]["tripduration"]
	assert.False(t, present, "tripduration is consumed by the deriver")

	// The input table keeps its raw shape.
	assert.Equal(t, "3600.0", table.Rows[0]["tripduration"])
	assert.Equal(t, "2019-01-07 08:05:00", table.Rows[0]["started_at"])
}

func TestDeriver_CurrentKeepsColumnOrder(t *testing.T) {
	ctx := context.Background()
	deriver := NewDeriver(slog.Default())
	stats := &domain.SourceStats{Source: domain.SchemaCurrent}

	table := &RawTable{
		Source:  domain.SchemaCurrent,
		Columns: []string{"ride_id", "started_at", "ended_at", "member_casual"},
		Rows: []Row{{
			"ride_id":       "A1",
			"started_at":    "2020-01-05 10:00:00",
			"ended_at":      "2020-01-05 10:30:00",
			"member_casual": "member",
		}},
	}

	out := deriver.Derive(ctx, table, stats)
	assert.Equal(t, []string{"ride_id", "started_at", "ended_at", "member_casual", "duration_seconds"}, out.Columns)
}
