package dataprocessing

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srstoner21/Cyclistic-Case-Study/pkg/contracts/domain"
)

func TestNormalizer_LegacyRename(t *testing.T) {
	ctx := context.Background()
	normalizer := NewNormalizer(slog.Default())
	stats := &domain.SourceStats{Source: domain.SchemaLegacy}

	table := &RawTable{
		Source: domain.SchemaLegacy,
		Columns: []string{
			"trip_id", "start_time", "end_time", "bikeid", "tripduration",
			"from_station_name", "from_station_id", "to_station_name", "to_station_id",
			"usertype", "gender", "birthyear",
		},
		Rows: []Row{{
			"trip_id":           "1234567",
			"start_time":        "2019-01-07 08:05:00",
			"end_time":          "2019-01-07 09:05:00",
			"bikeid":            "155",
			"tripduration":      "3600.0",
			"from_station_name": "Clark St",
			"from_station_id":   "10",
			"to_station_name":   "State St",
			"to_station_id":     "20",
			"usertype":          "Subscriber",
			"gender":            "Male",
			"birthyear":         "1989",
		}},
	}

	out := normalizer.Normalize(ctx, table, stats)

	assert.Equal(t, []string{
		"ride_id", "started_at", "ended_at", "rideable_type", "tripduration",
		"start_station_name", "start_station_id", "end_station_name", "end_station_id",
		"member_casual", "gender", "birthyear",
	}, out.Columns, "every legacy column maps to its canonical name, tripduration stays for the deriver")

	row := out.Rows[0]
	assert.Equal(t, "1234567", row["ride_id"])
	assert.Equal(t, "155", row["rideable_type"])
	assert.Equal(t, "Clark St", row["start_station_name"])
	assert.Equal(t, "State St", row["end_station_name"])
	assert.Equal(t, "member", row["member_casual"])
	assert.Equal(t, "3600.0", row["tripduration"], "raw duration passes through untouched")
	assert.Equal(t, "1989", row["birthyear"])
}

func TestNormalizer_RiderRemap(t *testing.T) {
	ctx := context.Background()
	normalizer := NewNormalizer(slog.Default())

	tests := []struct {
		name         string
		raw          any
		want         any
		wantNonCanon int
	}{
		{name: "Subscriber maps to member", raw: "Subscriber", want: "member"},
		{name: "Customer maps to casual", raw: "Customer", want: "casual"},
		{name: "member passes through", raw: "member", want: "member"},
		{name: "casual passes through", raw: "casual", want: "casual"},
		{name: "unanticipated value passes through and is counted", raw: "Student", want: "Student", wantNonCanon: 1},
		{name: "missing value stays missing", raw: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := &domain.SourceStats{Source: domain.SchemaLegacy}
			table := &RawTable{
				Source:  domain.SchemaLegacy,
				Columns: []string{"trip_id", "usertype"},
				Rows:    []Row{{"trip_id": "1", "usertype": tt.raw}},
			}

			out := normalizer.Normalize(ctx, table, stats)
			assert.Equal(t, tt.want, out.Rows[0]["member_casual"])
			assert.Equal(t, tt.wantNonCanon, stats.NonCanonicalTotal())
		})
	}
}

func TestNormalizer_NonCanonicalTally(t *testing.T) {
	ctx := context.Background()
	normalizer := NewNormalizer(slog.Default())
	stats := &domain.SourceStats{Source: domain.SchemaLegacy}

	table := &RawTable{
		Source:  domain.SchemaLegacy,
		Columns: []string{"trip_id", "usertype"},
		Rows: []Row{
			{"trip_id": "1", "usertype": "Student"},
			{"trip_id": "2", "usertype": "Student"},
			{"trip_id": "3", "usertype": "Dependent"},
			{"trip_id": "4", "usertype": "Subscriber"},
		},
	}

	normalizer.Normalize(ctx, table, stats)
	assert.Equal(t, 2, stats.NonCanonicalRiders["Student"])
	assert.Equal(t, 1, stats.NonCanonicalRiders["Dependent"])
	assert.Equal(t, 3, stats.NonCanonicalTotal())
}

func TestNormalizer_CurrentSchemaIdentity(t *testing.T) {
	ctx := context.Background()
	normalizer := NewNormalizer(slog.Default())
	stats := &domain.SourceStats{Source: domain.SchemaCurrent}

	table := &RawTable{
		Source:  domain.SchemaCurrent,
		Columns: []string{"ride_id", "rideable_type", "started_at", "ended_at", "start_station_name", "member_casual"},
		Rows: []Row{{
			"ride_id":            "EACB19130B0CDA4A",
			"rideable_type":      "docked_bike",
			"started_at":         "2020-01-05 10:00:00",
			"ended_at":           "2020-01-05 10:30:00",
			"start_station_name": "Clark St",
			"member_casual":      "member",
		}},
	}

	out := normalizer.Normalize(ctx, table, stats)

	assert.Equal(t, table.Columns, out.Columns, "current schema needs no structural remap")
	assert.Equal(t, table.Rows[0], out.Rows[0])
	assert.Zero(t, stats.NonCanonicalTotal())
}

func TestNormalizer_InputNotMutated(t *testing.T) {
	ctx := context.Background()
	normalizer := NewNormalizer(slog.Default())
	stats := &domain.SourceStats{Source: domain.SchemaLegacy}

	table := &RawTable{
		Source:  domain.SchemaLegacy,
		Columns: []string{"trip_id", "usertype"},
		Rows:    []Row{{"trip_id": "1234567.0", "usertype": "Subscriber"}},
	}

	normalizer.Normalize(ctx, table, stats)

	assert.Equal(t, []string{"trip_id", "usertype"}, table.Columns)
	assert.Equal(t, "Subscriber", table.Rows[0]["usertype"])
	assert.Equal(t, "1234567.0", table.Rows[0]["trip_id"])
}

func TestCoerceText(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "plain integer text unchanged", in: "1234567", want: "1234567"},
		{name: "float rendering normalizes", in: "1234567.0", want: "1234567"},
		{name: "spreadsheet scientific notation normalizes", in: "1.234567E+06", want: "1234567"},
		{name: "alphanumeric id unchanged", in: "EACB19130B0CDA4A", want: "EACB19130B0CDA4A"},
		{name: "word with e unchanged", in: "electric_bike", want: "electric_bike"},
		{name: "fractional value unchanged", in: "123.45", want: "123.45"},
		{name: "missing stays missing", in: nil, want: nil},
		{name: "typed float formats plainly", in: float64(1234567), want: "1234567"},
		{name: "typed int formats plainly", in: 42, want: "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceText(tt.in))
		})
	}
}

func TestNormalizer_CoercesIdentifierColumns(t *testing.T) {
	ctx := context.Background()
	normalizer := NewNormalizer(slog.Default())

	t.Run("legacy", func(t *testing.T) {
		stats := &domain.SourceStats{Source: domain.SchemaLegacy}
		table := &RawTable{
			Source:  domain.SchemaLegacy,
			Columns: []string{"trip_id", "bikeid", "usertype"},
			Rows:    []Row{{"trip_id": "1234567.0", "bikeid": "155.0", "usertype": "Customer"}},
		}

		out := normalizer.Normalize(ctx, table, stats)
		require.Len(t, out.Rows, 1)
		assert.Equal(t, "1234567", out.Rows[0]["ride_id"])
		assert.Equal(t, "155", out.Rows[0]["rideable_type"])
	})

	t.Run("current", func(t *testing.T) {
		stats := &domain.SourceStats{Source: domain.SchemaCurrent}
		table := &RawTable{
			Source:  domain.SchemaCurrent,
			Columns: []string{"ride_id", "rideable_type", "member_casual"},
			Rows:    []Row{{"ride_id": "1234567.0", "rideable_type": "docked_bike", "member_casual": "casual"}},
		}

		out := normalizer.Normalize(ctx, table, stats)
		require.Len(t, out.Rows, 1)
		assert.Equal(t, "1234567", out.Rows[0]["ride_id"], "both sides must coerce the same way for the unifier")
		assert.Equal(t, "docked_bike", out.Rows[0]["rideable_type"])
	})
}
