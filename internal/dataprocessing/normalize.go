package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/srstoner21/Cyclistic-Case-Study/pkg/contracts/domain"
)

// Normalizer maps a raw source table onto the canonical schema: legacy
// columns are renamed to their current-generation names, rider labels are
// remapped onto the canonical vocabulary, and identifier-like fields are
// coerced to a stable text representation on both sides.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a schema normalizer. A nil logger falls back to
// slog.Default.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize returns a new table in the canonical schema; the input table is
// never mutated. Current-generation tables pass through structurally
// unchanged. Rider labels outside the canonical vocabulary pass through
// unchanged and are tallied in stats.NonCanonicalRiders rather than
// rejected.
func (n *Normalizer) Normalize(ctx context.Context, table *RawTable, stats *domain.SourceStats) *RawTable {
	legacy := table.Source == domain.SchemaLegacy

	columns := make([]string, len(table.Columns))
	hasRideID, hasBikeType := false, false
	for i, col := range table.Columns {
		if legacy {
			if canonical, ok := domain.LegacyRename[col]; ok {
				col = canonical
			}
		}
		columns[i] = col
		switch col {
		case domain.ColRideID:
			hasRideID = true
		case domain.ColBikeType:
			hasBikeType = true
		}
	}

	rows := make([]Row, 0, len(table.Rows))
	for _, src := range table.Rows {
		row := make(Row, len(src))
		for col, v := range src {
			if legacy {
				if canonical, ok := domain.LegacyRename[col]; ok {
					col = canonical
				}
			}
			row[col] = v
		}

		if raw, ok := row[domain.ColRiderCategory].(string); ok {
			category, canonical := domain.CanonicalRiderCategory(raw)
			if !canonical {
				if stats.NonCanonicalRiders == nil {
					stats.NonCanonicalRiders = make(map[string]int)
				}
				stats.NonCanonicalRiders[raw]++
			}
			row[domain.ColRiderCategory] = string(category)
		}

		if hasRideID {
			row[domain.ColRideID] = coerceText(row[domain.ColRideID])
		}
		if hasBikeType {
			row[domain.ColBikeType] = coerceText(row[domain.ColBikeType])
		}
		rows = append(rows, row)
	}

	n.logger.InfoContext(ctx, "normalized source schema",
		slog.String("schema", string(table.Source)),
		slog.Int("rows", len(rows)),
		slog.Int("non_canonical_riders", stats.NonCanonicalTotal()))

	return &RawTable{Source: table.Source, File: table.File, Columns: columns, Rows: rows}
}

// coerceText rewrites a cell to its text representation. Identifier columns
// go through this on both sources so that the unifier sees one consistent
// type regardless of how a spreadsheet or export rendered the value.
func coerceText(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return normalizeNumericText(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// normalizeNumericText rewrites integer-valued numeric renderings such as
// "1234567.0" or "1.234567E+06" to their plain decimal form, so the same
// identifier loads identically from a raw export and a spreadsheet round
// trip. Values that do not parse as numbers pass through untouched.
func normalizeNumericText(s string) string {
	if !strings.ContainsAny(s, ".eE") {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
