package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/srstoner21/Cyclistic-Case-Study/internal/config"
	"github.com/srstoner21/Cyclistic-Case-Study/internal/dataprocessing"
	"github.com/srstoner21/Cyclistic-Case-Study/internal/infrastructure"
	"github.com/srstoner21/Cyclistic-Case-Study/pkg/contracts/domain"
)

// columnProfile counts the cells of one source column.
type columnProfile struct {
	Name    string
	Empty   int
	Present int
}

func main() {
	file := flag.String("file", "", "trip export to inspect (.csv or .xlsx)")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: tripprobe -file <trip export>")
		os.Exit(2)
	}

	// Initialize paths first so the log directory exists
	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
		cfg.Logging.FilePath = paths.GetLogPath("tripprobe.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	ctx := infrastructure.EnsureRunID(context.Background())

	table, err := dataprocessing.NewLoader(logger).Load(ctx, *file)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load trip export",
			slog.String("file", *file),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	printProbe(os.Stdout, table)

	if table.Source == domain.SchemaUnknown {
		logger.WarnContext(ctx, config.ErrSchemaUnknown,
			slog.String("file", *file))
		os.Exit(1)
	}
}

// profileColumns counts empty and present cells per source column, in
// header order.
func profileColumns(table *dataprocessing.RawTable) []columnProfile {
	profiles := make([]columnProfile, len(table.Columns))
	for i, col := range table.Columns {
		profiles[i].Name = col
	}
	for _, row := range table.Rows {
		for i, col := range table.Columns {
			if row[col] == nil {
				profiles[i].Empty++
			} else {
				profiles[i].Present++
			}
		}
	}
	return profiles
}

func printProbe(out *os.File, table *dataprocessing.RawTable) {
	fmt.Fprintf(out, "File:    %s\n", table.File)
	fmt.Fprintf(out, "Schema:  %s\n", table.Source)
	fmt.Fprintf(out, "Rows:    %d\n", len(table.Rows))
	fmt.Fprintf(out, "Columns: %d\n\n", len(table.Columns))

	w := tablewriter.NewWriter(out)
	w.SetHeader([]string{"Column", "Present", "Empty"})
	w.SetAutoFormatHeaders(false)
	for _, p := range profileColumns(table) {
		w.Append([]string{p.Name, strconv.Itoa(p.Present), strconv.Itoa(p.Empty)})
	}
	w.Render()
}
