// Command report renders the dashboard aggregates for a filter spec in the
// terminal, without the web server.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ops-dashboard/internal/dataset"
	"ops-dashboard/internal/metrics"
)

var (
	csvPath     string
	startDate   string
	endDate     string
	category    string
	channel     string
	topN        int
	threshold   int
	granularity string
	format      string
)

func main() {
	root := &cobra.Command{
		Use:           "report",
		Short:         "Render transaction analytics for a filter spec",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	root.Flags().StringVar(&csvPath, "csv", "data.csv", "path to the transactions CSV")
	root.Flags().StringVar(&startDate, "start", "", "start date (YYYY-MM-DD)")
	root.Flags().StringVar(&endDate, "end", "", "end date (YYYY-MM-DD)")
	root.Flags().StringVar(&category, "category", "", "category filter (empty or All means any)")
	root.Flags().StringVar(&channel, "channel", "", "channel filter (empty or All means any)")
	root.Flags().IntVar(&topN, "top", 8, "top product count (3-20)")
	root.Flags().IntVar(&threshold, "threshold", 10, "low stock threshold")
	root.Flags().StringVar(&granularity, "granularity", "month", "revenue series bucket: day, week or month")
	root.Flags().StringVar(&format, "format", "table", "output format: table, json or csv")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	spec := dataset.FilterSpec{Category: category, Channel: channel}
	var err error
	if spec.Start, err = parseDateFlag(startDate); err != nil {
		return err
	}
	if spec.End, err = parseDateFlag(endDate); err != nil {
		return err
	}
	gran, err := metrics.ParseGranularity(granularity)
	if err != nil {
		return err
	}
	if threshold < 0 {
		return fmt.Errorf("threshold must be >= 0, got %d", threshold)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	store := dataset.NewStore(logger)

	full, err := store.Load(cmd.Context(), csvPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	filtered := dataset.Filter(full, spec)

	return render(os.Stdout, full, filtered, renderOptions{
		topN:        metrics.ClampTopN(topN),
		threshold:   threshold,
		granularity: gran,
		format:      format,
	})
}

func parseDateFlag(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", v)
	}
	return t, nil
}
