package commands

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/bytesize"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/cli/output"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/blob/local"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/catalog/postgres"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/config"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/gc"
	"github.com/spf13/cobra"
)

var (
	gcDryRun bool
	gcOutput string
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Run a full garbage collection pass",
	Long: `Run every collection phase once and report the outcome.

The serve command runs the collector continuously; this one-shot form
is for operations work and for inspecting what a pass would reclaim.

Examples:
  # Collect now
  juststorage gc

  # Report only, remove nothing
  juststorage gc --dry-run

  # Machine-readable report
  juststorage gc --output json`,
	RunE: runGC,
}

func init() {
	gcCmd.Flags().BoolVar(&gcDryRun, "dry-run", false, "Report what would be collected without removing anything")
	gcCmd.Flags().StringVarP(&gcOutput, "output", "o", "table", "Report format (table, json, yaml)")
}

func runGC(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(gcOutput)
	if err != nil {
		return err
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx := cmd.Context()

	catalogStore, err := postgres.New(ctx, cfg.Catalog)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer catalogStore.Close()

	blobs, err := local.New(local.Options{
		HotRoot:       cfg.Storage.HotRoot,
		ColdRoot:      cfg.Storage.ColdRoot,
		DurableWrites: cfg.Storage.DurableWrites,
	})
	if err != nil {
		return fmt.Errorf("failed to open blob storage: %w", err)
	}

	collector := gc.New(gc.Options{
		Blobs:         blobs,
		BlobCatalog:   catalogStore.Blobs(),
		ObjectCatalog: catalogStore.Objects(),
		Config:        cfg.GC,
	})

	stats := collector.RunFull(ctx, gcDryRun)
	if err := printGCReport(format, stats); err != nil {
		return err
	}
	if stats.TotalErrors() > 0 {
		return fmt.Errorf("collection finished with %d errors", stats.TotalErrors())
	}
	return nil
}

func printGCReport(format output.Format, stats *gc.Stats) error {
	printer := output.NewPrinter(os.Stdout, format, true)
	if format != output.FormatTable {
		return printer.Print(stats)
	}

	if stats.DryRun {
		printer.Println("Dry run: nothing was removed.")
	}

	table := output.NewTableData("PHASE", "SCANNED", "DELETED", "RECLAIMED", "ERRORS", "DURATION")
	for _, p := range stats.Phases {
		deleted := strconv.Itoa(p.Deleted)
		if p.Skipped {
			deleted = "skipped"
		}
		table.AddRow(
			p.Phase,
			strconv.Itoa(p.Scanned),
			deleted,
			bytesize.ByteSize(p.ReclaimedBytes).String(),
			strconv.Itoa(p.Errors),
			p.Duration.Round(time.Millisecond).String(),
		)
	}
	if err := printer.Print(table); err != nil {
		return err
	}

	printer.Printf("Total reclaimed: %s, errors: %d\n",
		bytesize.ByteSize(stats.TotalReclaimed()).String(), stats.TotalErrors())
	return nil
}
