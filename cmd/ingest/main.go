package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"statfeed/adapters/excel"
	"statfeed/adapters/postgres"
	"statfeed/adapters/valet"
	"statfeed/adapters/wds"
	"statfeed/app"
	"statfeed/domain/cube"
	"statfeed/internal"
	"statfeed/internal/config"
	"statfeed/internal/migration"
)

const dateLayout = "2006-01-02"

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		internal.DefaultLogger.Debug("no .env file found, using system environment variables")
	}

	rootCmd := &cobra.Command{
		Use:   "statfeed",
		Short: "Fetch economic indicator tables from their providers into Postgres",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newCreateCmd(),
		newPreviewCmd(),
		newExportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var startDate, endDate string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch all datasets and upsert them into existing tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), startDate, endDate, false)
		},
	}
	addRangeFlags(cmd, &startDate, &endDate)
	return cmd
}

func newCreateCmd() *cobra.Command {
	var startDate, endDate string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the output tables, then fetch and load all datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), startDate, endDate, true)
		},
	}
	addRangeFlags(cmd, &startDate, &endDate)
	return cmd
}

func newPreviewCmd() *cobra.Command {
	var dimension string

	cmd := &cobra.Command{
		Use:   "preview [pid]",
		Short: "Print a cube's dimensions, or one dimension's members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pid int
			if _, err := fmt.Sscanf(args[0], "%d", &pid); err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			return runPreview(cmd.Context(), cube.ProductID(pid), dimension)
		},
	}
	cmd.Flags().StringVar(&dimension, "dimension", "", "Dimension name to list members for")
	return cmd
}

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ingested tables to an .xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), output)
		},
	}
	cmd.Flags().StringVar(&output, "output", "statfeed.xlsx", "Workbook path to write")
	return cmd
}

func addRangeFlags(cmd *cobra.Command, startDate, endDate *string) {
	cmd.Flags().StringVar(startDate, "start-date", "", "Start of reference-period range (YYYY-MM-DD)")
	cmd.Flags().StringVar(endDate, "end-date", "", "End of reference-period range (YYYY-MM-DD)")
}

func runIngest(ctx context.Context, startDate, endDate string, createTables bool) error {
	log := internal.DefaultLogger

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	start, end, err := resolveRange(cfg, startDate, endDate)
	if err != nil {
		return err
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if createTables {
		log.Info("creating output tables")
		if err := migration.NewRunner().Run(ctx, db); err != nil {
			return err
		}
	}

	wdsClient := wds.NewClient(cfg.Provider.WDSBaseURL, cfg.Provider.HTTPTimeout)
	valetClient := valet.NewClient(cfg.Provider.ValetBaseURL, cfg.Provider.HTTPTimeout)

	tables := app.NewTableService(wdsClient, wdsClient, wdsClient, log)
	datasets := app.NewDatasets(tables, wdsClient, valetClient, log)
	ingest := app.NewIngestService(datasets, postgres.NewTableRepository(db), log)

	return ingest.Run(ctx, start, end)
}

func runPreview(ctx context.Context, pid cube.ProductID, dimension string) error {
	cfg := &config.Config{}
	if loaded, err := config.Load(); err == nil {
		cfg = loaded
	}
	timeout := cfg.Provider.HTTPTimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	client := wds.NewClient(cfg.Provider.WDSBaseURL, timeout)
	meta, err := client.CubeMetadata(ctx, pid)
	if err != nil {
		return err
	}

	if dimension != "" {
		dim, ok := meta.Dimensions[dimension]
		if !ok {
			return fmt.Errorf("%q is not a dimension of product %d", dimension, pid)
		}
		members := make([]string, 0, len(dim.Members))
		for name := range dim.Members {
			members = append(members, name)
		}
		sort.Strings(members)
		for _, name := range members {
			fmt.Printf("%s\t%s\n", name, dim.Members[name])
		}
		return nil
	}

	names := make([]string, 0, len(meta.Dimensions))
	for name := range meta.Dimensions {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return meta.Dimensions[names[i]].Position < meta.Dimensions[names[j]].Position
	})
	for _, name := range names {
		fmt.Printf("%d\t%s\n", meta.Dimensions[name].Position, name)
	}
	return nil
}

func runExport(ctx context.Context, output string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	tables := []string{
		app.TableForeignExchange,
		app.TableLabourForce,
		app.TableFuelPrice,
		app.TableTradeIndex,
		app.TableFoodCPI,
	}
	if err := excel.NewExporter(db).Export(ctx, tables, output); err != nil {
		return err
	}
	internal.DefaultLogger.Info("wrote %s", output)
	return nil
}

func resolveRange(cfg *config.Config, startDate, endDate string) (time.Time, time.Time, error) {
	start, end := cfg.Range.Start, cfg.Range.End
	var err error
	if startDate != "" {
		if start, err = time.Parse(dateLayout, startDate); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --start-date %q (use YYYY-MM-DD)", startDate)
		}
	}
	if endDate != "" {
		if end, err = time.Parse(dateLayout, endDate); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end-date %q (use YYYY-MM-DD)", endDate)
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s precedes start date %s", end.Format(dateLayout), start.Format(dateLayout))
	}
	return start, end, nil
}
