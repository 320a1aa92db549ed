package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/trajectory.report/internal/export"
	"github.com/banshee-data/trajectory.report/internal/monitoring"
	"github.com/banshee-data/trajectory.report/internal/report"
	"github.com/banshee-data/trajectory.report/internal/store"
	"github.com/banshee-data/trajectory.report/internal/units"
)

const defaultDBPath = "trajectory_runs.db"

// openHistory opens the run history and refuses a database left dirty by
// an interrupted migration.
func openHistory(path string) (*store.DB, error) {
	db, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	version, dirty, err := db.MigrateVersion()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		db.Close()
		return nil, fmt.Errorf("%s: schema version %d is dirty", path, version)
	}
	monitoring.Diagf("run history %s at schema version %d", path, version)
	return db, nil
}

func handleRuns(args []string) int {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	dbPath := fs.String("db", defaultDBPath, "SQLite run history database")
	limit := fs.Int("limit", 20, "Maximum runs to list (0 for all)")
	if err := fs.Parse(args); err != nil {
		return exitCode(err)
	}

	db, err := openHistory(*dbPath)
	if err != nil {
		log.Printf("failed to open run history: %v", err)
		return 1
	}
	defer db.Close()

	runs, err := db.ListRuns(context.Background(), *limit)
	if err != nil {
		log.Printf("failed to list runs: %v", err)
		return 1
	}
	writeRunTable(os.Stdout, runs)
	return 0
}

func writeRunTable(w io.Writer, runs []store.Run) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSTRATEGY\tFRAMES\tDETECTED\tMAX SPEED\tVIDEO")
	for _, r := range runs {
		maxSpeed := fmt.Sprintf("%.1f px/s", r.Summary.Pixel.MaxSpeed)
		if r.Summary.MetricValid {
			maxSpeed = fmt.Sprintf("%.2f m/s", r.Summary.Metric.MaxSpeed)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Strategy,
			r.Summary.Frames, r.Summary.Detections, maxSpeed, r.VideoPath)
	}
	tw.Flush()
}

func handleShow(args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	dbPath := fs.String("db", defaultDBPath, "SQLite run history database")
	csvPath := fs.String("csv", "", "Re-export the stored rows to this CSV file")
	htmlPath := fs.String("html", "", "Render the stored rows as an HTML chart")
	speedUnits := fs.String("speed-units", units.MPS, "Units for speeds: "+units.GetValidUnitsString())
	if err := fs.Parse(args); err != nil {
		return exitCode(err)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: trajectory show [options] <run-id>")
		return 2
	}
	unit, err := units.Normalize(*speedUnits)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	db, err := openHistory(*dbPath)
	if err != nil {
		log.Printf("failed to open run history: %v", err)
		return 1
	}
	defer db.Close()

	ctx := context.Background()
	id := fs.Arg(0)
	r, err := db.GetRun(ctx, id)
	if err != nil {
		log.Printf("failed to load run %s: %v", id, err)
		return 1
	}

	fmt.Printf("Run %s\n", r.ID)
	fmt.Printf("Created: %s\n", r.CreatedAt.Local().Format(time.DateTime))
	fmt.Printf("Video: %s (%dx%d @ %.2f fps)\n", r.VideoPath, r.Width, r.Height, r.FPS)
	fmt.Printf("Strategy: %s\n", r.Strategy)
	if r.MetersPerPixel > 0 {
		fmt.Printf("Scale: %.6f m/px\n", r.MetersPerPixel)
	}
	fmt.Printf("Elapsed: %s\n", r.Elapsed)
	writeSummary(os.Stdout, r.Summary, unit)

	if *csvPath == "" && *htmlPath == "" {
		return 0
	}
	rows, err := db.RunRows(ctx, id)
	if err != nil {
		log.Printf("failed to load rows: %v", err)
		return 1
	}
	if *csvPath != "" {
		if err := export.WriteCSVFile(*csvPath, rows); err != nil {
			log.Printf("failed to write csv: %v", err)
			return 1
		}
		log.Printf("wrote %d rows to %s", len(rows), *csvPath)
	}
	if *htmlPath != "" {
		if err := report.SaveHTML(*htmlPath, "run "+r.ID, rows, unit); err != nil {
			log.Printf("failed to write chart: %v", err)
			return 1
		}
		log.Printf("wrote %s", *htmlPath)
	}
	return 0
}

func handleRm(args []string) int {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	dbPath := fs.String("db", defaultDBPath, "SQLite run history database")
	if err := fs.Parse(args); err != nil {
		return exitCode(err)
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: trajectory rm [options] <run-id>...")
		return 2
	}

	db, err := openHistory(*dbPath)
	if err != nil {
		log.Printf("failed to open run history: %v", err)
		return 1
	}
	defer db.Close()

	if err := removeRuns(context.Background(), db, fs.Args(), os.Stdout); err != nil {
		log.Printf("failed to remove runs: %v", err)
		return 1
	}
	return 0
}

// removeRuns deletes each id, reporting every removal. It keeps going past
// unknown ids and returns the joined errors.
func removeRuns(ctx context.Context, db *store.DB, ids []string, out io.Writer) error {
	var errs []error
	for _, id := range ids {
		if err := db.DeleteRun(ctx, id); err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "removed %s\n", id)
	}
	return errors.Join(errs...)
}

func exitCode(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	return 2
}
