package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/banshee-data/trajectory.report/internal/calibration"
	"github.com/banshee-data/trajectory.report/internal/config"
	"github.com/banshee-data/trajectory.report/internal/continuity"
	"github.com/banshee-data/trajectory.report/internal/export"
	"github.com/banshee-data/trajectory.report/internal/monitoring"
	"github.com/banshee-data/trajectory.report/internal/pipeline"
	"github.com/banshee-data/trajectory.report/internal/render"
	"github.com/banshee-data/trajectory.report/internal/report"
	"github.com/banshee-data/trajectory.report/internal/store"
	"github.com/banshee-data/trajectory.report/internal/units"
	"github.com/banshee-data/trajectory.report/internal/video"
	"github.com/banshee-data/trajectory.report/internal/vision"
)

// defaultBallMeters is used when the metres prompt gets unusable input.
const defaultBallMeters = 0.24

type runFlags struct {
	configPath  string
	videoPath   string
	inputDir    string
	outDir      string
	strategy    string
	tracker     string
	bbox        string
	refPixels   float64
	refMeters   float64
	skipSeconds float64
	hideVideo   bool
	noCSV       bool
	noVideo     bool
	noPlots     bool
	dbPath      string
	speedUnits  string
	verbose     bool
	veryVerbose bool

	// set records which flags were given explicitly.
	set map[string]bool
}

func parseRunFlags(args []string, errOut io.Writer) (*runFlags, error) {
	f := &runFlags{set: map[string]bool{}}
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&f.configPath, "config", "", "JSON config file (default "+config.DefaultConfigPath+" if present)")
	fs.StringVar(&f.videoPath, "video", "", "Input video file")
	fs.StringVar(&f.inputDir, "input-dir", "video", "Directory holding exactly one video, used when -video is empty")
	fs.StringVar(&f.outDir, "out-dir", "output", "Directory for CSV, video and plots")
	fs.StringVar(&f.strategy, "strategy", "", "Localizer: segmentation or correlation")
	fs.StringVar(&f.tracker, "tracker", "", "Correlation tracker: csrt, kcf or mil")
	fs.StringVar(&f.bbox, "bbox", "", "Seed box x,y,w,h for correlation tracking")
	fs.Float64Var(&f.refPixels, "ref-px", 0, "Reference object size in pixels")
	fs.Float64Var(&f.refMeters, "ref-m", 0, "Reference object size in metres")
	fs.Float64Var(&f.skipSeconds, "skip", 0, "Seconds to skip at the start of the clip")
	fs.BoolVar(&f.hideVideo, "hide-video", false, "Do not open the live display window")
	fs.BoolVar(&f.noCSV, "no-save-csv", false, "Do not write the trajectory CSV")
	fs.BoolVar(&f.noVideo, "no-save-video", false, "Do not write the annotated video")
	fs.BoolVar(&f.noPlots, "no-plots", false, "Do not write PNG and HTML plots")
	fs.StringVar(&f.dbPath, "db", "", "SQLite run history database (empty disables)")
	fs.StringVar(&f.speedUnits, "speed-units", "", "Units for the printed summary: "+units.GetValidUnitsString())
	fs.BoolVar(&f.verbose, "v", false, "Enable diagnostic logging")
	fs.BoolVar(&f.veryVerbose, "vv", false, "Enable per-frame trace logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// parseBBox parses "x,y,w,h" into a rectangle.
func parseBBox(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("bbox %q: want x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("bbox %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("bbox %q: width and height must be positive", s)
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

// loadConfig reads the config file named by the flags, the default file
// when present, or starts from an empty config.
func loadConfig(f *runFlags) (*config.TrajectoryConfig, error) {
	if f.configPath != "" {
		return config.LoadTrajectoryConfig(f.configPath)
	}
	if _, err := os.Stat(config.DefaultConfigPath); err == nil {
		return config.LoadTrajectoryConfig(config.DefaultConfigPath)
	}
	return config.EmptyTrajectoryConfig(), nil
}

// applyFlags overrides config values with explicitly set flags.
func applyFlags(cfg *config.TrajectoryConfig, f *runFlags) error {
	str := func(v string) *string { return &v }
	num := func(v float64) *float64 { return &v }
	off := func() *bool { return new(bool) }

	if f.set["strategy"] {
		cfg.Strategy = str(f.strategy)
	}
	if f.set["tracker"] {
		cfg.Tracker = str(f.tracker)
	}
	if f.set["bbox"] {
		r, err := parseBBox(f.bbox)
		if err != nil {
			return err
		}
		cfg.SetSeedRegion(r)
	}
	if f.set["ref-px"] {
		cfg.ReferencePixels = num(f.refPixels)
	}
	if f.set["ref-m"] {
		cfg.ReferenceMeters = num(f.refMeters)
	}
	if f.set["skip"] {
		cfg.SkipSeconds = num(f.skipSeconds)
	}
	if f.noCSV {
		cfg.SaveCSV = off()
	}
	if f.noVideo {
		cfg.SaveVideo = off()
	}
	if f.noPlots {
		cfg.SavePlots = off()
	}
	if f.set["db"] {
		cfg.DBPath = str(f.dbPath)
	}
	if f.set["speed-units"] {
		u, err := units.Normalize(f.speedUnits)
		if err != nil {
			return err
		}
		cfg.SpeedUnits = str(u)
	}
	return cfg.Validate()
}

// setupLogging sends ops to w, adds diag with -v and every stream with -vv.
func setupLogging(w io.Writer, verbose, veryVerbose bool) {
	switch {
	case veryVerbose:
		monitoring.SetLegacyLogger(w)
	case verbose:
		monitoring.SetLogWriters(monitoring.LogWriters{Ops: w, Diag: w})
	default:
		monitoring.SetLogWriters(monitoring.LogWriters{Ops: w})
	}
}

func resolveVideo(f *runFlags) (string, error) {
	if f.videoPath != "" {
		return f.videoPath, nil
	}
	return video.FindVideoFile(f.inputDir, video.DefaultExtensions)
}

// promptMeters asks for the reference size in metres, falling back to
// defaultBallMeters on unusable input.
func promptMeters(in io.Reader, out io.Writer, refPixels float64) float64 {
	fmt.Fprintf(out, "Reference measured as %.1f px. Real size in metres (e.g. %.2f): ", refPixels, defaultBallMeters)
	line, _ := bufio.NewReader(in).ReadString('\n')
	v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil || v <= 0 {
		fmt.Fprintf(out, "Invalid value, using %.2f m\n", defaultBallMeters)
		return defaultBallMeters
	}
	return v
}

func handleRun(args []string) int {
	f, err := parseRunFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	setupLogging(os.Stderr, f.verbose, f.veryVerbose)

	cfg, err := loadConfig(f)
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return 1
	}
	if err := applyFlags(cfg, f); err != nil {
		log.Printf("invalid options: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, f); err != nil {
		log.Printf("run failed: %v", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config.TrajectoryConfig, f *runFlags) error {
	videoPath, err := resolveVideo(f)
	if err != nil {
		return err
	}

	capture, err := video.Open(videoPath, video.Options{
		UseDecoderTimestamps: cfg.GetUseDecoderTimestamps(),
		FallbackFPS:          cfg.GetDefaultFPS(),
	})
	if err != nil {
		return err
	}
	if err := capture.SkipSeconds(cfg.GetSkipSeconds()); err != nil {
		capture.Close()
		return fmt.Errorf("skip %.2fs: %w", cfg.GetSkipSeconds(), err)
	}
	src := video.NewPeekSource(capture)
	defer src.Close()

	var display *render.Display
	if !f.hideVideo {
		display = render.NewDisplay("trajectory", 1)
		defer display.Close()
	}

	strategy := cfg.GetStrategy()
	if strategy == vision.StrategyCorrelation && cfg.SeedRegion() == nil {
		if display == nil {
			return fmt.Errorf("%w: pass -bbox or enable the display to select one", continuity.ErrNoSeed)
		}
		first, err := src.Peek()
		if err != nil {
			return fmt.Errorf("read seed frame: %w", err)
		}
		roi := display.SelectROI(first.Mat)
		if roi.Empty() {
			return fmt.Errorf("%w: selection cancelled", continuity.ErrNoSeed)
		}
		cfg.SetSeedRegion(roi)
		if cfg.ReferencePixels == nil {
			measured := true
			cfg.ReferenceFromSeed = &measured
		}
		if ref := cfg.Reference(); ref.Meters <= 0 && ref.Pixels > 0 {
			m := promptMeters(os.Stdin, os.Stdout, ref.Pixels)
			cfg.ReferenceMeters = &m
		}
	}

	ref := cfg.Reference()
	scale := ref.Scale()
	if scale.Enabled() {
		log.Printf("calibration: %.1f px = %.3f m (%s)", ref.Pixels, ref.Meters, scale)
	} else {
		log.Printf("calibration disabled, metric columns will be NaN")
	}

	if err := checkSeed(strategy, cfg.SeedRegion(), src.Size()); err != nil {
		return err
	}

	loc, err := vision.NewLocalizer(strategy, cfg.SegmentationParams(), cfg.CorrelationParams())
	if err != nil {
		return err
	}
	defer loc.Close()

	outs, err := pipeline.NewOutputs(f.outDir, videoPath)
	if err != nil {
		return err
	}

	pc := pipeline.Config{
		Source:     src,
		Localizer:  loc,
		Continuity: continuity.Options{Seed: cfg.SeedRegion(), MaxFailures: cfg.GetMaxFailures()},
		Scale:      scale,
	}

	var csvPath string
	if cfg.GetSaveCSV() {
		csvPath, err = outs.Path(pipeline.SuffixCSV)
		if err != nil {
			return err
		}
		csvFile, err := os.Create(csvPath)
		if err != nil {
			return fmt.Errorf("create csv: %w", err)
		}
		defer csvFile.Close()
		pc.CSV = export.NewCSVWriter(csvFile)
	}

	if cfg.GetSaveVideo() {
		p, err := outs.Path(pipeline.SuffixVideo)
		if err != nil {
			return err
		}
		w, err := video.NewWriter(p, cfg.GetVideoCodec(), src.FPS(), src.Size())
		if err != nil {
			return err
		}
		defer w.Close()
		pc.Video = w
	}
	if display != nil {
		pc.Viewer = display
	}
	if pc.Video != nil || pc.Viewer != nil {
		pc.Annotator = render.NewAnnotator(render.Options{
			TrailLength:   cfg.GetTrailLength(),
			VelocityScale: cfg.GetVelocityArrowScale(),
			AccelScale:    cfg.GetAccelArrowScale(),
			DrawBox:       cfg.GetDrawBox(),
			FPS:           src.FPS(),
		})
	}

	log.Printf("processing %s (%s, %.2f fps, %v, ~%d frames)", videoPath, strategy, src.FPS(), src.Size(), capture.FrameCount())
	res, err := pipeline.Run(ctx, pc)
	if err != nil {
		return err
	}
	if res.Cancelled {
		log.Printf("stopped early after %d frames, writing partial results", len(res.Rows))
	}
	if csvPath != "" {
		log.Printf("wrote %s", csvPath)
	}

	if cfg.GetSavePlots() && len(res.Rows) > 0 {
		if err := savePlots(outs, res, cfg.GetSpeedUnits()); err != nil {
			log.Printf("failed to save plots: %v", err)
		}
	}

	if dbPath := cfg.GetDBPath(); dbPath != "" {
		id, err := saveRun(ctx, dbPath, cfg, videoPath, src, scale, strategy, res)
		if err != nil {
			log.Printf("failed to record run: %v", err)
		} else {
			log.Printf("recorded run %s in %s", id, dbPath)
		}
	}

	printSummary(os.Stdout, res, cfg.GetSpeedUnits())
	return nil
}

// checkSeed rejects a correlation seed that does not fit the frame, so a
// bad -bbox fails before any output file is created.
func checkSeed(strategy vision.Strategy, seed *image.Rectangle, size image.Point) error {
	if strategy != vision.StrategyCorrelation || seed == nil {
		return nil
	}
	if err := vision.ValidateSeed(*seed, image.Rectangle{Max: size}); err != nil {
		return fmt.Errorf("seed %v in %dx%d frame: %w", *seed, size.X, size.Y, err)
	}
	return nil
}

func savePlots(outs pipeline.Outputs, res *pipeline.Result, speedUnits string) error {
	png, err := outs.Path(pipeline.SuffixPlot)
	if err != nil {
		return err
	}
	if err := report.SavePNG(png, res.Rows); err != nil {
		return err
	}
	html, err := outs.Path(pipeline.SuffixChart)
	if err != nil {
		return err
	}
	if err := report.SaveHTML(html, outs.Stem, res.Rows, speedUnits); err != nil {
		return err
	}
	log.Printf("wrote %s and %s", png, html)
	return nil
}

func saveRun(ctx context.Context, dbPath string, cfg *config.TrajectoryConfig, videoPath string,
	src video.Source, scale calibration.Scale, strategy vision.Strategy, res *pipeline.Result) (string, error) {
	db, err := store.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer db.Close()

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	size := src.Size()
	return db.SaveRun(ctx, store.Run{
		VideoPath:      videoPath,
		Strategy:       strategy.String(),
		FPS:            src.FPS(),
		Width:          size.X,
		Height:         size.Y,
		MetersPerPixel: scale.MetersPerPixel(),
		Summary:        res.Summary,
		Elapsed:        res.Elapsed,
		ConfigJSON:     string(cfgJSON),
	}, res.Rows)
}
