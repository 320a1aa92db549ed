package config

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/banshee-data/trajectory.report/internal/calibration"
	"github.com/banshee-data/trajectory.report/internal/units"
	"github.com/banshee-data/trajectory.report/internal/vision"
)

// DefaultConfigPath is the path to the canonical defaults file.
const DefaultConfigPath = "config/trajectory.defaults.json"

// TrajectoryConfig is the root configuration for a trajectory run.
// Every field is optional; Get* accessors supply defaults for absent
// fields, so partial files are safe.
type TrajectoryConfig struct {
	// Localizer selection
	Strategy    *string `json:"strategy,omitempty"` // "segmentation" or "correlation"
	Tracker     *string `json:"tracker,omitempty"`  // "csrt", "kcf" or "mil"
	SeedBox     *[]int  `json:"seed_box,omitempty"` // x, y, width, height
	MaxFailures *int    `json:"max_failures,omitempty"`

	// Segmentation params
	BlurKernel          *int       `json:"blur_kernel,omitempty"`
	HSVLower            *[]float64 `json:"hsv_lower,omitempty"`
	HSVUpper            *[]float64 `json:"hsv_upper,omitempty"`
	MorphKernel         *int       `json:"morph_kernel,omitempty"`
	MorphIterations     *int       `json:"morph_iterations,omitempty"`
	MinArea             *float64   `json:"min_area,omitempty"`
	MaxArea             *float64   `json:"max_area,omitempty"`
	FilterByCircularity *bool      `json:"filter_by_circularity,omitempty"`
	MinCircularity      *float64   `json:"min_circularity,omitempty"`
	MaxCircularity      *float64   `json:"max_circularity,omitempty"`
	FilterByConvexity   *bool      `json:"filter_by_convexity,omitempty"`
	MinConvexity        *float64   `json:"min_convexity,omitempty"`
	MaxConvexity        *float64   `json:"max_convexity,omitempty"`
	FilterByInertia     *bool      `json:"filter_by_inertia,omitempty"`
	MinInertiaRatio     *float64   `json:"min_inertia_ratio,omitempty"`
	MaxInertiaRatio     *float64   `json:"max_inertia_ratio,omitempty"`

	// Calibration
	ReferencePixels   *float64 `json:"reference_pixels,omitempty"`
	ReferenceMeters   *float64 `json:"reference_meters,omitempty"`
	ReferenceFromSeed *bool    `json:"reference_from_seed,omitempty"`

	// Video input
	DefaultFPS           *float64 `json:"default_fps,omitempty"`
	UseDecoderTimestamps *bool    `json:"use_decoder_timestamps,omitempty"`
	SkipSeconds          *float64 `json:"skip_seconds,omitempty"`

	// Annotation
	TrailLength        *int     `json:"trail_length,omitempty"`
	VelocityArrowScale *float64 `json:"velocity_arrow_scale,omitempty"`
	AccelArrowScale    *float64 `json:"accel_arrow_scale,omitempty"`
	DrawBox            *bool    `json:"draw_box,omitempty"`
	VideoCodec         *string  `json:"video_codec,omitempty"`

	// Outputs
	SaveCSV    *bool   `json:"save_csv,omitempty"`
	SaveVideo  *bool   `json:"save_video,omitempty"`
	SavePlots  *bool   `json:"save_plots,omitempty"`
	SpeedUnits *string `json:"speed_units,omitempty"`
	DBPath     *string `json:"db_path,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTrajectoryConfig returns a TrajectoryConfig with all fields nil.
func EmptyTrajectoryConfig() *TrajectoryConfig {
	return &TrajectoryConfig{}
}

// LoadTrajectoryConfig loads a TrajectoryConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadTrajectoryConfig(path string) (*TrajectoryConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTrajectoryConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root. Panics if the file
// cannot be loaded; intended for test setup.
func MustLoadDefaultConfig() *TrajectoryConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/<pkg>/
		"../../../" + DefaultConfigPath, // from cmd/<bin>/ subdirs
	}
	for _, path := range candidates {
		if cfg, err := LoadTrajectoryConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that set values are usable. Calibration references are
// not validated: non-positive values disable metric output.
func (c *TrajectoryConfig) Validate() error {
	if c.Strategy != nil {
		if _, err := vision.ParseStrategy(*c.Strategy); err != nil {
			return err
		}
	}
	if c.Tracker != nil {
		if _, err := vision.ParseTrackerKind(*c.Tracker); err != nil {
			return err
		}
	}
	if c.SeedBox != nil {
		b := *c.SeedBox
		if len(b) != 4 {
			return fmt.Errorf("seed_box must be [x, y, width, height], got %d values", len(b))
		}
		if b[0] < 0 || b[1] < 0 || b[2] <= 0 || b[3] <= 0 {
			return fmt.Errorf("seed_box must have non-negative origin and positive size, got %v", b)
		}
	}
	if c.MaxFailures != nil && *c.MaxFailures < 1 {
		return fmt.Errorf("max_failures must be at least 1, got %d", *c.MaxFailures)
	}
	if err := validateHSV("hsv_lower", c.HSVLower); err != nil {
		return err
	}
	if err := validateHSV("hsv_upper", c.HSVUpper); err != nil {
		return err
	}
	if c.DefaultFPS != nil && *c.DefaultFPS <= 0 {
		return fmt.Errorf("default_fps must be positive, got %f", *c.DefaultFPS)
	}
	if c.SkipSeconds != nil && *c.SkipSeconds < 0 {
		return fmt.Errorf("skip_seconds must be non-negative, got %f", *c.SkipSeconds)
	}
	if c.TrailLength != nil && *c.TrailLength < 0 {
		return fmt.Errorf("trail_length must be non-negative, got %d", *c.TrailLength)
	}
	if c.SpeedUnits != nil && !units.IsValid(*c.SpeedUnits) {
		return fmt.Errorf("speed_units must be one of %s, got %q", units.GetValidUnitsString(), *c.SpeedUnits)
	}
	// Range checks on the derived params catch even kernels, inverted
	// bounds and the like.
	if err := c.SegmentationParams().Validate(); err != nil {
		return err
	}
	return nil
}

func validateHSV(name string, v *[]float64) error {
	if v == nil {
		return nil
	}
	if len(*v) != 3 {
		return fmt.Errorf("%s must have 3 components, got %d", name, len(*v))
	}
	h, s, val := (*v)[0], (*v)[1], (*v)[2]
	if h < 0 || h > 179 || s < 0 || s > 255 || val < 0 || val > 255 {
		return fmt.Errorf("%s out of range (H 0-179, S/V 0-255): %v", name, *v)
	}
	return nil
}

// GetStrategy returns the localizer strategy, defaulting to segmentation.
// Validate has already rejected unknown names.
func (c *TrajectoryConfig) GetStrategy() vision.Strategy {
	if c.Strategy == nil {
		return vision.StrategySegmentation
	}
	s, err := vision.ParseStrategy(*c.Strategy)
	if err != nil {
		return vision.StrategySegmentation
	}
	return s
}

// GetTracker returns the correlation tracker kind.
func (c *TrajectoryConfig) GetTracker() vision.TrackerKind {
	if c.Tracker == nil {
		return vision.TrackerCSRT
	}
	k, err := vision.ParseTrackerKind(*c.Tracker)
	if err != nil {
		return vision.TrackerCSRT
	}
	return k
}

// GetMaxFailures returns the max_failures value or the default.
func (c *TrajectoryConfig) GetMaxFailures() int {
	if c.MaxFailures == nil {
		return 1
	}
	return *c.MaxFailures
}

// SeedRegion returns the configured seed box, or nil when unset.
func (c *TrajectoryConfig) SeedRegion() *image.Rectangle {
	if c.SeedBox == nil || len(*c.SeedBox) != 4 {
		return nil
	}
	b := *c.SeedBox
	r := image.Rect(b[0], b[1], b[0]+b[2], b[1]+b[3])
	return &r
}

// SetSeedRegion stores r as the seed box.
func (c *TrajectoryConfig) SetSeedRegion(r image.Rectangle) {
	b := []int{r.Min.X, r.Min.Y, r.Dx(), r.Dy()}
	c.SeedBox = &b
}

func hsvOr(v *[]float64, def vision.HSV) vision.HSV {
	if v == nil || len(*v) != 3 {
		return def
	}
	return vision.HSV{H: (*v)[0], S: (*v)[1], V: (*v)[2]}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func float64Or(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// SegmentationParams builds the segmentation localizer params.
func (c *TrajectoryConfig) SegmentationParams() vision.SegmentationParams {
	p := vision.DefaultSegmentationParams()
	p.BlurKernel = intOr(c.BlurKernel, p.BlurKernel)
	p.Lower = hsvOr(c.HSVLower, p.Lower)
	p.Upper = hsvOr(c.HSVUpper, p.Upper)
	p.MorphKernel = intOr(c.MorphKernel, p.MorphKernel)
	p.MorphIterations = intOr(c.MorphIterations, p.MorphIterations)

	p.Filter.Area = vision.Range{
		Enabled: true,
		Min:     float64Or(c.MinArea, p.Filter.Area.Min),
		Max:     float64Or(c.MaxArea, p.Filter.Area.Max),
	}
	p.Filter.Circularity = vision.Range{
		Enabled: boolOr(c.FilterByCircularity, false),
		Min:     float64Or(c.MinCircularity, 0.6),
		Max:     float64Or(c.MaxCircularity, 1),
	}
	p.Filter.Convexity = vision.Range{
		Enabled: boolOr(c.FilterByConvexity, false),
		Min:     float64Or(c.MinConvexity, 0.8),
		Max:     float64Or(c.MaxConvexity, 1),
	}
	p.Filter.InertiaRatio = vision.Range{
		Enabled: boolOr(c.FilterByInertia, false),
		Min:     float64Or(c.MinInertiaRatio, 0.4),
		Max:     float64Or(c.MaxInertiaRatio, 1),
	}
	return p
}

// CorrelationParams builds the correlation localizer params.
func (c *TrajectoryConfig) CorrelationParams() vision.CorrelationParams {
	return vision.CorrelationParams{Tracker: c.GetTracker()}
}

// Reference returns the calibration reference. When reference_from_seed
// is set and a seed box exists, the pixel size is measured from the box.
func (c *TrajectoryConfig) Reference() calibration.Reference {
	ref := calibration.Reference{
		Pixels: float64Or(c.ReferencePixels, 0),
		Meters: float64Or(c.ReferenceMeters, 0),
	}
	if c.GetReferenceFromSeed() {
		if r := c.SeedRegion(); r != nil {
			ref.Pixels = calibration.ReferenceFromBox(*r)
		}
	}
	return ref
}

// GetReferenceFromSeed returns the reference_from_seed value or the default.
func (c *TrajectoryConfig) GetReferenceFromSeed() bool {
	return boolOr(c.ReferenceFromSeed, false)
}

// GetDefaultFPS returns the fallback frame rate.
func (c *TrajectoryConfig) GetDefaultFPS() float64 {
	return float64Or(c.DefaultFPS, 30.0)
}

// GetUseDecoderTimestamps returns the use_decoder_timestamps value or the default.
func (c *TrajectoryConfig) GetUseDecoderTimestamps() bool {
	return boolOr(c.UseDecoderTimestamps, false)
}

// GetSkipSeconds returns the skip_seconds value or the default.
func (c *TrajectoryConfig) GetSkipSeconds() float64 {
	return float64Or(c.SkipSeconds, 0)
}

// GetTrailLength returns the trail_length value or the default.
func (c *TrajectoryConfig) GetTrailLength() int {
	return intOr(c.TrailLength, 50)
}

// GetVelocityArrowScale returns the velocity_arrow_scale value or the default.
func (c *TrajectoryConfig) GetVelocityArrowScale() float64 {
	return float64Or(c.VelocityArrowScale, 10)
}

// GetAccelArrowScale returns the accel_arrow_scale value or the default.
func (c *TrajectoryConfig) GetAccelArrowScale() float64 {
	return float64Or(c.AccelArrowScale, 10)
}

// GetDrawBox returns the draw_box value or the default.
func (c *TrajectoryConfig) GetDrawBox() bool {
	return boolOr(c.DrawBox, true)
}

// GetVideoCodec returns the video_codec value or the default.
func (c *TrajectoryConfig) GetVideoCodec() string {
	if c.VideoCodec == nil || *c.VideoCodec == "" {
		return "mp4v"
	}
	return *c.VideoCodec
}

// GetSaveCSV returns the save_csv value or the default.
func (c *TrajectoryConfig) GetSaveCSV() bool { return boolOr(c.SaveCSV, true) }

// GetSaveVideo returns the save_video value or the default.
func (c *TrajectoryConfig) GetSaveVideo() bool { return boolOr(c.SaveVideo, true) }

// GetSavePlots returns the save_plots value or the default.
func (c *TrajectoryConfig) GetSavePlots() bool { return boolOr(c.SavePlots, true) }

// GetSpeedUnits returns the speed_units value or the default.
func (c *TrajectoryConfig) GetSpeedUnits() string {
	if c.SpeedUnits == nil {
		return units.MPS
	}
	return *c.SpeedUnits
}

// GetDBPath returns the run-history database path; empty disables it.
func (c *TrajectoryConfig) GetDBPath() string {
	if c.DBPath == nil {
		return ""
	}
	return *c.DBPath
}
