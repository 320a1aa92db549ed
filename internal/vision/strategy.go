package vision

import (
	"fmt"
	"strings"
)

// Strategy selects how a Localizer finds the object.
type Strategy int

const (
	StrategySegmentation Strategy = iota
	StrategyCorrelation
)

func (s Strategy) String() string {
	switch s {
	case StrategySegmentation:
		return "segmentation"
	case StrategyCorrelation:
		return "correlation"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy accepts the names printed by String, case-insensitively.
// "blob" and "tracker" are accepted as aliases.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "segmentation", "blob":
		return StrategySegmentation, nil
	case "correlation", "tracker":
		return StrategyCorrelation, nil
	}
	return 0, fmt.Errorf("unknown strategy %q (want segmentation or correlation)", s)
}

// TrackerKind names a correlation tracker implementation.
type TrackerKind string

const (
	TrackerCSRT TrackerKind = "csrt"
	TrackerKCF  TrackerKind = "kcf"
	TrackerMIL  TrackerKind = "mil"
)

// ParseTrackerKind validates a tracker name.
func ParseTrackerKind(s string) (TrackerKind, error) {
	k := TrackerKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case TrackerCSRT, TrackerKCF, TrackerMIL:
		return k, nil
	}
	return "", fmt.Errorf("unknown tracker %q (want csrt, kcf or mil)", s)
}
