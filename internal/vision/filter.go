package vision

import "math"

// Range is an optional closed interval. A disabled Range accepts anything.
type Range struct {
	Enabled bool
	Min     float64
	Max     float64 // 0 or +Inf means unbounded
}

// Contains reports whether v passes the range.
func (r Range) Contains(v float64) bool {
	if !r.Enabled {
		return true
	}
	if v < r.Min {
		return false
	}
	if r.Max > 0 && !math.IsInf(r.Max, 1) && v > r.Max {
		return false
	}
	return true
}

// Filter holds the shape criteria a candidate must pass. Area is always
// applied; the other ranges only when enabled.
type Filter struct {
	Area         Range
	Circularity  Range
	Convexity    Range
	InertiaRatio Range
}

// Accept reports whether c passes every enabled criterion. Zero-area
// candidates are always rejected.
func (f Filter) Accept(c Candidate) bool {
	if !c.HasCentroid() {
		return false
	}
	area := f.Area
	area.Enabled = true
	return area.Contains(c.Area) &&
		f.Circularity.Contains(c.Circularity) &&
		f.Convexity.Contains(c.Convexity) &&
		f.InertiaRatio.Contains(c.InertiaRatio)
}

// SelectLargest returns the accepted candidate with the largest area.
// Only a strictly larger area replaces the current best, so on a tie the
// earliest candidate in scan order wins.
func SelectLargest(cands []Candidate, f Filter) (Candidate, bool) {
	var (
		best  Candidate
		found bool
	)
	for _, c := range cands {
		if !f.Accept(c) {
			continue
		}
		if !found || c.Area > best.Area {
			best = c
			found = true
		}
	}
	return best, found
}
