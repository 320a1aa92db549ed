package vision

import "fmt"

// NewLocalizer builds the localizer for strategy s. Only the params of the
// chosen strategy are used.
func NewLocalizer(s Strategy, seg SegmentationParams, corr CorrelationParams) (Localizer, error) {
	switch s {
	case StrategySegmentation:
		l, err := NewSegmenter(seg)
		if err != nil {
			return nil, err
		}
		return l, nil
	case StrategyCorrelation:
		l, err := NewCorrelator(corr)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
	return nil, fmt.Errorf("unsupported strategy %v", s)
}
