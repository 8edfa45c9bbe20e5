package detector

import "errors"

// AnchorsPerCell is the number of anchor variants generated at every cell of
// the detection feature grid.
const AnchorsPerCell = 10

// defaultAnchorHeights covers the aspect-ratio range of horizontal text
// slices at the fixed 16 px anchor width.
var defaultAnchorHeights = []float64{11, 16, 23, 33, 48, 68, 97, 139, 198, 283}

// Config holds configuration for detection post-processing.
type Config struct {
	Stride         int       // Feature-grid stride in pixels (default: 16)
	AnchorHeights  []float64 // Anchor heights at fixed stride width
	ScoreThreshold float64   // Foreground score cutoff, strict greater-than (default: 0.7)
	MinSize        float64   // Minimum proposal width/height in pixels (default: one stride)
	NMSThreshold   float64   // IoU threshold for non-max suppression (default: 0.3)
	Connector      ConnectorConfig
}

// DefaultConfig returns the default detection post-processing configuration.
func DefaultConfig() Config {
	return Config{
		Stride:         16,
		AnchorHeights:  defaultAnchorHeights,
		ScoreThreshold: 0.7,
		MinSize:        16,
		NMSThreshold:   0.3,
		Connector:      DefaultConnectorConfig(),
	}
}

// Validate checks the configuration for values the pipeline cannot work with.
func (c Config) Validate() error {
	if c.Stride <= 0 {
		return errors.New("stride must be > 0")
	}
	if len(c.AnchorHeights) != AnchorsPerCell {
		return errors.New("anchor heights must list one height per anchor variant")
	}
	if c.ScoreThreshold < 0 || c.ScoreThreshold >= 1 {
		return errors.New("score threshold must be in [0, 1)")
	}
	if c.NMSThreshold <= 0 || c.NMSThreshold >= 1 {
		return errors.New("nms threshold must be in (0, 1)")
	}
	return c.Connector.Validate()
}
