package vision

import "context"

// HomogeneousEdgeThreshold is the edge count below which an image counts
// as homogeneous.
const HomogeneousEdgeThreshold = 50

// Detection is the raw output of a contour/rectangle detector.
type Detection struct {
	RectangleCount int
	EdgeCount      int
	AspectRatios   []float64 // bounding-box width/height per contour
}

// Detector extracts contours and rectangles from an image.
type Detector interface {
	Detect(ctx context.Context, b *PixelBuffer) (Detection, error)
}

// StructuralSignal is the normalized shape/texture signal used by Classify.
type StructuralSignal struct {
	HasRectangles bool    `json:"has_rectangles"`
	HasCircular   bool    `json:"has_circular"`
	EdgeCount     int     `json:"edge_count"`
	IsHomogeneous bool    `json:"is_homogeneous"`
	AspectRatio   float64 `json:"aspect_ratio"`
}

// DegradedSignal is used whenever detection fails.
func DegradedSignal() StructuralSignal {
	return StructuralSignal{AspectRatio: 1.0}
}

// NewStructuralSignal normalizes a detection. A non-nil err yields
// DegradedSignal instead of propagating.
func NewStructuralSignal(d Detection, err error) StructuralSignal {
	if err != nil {
		return DegradedSignal()
	}

	edges := d.EdgeCount
	if edges < 0 {
		edges = 0
	}

	signal := StructuralSignal{
		HasRectangles: d.RectangleCount > 0,
		EdgeCount:     edges,
		IsHomogeneous: edges < HomogeneousEdgeThreshold,
		AspectRatio:   1.0,
	}

	if len(d.AspectRatios) > 0 {
		var sum float64
		for _, ar := range d.AspectRatios {
			if ar >= 0.8 && ar <= 1.2 {
				signal.HasCircular = true
			}
			sum += ar
		}
		if mean := sum / float64(len(d.AspectRatios)); mean > 0 {
			signal.AspectRatio = mean
		}
	}

	return signal
}
