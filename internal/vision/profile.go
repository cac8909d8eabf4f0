package vision

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ColorProfile summarizes a sample set. Bucket percentages overlap: one
// sample may count as both brownish and reddish, so they need not sum to 1.
type ColorProfile struct {
	GreenPct      float64 `json:"green_pct"`
	RedPct        float64 `json:"red_pct"`
	YellowPct     float64 `json:"yellow_pct"`
	BrownPct      float64 `json:"brown_pct"`
	WhitePct      float64 `json:"white_pct"`
	AvgBrightness float64 `json:"avg_brightness"`
	Variance      float64 `json:"variance"`
}

func isGreenish(s ColorSample) bool {
	return s.G > s.R && s.G > s.B && s.G > 0.3
}

func isReddish(s ColorSample) bool {
	return s.R > s.G && s.R > s.B && s.R > 0.4
}

func isYellowish(s ColorSample) bool {
	return s.R > 0.5 && s.G > 0.4 && s.B < 0.3
}

func isBrownish(s ColorSample) bool {
	return s.R > 0.3 && s.G > 0.2 && s.B < 0.4 && math.Abs(s.R-s.G) < 0.3
}

func isWhitish(s ColorSample) bool {
	return s.R > 0.7 && s.G > 0.7 && s.B > 0.7
}

// ProfileColors computes bucket percentages, mean brightness and the
// population variance around the mean color. Empty input yields a zero profile.
func ProfileColors(samples []ColorSample) ColorProfile {
	if len(samples) == 0 {
		return ColorProfile{}
	}

	var green, red, yellow, brown, white int
	rs := make([]float64, len(samples))
	gs := make([]float64, len(samples))
	bs := make([]float64, len(samples))
	brightness := make([]float64, len(samples))

	for i, s := range samples {
		if isGreenish(s) {
			green++
		}
		if isReddish(s) {
			red++
		}
		if isYellowish(s) {
			yellow++
		}
		if isBrownish(s) {
			brown++
		}
		if isWhitish(s) {
			white++
		}
		rs[i], gs[i], bs[i] = s.R, s.G, s.B
		brightness[i] = (s.R + s.G + s.B) / 3
	}

	meanR, meanG, meanB := stat.Mean(rs, nil), stat.Mean(gs, nil), stat.Mean(bs, nil)

	// squared distance from the centroid, reusing rs
	for i, s := range samples {
		dr, dg, db := s.R-meanR, s.G-meanG, s.B-meanB
		rs[i] = dr*dr + dg*dg + db*db
	}

	n := float64(len(samples))
	return ColorProfile{
		GreenPct:      float64(green) / n,
		RedPct:        float64(red) / n,
		YellowPct:     float64(yellow) / n,
		BrownPct:      float64(brown) / n,
		WhitePct:      float64(white) / n,
		AvgBrightness: stat.Mean(brightness, nil),
		Variance:      stat.Mean(rs, nil),
	}
}
