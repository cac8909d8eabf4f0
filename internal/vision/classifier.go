package vision

import "time"

// Classify maps a color profile and optional structural signal to a food
// label. Rules are evaluated in order and the first match wins; a nil signal
// makes every shape test false. at supplies the local hour for the final
// time-of-day rule.
func Classify(p ColorProfile, s *StructuralSignal, at time.Time) string {
	var rect, circular, homogeneous bool
	if s != nil {
		rect, circular, homogeneous = s.HasRectangles, s.HasCircular, s.IsHomogeneous
	}

	switch {
	case p.GreenPct > 0.35:
		if p.Variance > 0.05 {
			return "salad"
		}
		return "broccoli"

	case p.RedPct > 0.15 && p.YellowPct > 0.15:
		if rect {
			return "pizza"
		}
		return "pasta"

	case p.YellowPct > 0.45 && p.RedPct < 0.10:
		if circular {
			return "apple_pie"
		}
		return "banana"

	case p.BrownPct > 0.25 && p.WhitePct > 0.20:
		if circular {
			return "cappuccino"
		}
		return "donut"

	case p.BrownPct > 0.35 && p.WhitePct < 0.15:
		return "tea"

	case p.RedPct > 0.35:
		if p.Variance > 0.03 {
			return "strawberry"
		}
		return "tomato"

	case p.RedPct > 0.20 && p.YellowPct > 0.25 && p.GreenPct < 0.10:
		if circular {
			return "orange"
		}
		return "carrots"

	case p.WhitePct > 0.40:
		if homogeneous {
			return "rice"
		}
		return "bread"

	case p.BrownPct > 0.40 && p.AvgBrightness < 0.30:
		if circular {
			return "chocolate_cake"
		}
		return "steak"

	case p.Variance > 0.08:
		return "salad"
	}

	return mealForHour(at.Hour())
}

// mealForHour guesses a typical dish for the time of day.
func mealForHour(hour int) string {
	switch {
	case hour >= 6 && hour < 11:
		return "oatmeal"
	case hour >= 11 && hour < 15:
		return "chicken"
	default:
		return "rice"
	}
}
