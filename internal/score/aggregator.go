// Package score aggregates per-meal health scores over time windows.
package score

import (
	"sort"
	"time"

	"mcp-meal-score/internal/models"
)

// SameDay reports whether a and b fall on the same calendar day in b's location.
func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DailyScore sums the scores of meals on now's calendar day. Unscored meals
// are skipped.
func DailyScore(meals []*models.MealRecord, now time.Time) int {
	total := 0
	for _, m := range meals {
		if m == nil || m.HealthScore == nil {
			continue
		}
		if SameDay(m.Date, now) {
			total += *m.HealthScore
		}
	}
	return total
}

// WeeklyScore sums the scores of meals dated at or after now minus seven
// days. There is no upper bound: future-dated meals count.
func WeeklyScore(meals []*models.MealRecord, now time.Time) int {
	since := WeekStart(now)
	total := 0
	for _, m := range meals {
		if m == nil || m.HealthScore == nil {
			continue
		}
		if !m.Date.Before(since) {
			total += *m.HealthScore
		}
	}
	return total
}

// WeekStart is the inclusive lower bound used by WeeklyScore.
func WeekStart(now time.Time) time.Time {
	return now.AddDate(0, 0, -7)
}

// MealsOn returns the meals on day's calendar day ordered by meal type.
func MealsOn(meals []*models.MealRecord, day time.Time) []*models.MealRecord {
	var out []*models.MealRecord
	for _, m := range meals {
		if m != nil && SameDay(m.Date, day) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MealType.SortOrder() < out[j].MealType.SortOrder()
	})
	return out
}

// DailyInterpretation describes a daily total.
func DailyInterpretation(score int) string {
	switch {
	case score >= 200:
		return "Excellent nutrition!"
	case score >= 100:
		return "Good choices!"
	case score >= 0:
		return "Room for improvement"
	default:
		return "Focus on healthier options"
	}
}

// WeeklyInterpretation describes a 7-day total.
func WeeklyInterpretation(score int) string {
	switch {
	case score >= 1000:
		return "Outstanding week!"
	case score >= 500:
		return "Good progress!"
	case score >= 0:
		return "Keep trying!"
	default:
		return "Let's improve together"
	}
}

// Summary is the daily and weekly view returned to callers.
type Summary struct {
	Daily                int                  `json:"daily_score"`
	Weekly               int                  `json:"weekly_score"`
	DailyInterpretation  string               `json:"daily_interpretation"`
	WeeklyInterpretation string               `json:"weekly_interpretation"`
	TodayMeals           []*models.MealRecord `json:"today_meals"`
}

// Summarize builds a Summary from the meals visible at now.
func Summarize(meals []*models.MealRecord, now time.Time) Summary {
	daily := DailyScore(meals, now)
	weekly := WeeklyScore(meals, now)
	return Summary{
		Daily:                daily,
		Weekly:               weekly,
		DailyInterpretation:  DailyInterpretation(daily),
		WeeklyInterpretation: WeeklyInterpretation(weekly),
		TodayMeals:           MealsOn(meals, now),
	}
}
