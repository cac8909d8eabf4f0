// internal/models/meal.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// MealRecord is one logged meal. HealthScore is nil when the meal was never scored.
type MealRecord struct {
	ID          string    `json:"id"`
	MealType    MealType  `json:"meal_type"`
	Date        time.Time `json:"date"`
	FoodName    string    `json:"food_name,omitempty"`
	HealthScore *int      `json:"health_score,omitempty"`
	Confidence  float64   `json:"confidence"`
	Details     string    `json:"details,omitempty"`
	Source      Source    `json:"source,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type MealType string

const (
	Breakfast    MealType = "Breakfast"
	SnackAM      MealType = "Snack (AM)"
	Lunch        MealType = "Lunch"
	SnackPM      MealType = "Snack (PM)"
	Dinner       MealType = "Dinner"
	SnackEvening MealType = "Snack (Evening)"
)

// MealTypes lists every meal type in display order.
var MealTypes = []MealType{Breakfast, SnackAM, Lunch, SnackPM, Dinner, SnackEvening}

// SortOrder positions the meal type within a day.
func (m MealType) SortOrder() int {
	for i, t := range MealTypes {
		if t == m {
			return i
		}
	}
	return len(MealTypes)
}

// ParseMealType accepts display names ("Snack (AM)") or snake_case
// identifiers ("snack_am"), case-insensitively.
func ParseMealType(s string) (MealType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, t := range MealTypes {
		if strings.ToLower(string(t)) == norm || t.Key() == norm {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown meal type %q", s)
}

// Key is the snake_case identifier of the meal type.
func (m MealType) Key() string {
	r := strings.NewReplacer(" (", "_", ")", "", " ", "_")
	return strings.ToLower(r.Replace(string(m)))
}

// Source records which recognition path produced a label.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// RecognitionResult is produced once per analyzed photo.
type RecognitionResult struct {
	FoodLabel      string  `json:"food_label"`
	Confidence     float64 `json:"confidence"`
	NutritionScore int     `json:"nutrition_score"`
	Details        string  `json:"details"`
	Category       string  `json:"category"`
	Source         Source  `json:"source"`
}

// IntPtr is a helper for optional scores.
func IntPtr(v int) *int {
	return &v
}
