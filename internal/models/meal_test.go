package models

import "testing"

func TestParseMealType(t *testing.T) {
	tests := map[string]MealType{
		"Breakfast":       Breakfast,
		"breakfast":       Breakfast,
		"Snack (AM)":      SnackAM,
		"snack_am":        SnackAM,
		"snack_pm":        SnackPM,
		"SNACK_EVENING":   SnackEvening,
		" dinner ":        Dinner,
		"Snack (Evening)": SnackEvening,
	}
	for in, want := range tests {
		got, err := ParseMealType(in)
		if err != nil || got != want {
			t.Errorf("ParseMealType(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	if _, err := ParseMealType("brunch"); err == nil {
		t.Error("expected error for unknown meal type")
	}
}

func TestMealTypeSortOrder(t *testing.T) {
	for i, mt := range MealTypes {
		if mt.SortOrder() != i {
			t.Errorf("%s.SortOrder() = %d, want %d", mt, mt.SortOrder(), i)
		}
	}
	if MealType("Brunch").SortOrder() != len(MealTypes) {
		t.Error("unknown meal types should sort last")
	}
}
