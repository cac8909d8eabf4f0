package nutrition

import "testing"

func TestResolveExactAndNormalized(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		label string
		name  string
		score int
	}{
		{"salad", "salad", 95},
		{"  Broccoli ", "broccoli", 95},
		{"apple pie", "apple_pie", -50},
		{"Chocolate-Cake", "chocolate_cake", -70},
		{"green tea", "green_tea", 95},
	}
	for _, tt := range tests {
		got := m.Resolve(tt.label)
		if !got.Matched || got.Name != tt.name || got.Entry.Score != tt.score {
			t.Errorf("Resolve(%q) = %+v, want %s/%d", tt.label, got, tt.name, tt.score)
		}
	}
}

func TestResolveSubstring(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		label string
		want  string
	}{
		{"grilled chicken", "chicken"},
		{"cheeseburger", "burger"}, // burger and cheese tie on length; alphabetical wins
		{"hamburger", "burger"},    // longer key beats "ham"
		{"beefsteak", "steak"},     // longer key beats "tea"
		{"fried rice", "rice"},
		{"carrot", "carrots"}, // key contains label
	}
	for _, tt := range tests {
		if got := m.Resolve(tt.label); got.Name != tt.want {
			t.Errorf("Resolve(%q).Name = %q, want %q", tt.label, got.Name, tt.want)
		}
	}
}

func TestResolveSynonyms(t *testing.T) {
	m := NewMatcher()

	tests := map[string]string{
		"espresso":  "coffee",
		"porridge":  "oatmeal",
		"doughnut":  "donut",
		"spaghetti": "pasta",
		"matcha":    "green_tea",
		"Croissant": "pastry",
	}
	for label, want := range tests {
		got := m.Resolve(label)
		if !got.Matched || got.Name != want {
			t.Errorf("Resolve(%q) = %+v, want %s", label, got, want)
		}
		if got.Entry != table[want] {
			t.Errorf("Resolve(%q) entry mismatch", label)
		}
	}
}

func TestResolveUnmatched(t *testing.T) {
	m := NewMatcher()

	got := m.Resolve("xyz123")
	if got.Matched || got.Name != "Xyz123" || got.Entry.Score != 0 ||
		got.Entry.Details != UnmatchedDetails || got.Entry.Category != Unknown {
		t.Errorf("unexpected unmatched result %+v", got)
	}

	if got := m.Resolve("   "); got.Matched || got.Entry.Score != 0 {
		t.Errorf("blank label should be unmatched, got %+v", got)
	}
}

func TestResolveIdempotent(t *testing.T) {
	m := NewMatcher()
	for _, label := range []string{"espresso", "cheeseburger", "xyz123", "grilled chicken", "apple pie", "Qwerty thing"} {
		first := m.Resolve(label)
		second := m.Resolve(first.Name)
		if first != second {
			t.Errorf("Resolve not idempotent for %q: %+v then %+v", label, first, second)
		}
	}
}

func TestTableInvariants(t *testing.T) {
	for name, e := range table {
		if e.Score < -100 || e.Score > 100 {
			t.Errorf("%s score %d out of range", name, e.Score)
		}
		if Normalize(name) != name {
			t.Errorf("table key %q is not normalized", name)
		}
	}
	for alt, canonical := range synonyms {
		if _, ok := table[canonical]; !ok {
			t.Errorf("synonym %q points at missing key %q", alt, canonical)
		}
	}
	if Size() != len(table) {
		t.Errorf("Size() = %d", Size())
	}
}

func TestClassifierLabelsResolve(t *testing.T) {
	m := NewMatcher()
	labels := []string{
		"salad", "broccoli", "pizza", "pasta", "apple_pie", "banana", "cappuccino",
		"donut", "tea", "strawberry", "tomato", "orange", "carrots", "rice", "bread",
		"chocolate_cake", "steak", "oatmeal", "chicken",
	}
	for _, l := range labels {
		if got := m.Resolve(l); !got.Matched || got.Name != l {
			t.Errorf("classifier label %q resolved to %+v", l, got)
		}
	}
}

func TestUnmatchedCapitalizesEachWord(t *testing.T) {
	m := NewMatcher()

	tests := map[string]string{
		"durian kohlrabi": "Durian Kohlrabi",
		"  kOHLRABI  ":    "Kohlrabi",
		"quux-zorp blip":  "Quux-Zorp Blip",
		"xyz123":          "Xyz123",
		"é":               "É",
	}
	for label, want := range tests {
		got := m.Resolve(label)
		if got.Matched {
			t.Fatalf("Resolve(%q) unexpectedly matched %+v", label, got)
		}
		if got.Name != want {
			t.Errorf("Resolve(%q).Name = %q, want %q", label, got.Name, want)
		}
		if again := m.Resolve(got.Name); again != got {
			t.Errorf("Resolve(%q) not idempotent: %+v then %+v", label, got, again)
		}
	}
}

func TestLookup(t *testing.T) {
	if e, ok := Lookup("salad"); !ok || e.Category != Vegetables {
		t.Errorf("Lookup(salad) = %+v, %v", e, ok)
	}
	if _, ok := Lookup("Salad"); ok {
		t.Error("Lookup is exact and case-sensitive")
	}
}
