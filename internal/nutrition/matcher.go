// internal/nutrition/matcher.go
package nutrition

import (
	"sort"
	"strings"
	"unicode"
)

// UnmatchedDetails is reported for labels missing from the table.
const UnmatchedDetails = "Food item recognized"

// Match is the outcome of resolving a free-text label.
type Match struct {
	Name    string `json:"name"`
	Entry   Entry  `json:"entry"`
	Matched bool   `json:"matched"`
}

// Matcher resolves labels against the static table. It holds no mutable
// state and is safe for concurrent use.
type Matcher struct {
	// keys sorted longest first, ties alphabetical; fixes substring precedence.
	keys []string
}

// NewMatcher builds a matcher over the package table.
func NewMatcher() *Matcher {
	keys := make([]string, 0, Size())
	for k := range table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return &Matcher{keys: keys}
}

// Normalize lowercases and trims a label, joining words with "_".
func Normalize(label string) string {
	fields := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(label)), func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	})
	return strings.Join(fields, "_")
}

// Resolve tries an exact match, then substring containment in either
// direction, then the synonym table. Unmatched labels come back
// capitalized with a zero score.
func (m *Matcher) Resolve(label string) Match {
	key := Normalize(label)
	if key == "" {
		return unmatched(label)
	}

	if e, ok := Lookup(key); ok {
		return Match{Name: key, Entry: e, Matched: true}
	}

	for _, k := range m.keys {
		if strings.Contains(key, k) || strings.Contains(k, key) {
			return Match{Name: k, Entry: table[k], Matched: true}
		}
	}

	if canonical, ok := synonyms[key]; ok {
		if e, ok := Lookup(canonical); ok {
			return Match{Name: canonical, Entry: e, Matched: true}
		}
	}

	return unmatched(label)
}

func unmatched(label string) Match {
	return Match{
		Name:  capitalize(strings.TrimSpace(label)),
		Entry: Entry{Category: Unknown, Score: 0, Details: UnmatchedDetails},
	}
}

// capitalize upper-cases the first letter of every word and lower-cases
// the rest. Spaces, hyphens and underscores separate words.
func capitalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	start := true
	for _, r := range s {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			start = true
			b.WriteRune(r)
			continue
		}
		if start {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		start = false
	}
	return b.String()
}
