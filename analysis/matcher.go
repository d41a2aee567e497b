package analysis

import (
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// keywordMatcher reports which ordered keyword groups have a substring hit in a
// text, in one pass over it.
type keywordMatcher struct {
	// ahocorasick.Matcher keeps per-call hit counters, so Match is serialized.
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
	// group[i] is the group of the i-th dictionary word.
	group []int
}

// newKeywordMatcher builds one automaton over every group. A keyword repeated in
// a later group stays with the earliest one.
func newKeywordMatcher(groups ...[]string) *keywordMatcher {
	seen := make(map[string]struct{})
	var words []string
	var owner []int
	for g, keywords := range groups {
		for _, k := range keywords {
			if _, dup := seen[k]; dup || k == "" {
				continue
			}
			seen[k] = struct{}{}
			words = append(words, k)
			owner = append(owner, g)
		}
	}
	return &keywordMatcher{
		matcher: ahocorasick.NewStringMatcher(words),
		group:   owner,
	}
}

// firstGroup returns the lowest group index with a hit in text, or -1.
func (m *keywordMatcher) firstGroup(text string) int {
	if text == "" {
		return -1
	}
	m.mu.Lock()
	hits := m.matcher.Match([]byte(text))
	m.mu.Unlock()

	best := -1
	for _, h := range hits {
		if g := m.group[h]; best < 0 || g < best {
			best = g
		}
	}
	return best
}

// any reports whether text contains any keyword.
func (m *keywordMatcher) any(text string) bool {
	return m.firstGroup(text) >= 0
}

func categoryGroups() [][]string {
	groups := make([][]string, len(categoryTable))
	for i, row := range categoryTable {
		groups[i] = row.keywords
	}
	return groups
}

var (
	categoryMatcher = newKeywordMatcher(categoryGroups()...)
	// groups are critical, high, medium in that order
	severityMatcher = newKeywordMatcher(criticalKeywords, highKeywords, mediumKeywords)
	urgencyMatcher  = newKeywordMatcher(urgencyKeywords)
)
