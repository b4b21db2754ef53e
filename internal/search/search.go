// Package search ranks work items against a free-text query.
package search

// file: internal/search/search.go

import (
	"sort"
	"strings"

	"github.com/dkoosis/camptools/internal/workitem"
)

// Scoring weights.
const (
	phraseScore = 100
	prefixScore = 50
	wordScore   = 10
)

// Score rates how well text matches query, ignoring case: +100 when text
// contains the whole query, another +50 when it starts with it, and +10 for
// every query word found anywhere. An empty query scores 0.
func Score(text, query string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}
	t := strings.ToLower(text)

	score := 0
	if strings.Contains(t, q) {
		score += phraseScore
		if strings.HasPrefix(t, q) {
			score += prefixScore
		}
	}
	for _, word := range strings.Fields(q) {
		if strings.Contains(t, word) {
			score += wordScore
		}
	}
	return score
}

// Hit is a matching item and its score.
type Hit struct {
	workitem.Item
	Score int `json:"score"`
}

// Search scores the title and body of every item and returns those scoring
// above zero, best first. Ties break by title, then id. A limit of zero or
// less returns every hit.
func Search(items []workitem.Item, query string, limit int) []Hit {
	hits := make([]Hit, 0)
	for _, it := range items {
		s := Score(it.Title, query) + Score(it.Body, query)
		if s > 0 {
			hits = append(hits, Hit{Item: it, Score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
