package kb

import (
	"strings"

	"support-chat-be/internal/constant"
	"support-chat-be/internal/entity"
)

// Score rates how well a knowledge entry matches a visitor query. Pure
// keyword matching: every query token found as a substring of the entry's
// question+tags earns ScoreTokenMatch, and a question containing the whole
// query earns ScoreFullQuery on top. No stemming, no stop words.
func Score(query string, e *entity.KnowledgeEntry) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || e == nil {
		return 0
	}

	haystack := strings.ToLower(e.Question + " " + strings.Join(e.Tags, " "))
	score := 0
	for _, token := range strings.Fields(q) {
		if strings.Contains(haystack, token) {
			score += constant.ScoreTokenMatch
		}
	}

	if strings.Contains(strings.ToLower(e.Question), q) {
		score += constant.ScoreFullQuery
	}

	return score
}

// BestMatch returns the first entry with the maximum score, preserving the
// knowledge base's curated order on ties. A best score of zero means no
// match and the entry is nil.
func BestMatch(entries []*entity.KnowledgeEntry, query string) (*entity.KnowledgeEntry, int) {
	var best *entity.KnowledgeEntry
	bestScore := 0

	for _, e := range entries {
		if s := Score(query, e); s > bestScore {
			best = e
			bestScore = s
		}
	}

	return best, bestScore
}
