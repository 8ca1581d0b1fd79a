package kb

import (
	"testing"

	"support-chat-be/internal/entity"
)

func TestScore(t *testing.T) {
	pricing := &entity.KnowledgeEntry{
		Question: "What is your pricing?",
		Answer:   "Plans start at $49/month.",
		Tags:     []string{"pricing", "cost", "plans"},
	}

	tests := []struct {
		name  string
		query string
		entry *entity.KnowledgeEntry
		want  int
	}{
		{
			name:  "full query contained in question",
			query: "what is your pricing",
			entry: pricing,
			// 4 tokens x 2, plus 4 for the whole query appearing in the
			// question.
			want: 12,
		},
		{
			name:  "single token via tag",
			query: "cost",
			entry: pricing,
			want:  2,
		},
		{
			name:  "case insensitive",
			query: "PRICING",
			entry: pricing,
			want:  6,
		},
		{
			name:  "no overlap",
			query: "refund policy",
			entry: pricing,
			want:  0,
		},
		{
			name:  "empty query",
			query: "   ",
			entry: pricing,
			want:  0,
		},
		{
			name:  "nil entry",
			query: "pricing",
			entry: nil,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.query, tt.entry); got != tt.want {
				t.Errorf("Score(%q) = %d, want %d", tt.query, got, tt.want)
			}
		})
	}
}

func TestBestMatchPrefersCuratedOrderOnTies(t *testing.T) {
	first := &entity.KnowledgeEntry{Question: "Billing question one", Tags: []string{"billing"}}
	second := &entity.KnowledgeEntry{Question: "Billing question two", Tags: []string{"billing"}}

	got, score := BestMatch([]*entity.KnowledgeEntry{first, second}, "billing")
	if got != first {
		t.Errorf("BestMatch returned second entry on a tie, want first")
	}
	if score != 2 {
		t.Errorf("BestMatch score = %d, want 2", score)
	}
}

func TestBestMatchZeroScoreMeansNoMatch(t *testing.T) {
	entries := []*entity.KnowledgeEntry{
		{Question: "What is your pricing?", Tags: []string{"pricing"}},
	}

	got, score := BestMatch(entries, "unrelated gibberish")
	if got != nil {
		t.Errorf("BestMatch = %v, want nil", got)
	}
	if score != 0 {
		t.Errorf("BestMatch score = %d, want 0", score)
	}
}
