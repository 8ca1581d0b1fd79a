package kb

import (
	"context"
	"sync"

	"support-chat-be/internal/entity"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/repository/contract"
)

// Snapshot is an immutable view of the knowledge base taken at load time.
type Snapshot struct {
	entries []*entity.KnowledgeEntry
}

func NewSnapshot(entries []*entity.KnowledgeEntry) *Snapshot {
	return &Snapshot{entries: entries}
}

func (s *Snapshot) Entries() []*entity.KnowledgeEntry {
	return s.entries
}

func (s *Snapshot) Empty() bool {
	return len(s.entries) == 0
}

// Loader fetches knowledge entries from the store. An unreachable or broken
// store degrades to an empty snapshot so the bot falls back to escalating
// every question instead of crashing the widget.
type Loader struct {
	repo     contract.KnowledgeRepository
	logger   logger.ILogger
	warnOnce sync.Once
}

func NewLoader(repo contract.KnowledgeRepository, log logger.ILogger) *Loader {
	return &Loader{
		repo:   repo,
		logger: log,
	}
}

func (l *Loader) Load(ctx context.Context) *Snapshot {
	entries, err := l.repo.FindAllOrdered(ctx)
	if err != nil {
		l.warnOnce.Do(func() {
			l.logger.Warn("KnowledgeLoader", "Knowledge base unavailable, degrading to always-escalate", map[string]interface{}{"error": err.Error()})
		})
		return NewSnapshot(nil)
	}
	return NewSnapshot(entries)
}
