// Package dedup holds the per-(session, viewer) cursors that make
// notification delivery idempotent. A cursor records the sequence number of
// the last message that already produced a notification for that viewer;
// anything at or below it is a duplicate delivery and must be ignored.
package dedup

import (
	"context"

	"github.com/google/uuid"
)

// CursorStore persists dedup cursors. Implementations differ in scope:
// the visitor-facing widget needs a cursor that survives a page reload,
// the operator console only needs one per open tab.
type CursorStore interface {
	// Last returns the highest message seq already notified for this
	// viewer, or 0 when nothing was notified yet.
	Last(ctx context.Context, sessionId uuid.UUID, viewer string) (int64, error)

	// Advance moves the cursor forward. Moving backwards is a no-op so a
	// late retry can never reopen the dedup window.
	Advance(ctx context.Context, sessionId uuid.UUID, viewer string, seq int64) error
}

func cursorKey(sessionId uuid.UUID, viewer string) string {
	return "chat:cursor:" + viewer + ":" + sessionId.String()
}
