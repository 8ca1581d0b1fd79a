package typing

import (
	"sync"
	"time"

	"support-chat-be/internal/constant"

	"github.com/google/uuid"
)

// Delay computes how long the bot pretends to type before an answer of the
// given length appears. Deterministic: base plus a per-rune increment,
// capped.
func Delay(answerLen int) time.Duration {
	d := constant.TypingBaseDelay + time.Duration(answerLen)*constant.TypingPerRuneDelay
	if d > constant.TypingMaxDelay {
		return constant.TypingMaxDelay
	}
	return d
}

type task struct {
	timer     *time.Timer
	mu        sync.Mutex
	cancelled bool
}

func (t *task) cancel() {
	t.mu.Lock()
	t.cancelled = true
	t.mu.Unlock()
	t.timer.Stop()
}

// Scheduler runs at most one pending delayed reply per session. Cancelling
// a task guarantees its side effect never fires, even if the timer already
// expired and the callback is about to run.
type Scheduler struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*task
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		tasks: make(map[uuid.UUID]*task),
	}
}

// Schedule queues fn to run after d. A previously pending task for the same
// session is cancelled first.
func (s *Scheduler) Schedule(sessionId uuid.UUID, d time.Duration, fn func()) {
	t := &task{}

	s.mu.Lock()
	if prev, ok := s.tasks[sessionId]; ok {
		prev.cancel()
	}
	t.timer = s.newTimer(sessionId, t, d, fn)
	s.tasks[sessionId] = t
	s.mu.Unlock()
}

func (s *Scheduler) newTimer(sessionId uuid.UUID, t *task, d time.Duration, fn func()) *time.Timer {
	return time.AfterFunc(d, func() {
		t.mu.Lock()
		if t.cancelled {
			t.mu.Unlock()
			return
		}
		t.cancelled = true
		t.mu.Unlock()

		s.mu.Lock()
		if s.tasks[sessionId] == t {
			delete(s.tasks, sessionId)
		}
		s.mu.Unlock()

		fn()
	})
}

// Cancel discards the pending task for a session, if any. Safe to call when
// nothing is pending.
func (s *Scheduler) Cancel(sessionId uuid.UUID) {
	s.mu.Lock()
	t, ok := s.tasks[sessionId]
	if ok {
		delete(s.tasks, sessionId)
	}
	s.mu.Unlock()

	if ok {
		t.cancel()
	}
}

// Stop cancels every pending task. Used on teardown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = make(map[uuid.UUID]*task)
	s.mu.Unlock()

	for _, t := range tasks {
		t.cancel()
	}
}

// Pending reports whether a task is queued for the session. Test helper.
func (s *Scheduler) Pending(sessionId uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[sessionId]
	return ok
}
