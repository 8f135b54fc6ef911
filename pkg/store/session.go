package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"smartcity-be/internal/model"
)

const replyQueueSize = 32

var (
	ErrSessionClosed = errors.New("chat session closed")
	ErrQueueFull     = errors.New("chat session reply queue full")
)

// ReplyFunc is called from the session worker after an assistant turn has
// been appended.
type ReplyFunc func(sessionID string, turn model.ConversationTurn)

type pendingReply struct {
	text string
	due  time.Time
}

// Session is one chat window: an append-only transcript plus a worker that
// appends delayed assistant replies in the order they were queued. Closing
// the session discards every reply that has not fired yet.
type Session struct {
	ID string

	mu    sync.Mutex
	turns []model.ConversationTurn

	replies chan pendingReply
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	onReply ReplyFunc
}

func NewSession(id string, onReply ReplyFunc) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:      id,
		replies: make(chan pendingReply, replyQueueSize),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		onReply: onReply,
	}
	go s.run()
	return s
}

// Append adds a turn immediately.
func (s *Session) Append(speaker model.Speaker, text string) (model.ConversationTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(speaker, text)
}

// Submit appends the user turn now and queues reply to be appended after
// delay. Both happen under one lock so queue order matches transcript order.
func (s *Session) Submit(query, reply string, delay time.Duration) (model.ConversationTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return model.ConversationTurn{}, ErrSessionClosed
	}
	if len(s.replies) == cap(s.replies) {
		return model.ConversationTurn{}, ErrQueueFull
	}

	turn, err := s.appendLocked(model.SpeakerUser, query)
	if err != nil {
		return turn, err
	}
	// Cannot block: capacity was checked under the same lock and only the
	// worker drains the channel.
	s.replies <- pendingReply{text: reply, due: turn.CreatedAt.Add(delay)}
	return turn, nil
}

// Transcript returns a copy of the turns so far.
func (s *Session) Transcript() []model.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ConversationTurn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Pending is the number of replies queued but not yet appended. A reply the
// worker is currently waiting on is not counted.
func (s *Session) Pending() int {
	return len(s.replies)
}

// Close stops the worker. Safe to call more than once and from any goroutine,
// including from inside a ReplyFunc.
func (s *Session) Close() {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
}

func (s *Session) Closed() bool {
	return s.ctx.Err() != nil
}

// Done is closed once the worker has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) appendLocked(speaker model.Speaker, text string) (model.ConversationTurn, error) {
	if s.ctx.Err() != nil {
		return model.ConversationTurn{}, ErrSessionClosed
	}
	turn := model.ConversationTurn{Speaker: speaker, Text: text, CreatedAt: time.Now()}
	s.turns = append(s.turns, turn)
	return turn, nil
}

func (s *Session) run() {
	defer close(s.done)

	for {
		select {
		case <-s.ctx.Done():
			return
		case r := <-s.replies:
			timer := time.NewTimer(time.Until(r.due))
			select {
			case <-s.ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			// Close may have won the race with the timer; appendLocked
			// re-checks under the lock so a stale reply is dropped.
			turn, err := s.Append(model.SpeakerAssistant, r.text)
			if err != nil {
				return
			}
			if s.onReply != nil {
				s.onReply(s.ID, turn)
			}
		}
	}
}
