package runtime

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/object"
)

// ReplyTimeout bounds how long a synchronous send waits for its answer.
const ReplyTimeout = 5 * time.Second

// ReplyBox is a one-shot mailbox for the answer to a synchronous send.
// It satisfies object.Poster so the responder treats it like any agent.
type ReplyBox struct {
	mu       sync.Mutex
	answered bool
	ch       chan object.Object
}

// NewReply returns a reply box and the agent reference a sender attaches
// to its message.
func NewReply(from string) (*object.AgentRef, *ReplyBox) {
	box := &ReplyBox{ch: make(chan object.Object, 1)}
	ref := &object.AgentRef{
		ID:    uuid.NewString(),
		Name:  from,
		Queue: box,
	}
	return ref, box
}

// Post accepts the first reply; later posts are rejected even after the
// waiter has drained the channel.
func (b *ReplyBox) Post(msg object.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.answered {
		return fmt.Errorf("reply box already answered")
	}
	b.answered = true

	value := object.Object(object.NIL)
	if len(msg.Terms) > 0 {
		value = msg.Terms[0]
	}
	b.ch <- value
	return nil
}

// Wait blocks for the reply or times out.
func (b *ReplyBox) Wait(timeout time.Duration) (object.Object, error) {
	select {
	case value := <-b.ch:
		return value, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("timed out waiting for reply after %s", timeout)
	}
}
