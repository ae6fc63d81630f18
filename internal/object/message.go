package object

import "fmt"

// Message is one mailbox entry: the evaluated terms of a send, plus an
// optional reply reference when the sender is waiting for an answer.
type Message struct {
	Terms   []Object
	ReplyTo *AgentRef
}

// Selector returns the first Word term, the conventional dispatch name.
func (m Message) Selector() string {
	if len(m.Terms) == 0 {
		return ""
	}
	if w, ok := m.Terms[0].(*Word); ok {
		return w.Value
	}
	return ""
}

func (m Message) String() string {
	out := "("
	for i, t := range m.Terms {
		if i > 0 {
			out += " "
		}
		out += t.Inspect()
	}
	return out + ")"
}

// Poster is the mailbox contract: a fire-and-forget enqueue. Posting to a
// terminated instance returns a delivery error.
type Poster interface {
	Post(Message) error
}

// AgentRef is an opaque, clonable handle addressing one mailbox.
type AgentRef struct {
	ID    string
	Name  string
	Queue Poster
}

func (ar *AgentRef) Type() ObjectType { return AGENT_REF_OBJ }
func (ar *AgentRef) Inspect() string {
	id := ar.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("<agent %s %s>", ar.Name, id)
}
