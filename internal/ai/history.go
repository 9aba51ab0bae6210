package ai

import "sync"

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the conversation history. Content is
// either plain text or a JSON array of content blocks (tool use and
// tool results).
type Message struct {
	Role    Role
	Content string
}

// History keeps an ordered, bounded conversation transcript. When the
// limit is exceeded the oldest entries after the first are dropped; the
// first message is kept as initial context.
type History struct {
	mu          sync.Mutex
	messages    []Message
	maxMessages int
}

// NewHistory creates a history bounded to max messages. Non-positive
// max defaults to 20.
func NewHistory(max int) *History {
	if max <= 0 {
		max = 20
	}
	return &History{
		messages:    make([]Message, 0, max),
		maxMessages: max,
	}
}

// Add appends a message, trimming the middle when over the limit.
func (h *History) Add(role Role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, Message{Role: role, Content: content})

	if len(h.messages) > h.maxMessages {
		trimmed := make([]Message, 0, h.maxMessages)
		trimmed = append(trimmed, h.messages[0])
		excess := len(h.messages) - h.maxMessages
		trimmed = append(trimmed, h.messages[1+excess:]...)
		h.messages = trimmed
	}
}

// Messages returns a copy of the transcript.
func (h *History) Messages() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Reset clears the transcript.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = h.messages[:0]
}

// Len returns the number of messages held.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.messages)
}
