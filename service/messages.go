package service

import (
	"sync"
	"time"

	"github.com/Tharun0024/gen-ai-25/model"
	"github.com/Tharun0024/gen-ai-25/pkg/idgen"
)

// GreetingMessage opens every new conversation.
const GreetingMessage = "Hello! I'm your legal document assistant. Upload a document to get started, or ask me any questions about legal documents."

// MessageLog is the append-only conversation of one session.
type MessageLog struct {
	mu       sync.RWMutex
	messages []model.Message
	now      func() time.Time
}

func NewMessageLog() *MessageLog {
	return &MessageLog{now: time.Now}
}

// Append adds a message to the end of the log and returns it. The id and
// timestamp are taken under the lock so they follow append order.
func (l *MessageLog) Append(sender model.Sender, text string) model.Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := model.Message{
		ID:        idgen.New(),
		Text:      text,
		Sender:    sender,
		Timestamp: l.now(),
	}
	l.messages = append(l.messages, msg)
	return msg
}

// All returns a copy of the log in append order.
func (l *MessageLog) All() []model.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Since returns the messages appended after the first n entries.
func (l *MessageLog) Since(n int) []model.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	if n >= len(l.messages) {
		return []model.Message{}
	}
	out := make([]model.Message, len(l.messages)-n)
	copy(out, l.messages[n:])
	return out
}

func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
