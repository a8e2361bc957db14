package service

import (
	"context"
	"strings"

	"github.com/Tharun0024/gen-ai-25/model"
	"github.com/Tharun0024/gen-ai-25/pkg/logger"
)

const (
	uploadFirstMessage = "I'd be happy to help! Please upload a document first so I can provide specific insights about it."
	askFailedMessage   = "Sorry, I encountered an error while answering your question. Please try again."
)

// ChatOrchestrator drives the question -> answer lifecycle of one session.
type ChatOrchestrator struct {
	sessionID string
	session   *Session
	messages  *MessageLog
	answerer  Answerer
}

func NewChatOrchestrator(sessionID string, session *Session, messages *MessageLog, answerer Answerer) *ChatOrchestrator {
	return &ChatOrchestrator{
		sessionID: sessionID,
		session:   session,
		messages:  messages,
		answerer:  answerer,
	}
}

// SendQuestion records the question, asks the answer endpoint about the
// session's document and records the reply. It returns the messages it
// appended, question first. Blank input is ignored.
func (o *ChatOrchestrator) SendQuestion(ctx context.Context, text string) []model.Message {
	question := strings.TrimSpace(text)
	if question == "" {
		return nil
	}

	ctx = logger.WithSession(ctx, o.sessionID)
	asked := o.messages.Append(model.SenderUser, question)

	docText := o.session.DocumentText()
	if docText == "" {
		reply := o.messages.Append(model.SenderAssistant, uploadFirstMessage)
		return []model.Message{asked, reply}
	}

	answer, err := o.answerer.Ask(ctx, question, docText)
	if err != nil {
		logger.Error(ctx, "question answering failed", "message_id", asked.ID, "error", err)
		reply := o.messages.Append(model.SenderAssistant, askFailedMessage)
		return []model.Message{asked, reply}
	}

	reply := o.messages.Append(model.SenderAssistant, answer)
	logger.Debug(ctx, "question answered", "message_id", asked.ID, "answer_length", len(answer))
	return []model.Message{asked, reply}
}
