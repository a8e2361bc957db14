package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tharun0024/gen-ai-25/config"
	"github.com/Tharun0024/gen-ai-25/model"
	"github.com/Tharun0024/gen-ai-25/pkg/logger"
)

// Upload validation errors. A rejected document leaves the session untouched.
var (
	ErrEmptyDocument       = errors.New("document is empty")
	ErrUnsupportedDocument = errors.New("unsupported document type")
	ErrDocumentTooLarge    = errors.New("document exceeds size limit")
)

const (
	uploadFailedMessage = "Sorry, there was an error analyzing your document. Please try again."
	analyzingFormat     = "Analyzing \"%s\"..."
	finishedFormat      = "Finished analyzing \"%s\". You can now ask questions about it."
)

// UploadOrchestrator drives the upload -> analyze lifecycle of one session.
type UploadOrchestrator struct {
	sessionID string
	session   *Session
	messages  *MessageLog
	analyzer  Analyzer
	archive   Archiver
	limits    config.UploadConfig
	timeout   time.Duration
}

func NewUploadOrchestrator(sessionID string, session *Session, messages *MessageLog, analyzer Analyzer, limits config.UploadConfig) *UploadOrchestrator {
	return &UploadOrchestrator{
		sessionID: sessionID,
		session:   session,
		messages:  messages,
		analyzer:  analyzer,
		limits:    limits,
	}
}

// WithArchive makes every accepted document get copied to archive first.
func (o *UploadOrchestrator) WithArchive(archive Archiver) *UploadOrchestrator {
	o.archive = archive
	return o
}

// WithTimeout bounds the background analysis request.
func (o *UploadOrchestrator) WithTimeout(timeout time.Duration) *UploadOrchestrator {
	o.timeout = timeout
	return o
}

// Validate checks a document against the configured upload limits.
func (o *UploadOrchestrator) Validate(doc model.Document) error {
	if len(doc.Data) == 0 {
		return ErrEmptyDocument
	}
	if len(o.limits.AllowedExtensions) > 0 && !o.limits.AllowsExtension(doc.Ext()) {
		return fmt.Errorf("%w: %q", ErrUnsupportedDocument, doc.Ext())
	}
	if o.limits.MaxBytes > 0 && int64(len(doc.Data)) > o.limits.MaxBytes {
		return fmt.Errorf("%w: %d > %d bytes", ErrDocumentTooLarge, len(doc.Data), o.limits.MaxBytes)
	}
	return nil
}

// Submit validates doc, marks the session as loading, clears the previous
// analysis and announces the upload before returning. The analysis request
// runs in the background; the returned channel is closed once its result
// has been applied or discarded.
func (o *UploadOrchestrator) Submit(ctx context.Context, doc model.Document) (<-chan struct{}, error) {
	if err := o.Validate(doc); err != nil {
		return nil, err
	}

	ctx = logger.WithSession(context.WithoutCancel(ctx), o.sessionID)

	epoch := o.session.BeginUpload()
	o.messages.Append(model.SenderAssistant, fmt.Sprintf(analyzingFormat, doc.Name))
	logger.Info(ctx, "document analysis started", "document", doc.Name, "size", len(doc.Data), "epoch", epoch)

	done := make(chan struct{})
	go func() {
		defer close(done)
		o.analyze(ctx, epoch, doc)
	}()

	return done, nil
}

// SubmitDocument runs the whole upload lifecycle and returns once the
// result has been applied. Only validation errors are returned; analysis
// failures end up in the message log.
func (o *UploadOrchestrator) SubmitDocument(ctx context.Context, doc model.Document) error {
	done, err := o.Submit(ctx, doc)
	if err != nil {
		return err
	}
	<-done
	return nil
}

func (o *UploadOrchestrator) analyze(ctx context.Context, epoch uint64, doc model.Document) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	if o.archive != nil {
		location, err := o.archive.Archive(ctx, o.sessionID, doc)
		if err != nil {
			logger.Warn(ctx, "failed to archive document", "document", doc.Name, "error", err)
		} else {
			logger.Info(ctx, "document archived", "document", doc.Name, "location", location)
		}
	}

	data, err := o.analyzer.Analyze(ctx, doc)
	if err != nil {
		if !o.session.FailUpload(epoch) {
			logger.Info(ctx, "discarding stale analysis failure", "epoch", epoch, "error", err)
			return
		}
		logger.Error(ctx, "document analysis failed", "document", doc.Name, "error", err)
		o.messages.Append(model.SenderAssistant, uploadFailedMessage)
		return
	}

	if !o.session.CompleteUpload(epoch, data) {
		logger.Info(ctx, "discarding stale analysis result", "document", doc.Name, "epoch", epoch)
		return
	}

	summary := data.Summary
	if summary == "" {
		summary = fmt.Sprintf(finishedFormat, doc.Name)
	}
	o.messages.Append(model.SenderAssistant, summary)
	logger.Info(ctx, "document analysis completed", "document", doc.Name, "epoch", epoch)
}
