package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/Tharun0024/gen-ai-25/config"
	"github.com/Tharun0024/gen-ai-25/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Tharun0024/gen-ai-25/service"

// maxErrorBody caps how much of a failed response is kept for the error.
const maxErrorBody = 4 << 10

// ErrEmptyAnswer is returned when the question endpoint answers with nothing.
var ErrEmptyAnswer = errors.New("empty answer")

// StatusError reports a non-success response from a collaborator endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("analysis service returned status %d: %s", e.Code, e.Body)
}

// Analyzer turns an uploaded document into an analysis.
type Analyzer interface {
	Analyze(ctx context.Context, doc model.Document) (*model.AnalysisData, error)
}

// Answerer answers a question about a document's text.
type Answerer interface {
	Ask(ctx context.Context, question, documentText string) (string, error)
}

// AnalysisClient talks to the document analysis and question answering
// endpoints.
type AnalysisClient struct {
	config     *config.AnalysisConfig
	httpClient *http.Client
	tracer     trace.Tracer
}

type askResponse struct {
	Answer string `json:"answer"`
}

func NewAnalysisClient(cfg *config.AnalysisConfig) *AnalysisClient {
	return &AnalysisClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		tracer: otel.Tracer(tracerName),
	}
}

// Analyze uploads the document as multipart field "file".
func (s *AnalysisClient) Analyze(ctx context.Context, doc model.Document) (*model.AnalysisData, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.upload", trace.WithAttributes(
		attribute.String("document.name", doc.Name),
		attribute.Int("document.size", len(doc.Data)),
	))
	defer span.End()

	body, contentType, err := multipartBody(doc)
	if err != nil {
		return nil, recordError(span, fmt.Errorf("failed to build upload body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.UploadURL, body)
	if err != nil {
		return nil, recordError(span, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	var result model.AnalysisData
	if err := s.do(req, span, &result); err != nil {
		return nil, recordError(span, err)
	}

	return &result, nil
}

// Ask posts the question and the document text as form fields.
func (s *AnalysisClient) Ask(ctx context.Context, question, documentText string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.ask", trace.WithAttributes(
		attribute.Int("question.length", len(question)),
		attribute.Int("document.length", len(documentText)),
	))
	defer span.End()

	form := url.Values{}
	form.Set("user_question", question)
	form.Set("doc_text", documentText)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.AskURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", recordError(span, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var result askResponse
	if err := s.do(req, span, &result); err != nil {
		return "", recordError(span, err)
	}
	if strings.TrimSpace(result.Answer) == "" {
		return "", recordError(span, ErrEmptyAnswer)
	}

	return result.Answer, nil
}

func (s *AnalysisClient) do(req *http.Request, span trace.Span, out any) error {
	otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func recordError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func multipartBody(doc model.Document) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(doc.Name)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(doc.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
