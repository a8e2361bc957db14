package model

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// AnalysisData is the result of a successful document analysis. It is never
// mutated after construction; a new upload replaces it wholesale.
type AnalysisData struct {
	ExtractedText string `json:"extracted_text"`
	Summary       string `json:"summary"`
	RisksAndScore string `json:"risks_and_score"`
	ProsCons      string `json:"pros_cons"`

	// Structured variants some analysis backends return instead of the
	// free-text fields. They take precedence when present. Malformed values
	// are dropped on decode so the free text is parsed instead.
	RiskScore *float64 `json:"risk_score,omitempty"`
	Pros      []string `json:"pros,omitempty"`
	Cons      []string `json:"cons,omitempty"`
}

func (a *AnalysisData) UnmarshalJSON(data []byte) error {
	type plain AnalysisData
	var raw struct {
		plain
		RiskScore json.RawMessage `json:"risk_score"`
		Pros      json.RawMessage `json:"pros"`
		Cons      json.RawMessage `json:"cons"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = AnalysisData(raw.plain)
	a.RiskScore = lenientScore(raw.RiskScore)
	a.Pros = lenientList(raw.Pros)
	a.Cons = lenientList(raw.Cons)
	return nil
}

// lenientScore accepts a JSON number or a numeric string such as "75" or
// "75%".
func lenientScore(raw json.RawMessage) *float64 {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	n, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if err != nil {
		return nil
	}
	return &n
}

// lenientList accepts only an array of strings.
func lenientList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}

// HasDocumentText reports whether questions can be asked about the document.
func (a *AnalysisData) HasDocumentText() bool {
	return a != nil && a.ExtractedText != ""
}

// Insights are the typed values derived from an AnalysisData on demand.
type Insights struct {
	RiskScore    float64  `json:"risk_score"`
	DisplayScore int      `json:"display_score"`
	Pros         []string `json:"pros"`
	Cons         []string `json:"cons"`
}

// Document is a file submitted for analysis.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// Ext returns the lower-cased file extension including the dot.
func (d Document) Ext() string {
	return strings.ToLower(filepath.Ext(d.Name))
}

// Sender identifies who authored a message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one entry of a session's conversation log.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}
