package service

import (
	"reflect"
	"testing"

	"github.com/Tharun0024/gen-ai-25/model"
)

func TestParseRiskScore(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
	}{
		{"decimal with trailing text", "Risk score: 73.5 — high", 73.5},
		{"integer", "Risk score: 12", 12},
		{"case insensitive", "overall RISK SCORE:88 based on clauses", 88},
		{"embedded in paragraph", "Several risks found.\nRisk Score: 40\nSee below.", 40},
		{"out of range kept raw", "Risk score: 142", 142},
		{"negative kept raw", "Risk score: -5", -5},
		{"first occurrence wins", "Risk score: 10. Revised risk score: 20", 10},
		{"leading decimal point", "Risk score: .5", 0.5},
		{"signed leading decimal point", "Risk score: -.25", -0.25},
		{"trailing period not a fraction", "Risk score: 10.", 10},
		{"missing pattern", "No score here", 0},
		{"label without number", "Risk score: unknown", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseRiskScore(tt.raw); got != tt.expected {
				t.Errorf("ParseRiskScore(%q) = %v, want %v", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestDisplayScore(t *testing.T) {
	tests := []struct {
		score    float64
		expected int
	}{
		{142, 100},
		{-5, 0},
		{73.5, 74},
		{73.4, 73},
		{0, 0},
		{100, 100},
		{99.6, 100},
	}

	for _, tt := range tests {
		if got := DisplayScore(tt.score); got != tt.expected {
			t.Errorf("DisplayScore(%v) = %d, want %d", tt.score, got, tt.expected)
		}
	}
}

func TestParseProsCons(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		pros []string
		cons []string
	}{
		{
			name: "both sections",
			raw:  "PROS:\n- Fair termination clause\n* Clear refund policy\nCONS:\n- Auto-renewal\n",
			pros: []string{"Fair termination clause", "Clear refund policy"},
			cons: []string{"Auto-renewal"},
		},
		{
			name: "orphan bullet dropped",
			raw:  "- orphan\nPROS:\n- A",
			pros: []string{"A"},
			cons: []string{},
		},
		{
			name: "headers matched as substrings",
			raw:  "Here are the pros: \n  -   indented bullet  \n**Cons:**\n*Liability cap",
			pros: []string{"indented bullet"},
			cons: []string{"Liability cap"},
		},
		{
			name: "non-bullet lines ignored",
			raw:  "PROS:\nThis sentence is prose.\n- kept\n\nCONS:\n1. numbered is not a bullet\n- also kept",
			pros: []string{"kept"},
			cons: []string{"also kept"},
		},
		{
			name: "duplicates and empty bullets preserved",
			raw:  "CONS:\n- same\n- same\n-   \nPROS:\n- x",
			pros: []string{"x"},
			cons: []string{"same", "same", ""},
		},
		{
			name: "sections may repeat",
			raw:  "PROS:\n- a\nCONS:\n- b\nPROS:\n- c",
			pros: []string{"a", "c"},
			cons: []string{"b"},
		},
		{
			name: "windows line endings",
			raw:  "PROS:\r\n- a\r\nCONS:\r\n- b\r\n",
			pros: []string{"a"},
			cons: []string{"b"},
		},
		{
			name: "pros header wins when a line names both",
			raw:  "PROS: see below, CONS: later\n- a\nCONS: then PROS: again\n- b\nCONS:\n- c",
			pros: []string{"a", "b"},
			cons: []string{"c"},
		},
		{
			name: "no structure",
			raw:  "The model could not decide.",
			pros: []string{},
			cons: []string{},
		},
		{
			name: "empty input",
			raw:  "",
			pros: []string{},
			cons: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pros, cons := ParseProsCons(tt.raw)
			if !reflect.DeepEqual(pros, tt.pros) {
				t.Errorf("pros = %q, want %q", pros, tt.pros)
			}
			if !reflect.DeepEqual(cons, tt.cons) {
				t.Errorf("cons = %q, want %q", cons, tt.cons)
			}
		})
	}
}

func TestParsersArePure(t *testing.T) {
	raw := "Risk score: 55\nPROS:\n- a\nCONS:\n- b"

	if ParseRiskScore(raw) != ParseRiskScore(raw) {
		t.Error("Expected identical risk scores on repeated calls")
	}

	pros1, cons1 := ParseProsCons(raw)
	pros2, cons2 := ParseProsCons(raw)
	if !reflect.DeepEqual(pros1, pros2) || !reflect.DeepEqual(cons1, cons2) {
		t.Error("Expected identical pros/cons on repeated calls")
	}

	// Mutating a result must not leak into later calls
	pros1[0] = "changed"
	pros3, _ := ParseProsCons(raw)
	if pros3[0] != "a" {
		t.Errorf("Expected fresh result, got %q", pros3[0])
	}
}

func TestDeriveFromRawText(t *testing.T) {
	insights := Derive(&model.AnalysisData{
		RisksAndScore: "Risk score: 12",
		ProsCons:      "PROS:\n- Fair terms\nCONS:\n- None",
	})

	if insights.RiskScore != 12 || insights.DisplayScore != 12 {
		t.Errorf("Expected score 12, got %v / %d", insights.RiskScore, insights.DisplayScore)
	}
	if !reflect.DeepEqual(insights.Pros, []string{"Fair terms"}) {
		t.Errorf("Unexpected pros %q", insights.Pros)
	}
	if !reflect.DeepEqual(insights.Cons, []string{"None"}) {
		t.Errorf("Unexpected cons %q", insights.Cons)
	}
}

func TestDerivePrefersStructuredFields(t *testing.T) {
	score := 131.0
	insights := Derive(&model.AnalysisData{
		RisksAndScore: "Risk score: 12",
		ProsCons:      "PROS:\n- from text",
		RiskScore:     &score,
		Pros:          []string{"structured"},
	})

	if insights.RiskScore != 131 {
		t.Errorf("Expected structured score 131, got %v", insights.RiskScore)
	}
	if insights.DisplayScore != 100 {
		t.Errorf("Expected clamped display score 100, got %d", insights.DisplayScore)
	}
	if !reflect.DeepEqual(insights.Pros, []string{"structured"}) {
		t.Errorf("Unexpected pros %q", insights.Pros)
	}
	if insights.Cons == nil || len(insights.Cons) != 0 {
		t.Errorf("Expected empty non-nil cons, got %#v", insights.Cons)
	}
}

func TestDeriveNil(t *testing.T) {
	insights := Derive(nil)
	if insights.RiskScore != 0 || insights.DisplayScore != 0 {
		t.Errorf("Expected zero score, got %+v", insights)
	}
	if insights.Pros == nil || insights.Cons == nil {
		t.Error("Expected non-nil empty lists")
	}
}
