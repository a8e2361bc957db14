package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Tharun0024/gen-ai-25/model"
)

var riskScorePattern = regexp.MustCompile(`(?i)risk\s*score\s*:\s*([-+]?(?:\d+(?:\.\d+)?|\.\d+))`)

// ParseRiskScore extracts the number following "Risk score:" from free text.
// It returns 0 when no score is present. The value is not clamped.
func ParseRiskScore(raw string) float64 {
	match := riskScorePattern.FindStringSubmatch(raw)
	if match == nil {
		return 0
	}
	score, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}
	return score
}

// DisplayScore rounds a raw score and clamps it to [0, 100].
func DisplayScore(score float64) int {
	return int(math.Min(100, math.Max(0, math.Round(score))))
}

type section int

const (
	sectionNone section = iota
	sectionPros
	sectionCons
)

type lineKind int

const (
	lineIgnored lineKind = iota
	lineHeader
	lineBullet
)

// classifyLine decides whether a line switches section, carries a bullet or
// is noise. Headers win over bullets, so "**PROS:**" is a header, and a line
// naming both headers opens the pros section.
func classifyLine(line string) (lineKind, section, string) {
	upper := strings.ToUpper(line)
	switch {
	case strings.Contains(upper, "PROS:"):
		return lineHeader, sectionPros, ""
	case strings.Contains(upper, "CONS:"):
		return lineHeader, sectionCons, ""
	}

	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") {
		return lineBullet, sectionNone, strings.TrimSpace(trimmed[1:])
	}
	return lineIgnored, sectionNone, ""
}

// ParseProsCons splits free text with PROS:/CONS: headers and "-" or "*"
// bullets into two ordered lists. Bullets before any header are dropped.
// Both results are non-nil.
func ParseProsCons(raw string) (pros, cons []string) {
	pros, cons = []string{}, []string{}
	current := sectionNone

	for _, line := range strings.Split(raw, "\n") {
		kind, next, text := classifyLine(line)
		switch kind {
		case lineHeader:
			current = next
		case lineBullet:
			switch current {
			case sectionPros:
				pros = append(pros, text)
			case sectionCons:
				cons = append(cons, text)
			}
		}
	}
	return pros, cons
}

// Derive computes the typed insights of an analysis. Structured fields from
// the backend take precedence over values parsed from the raw text.
func Derive(a *model.AnalysisData) model.Insights {
	if a == nil {
		return model.Insights{Pros: []string{}, Cons: []string{}}
	}

	score := ParseRiskScore(a.RisksAndScore)
	if a.RiskScore != nil {
		score = *a.RiskScore
	}

	pros, cons := ParseProsCons(a.ProsCons)
	if a.Pros != nil || a.Cons != nil {
		pros = append([]string{}, a.Pros...)
		cons = append([]string{}, a.Cons...)
	}

	return model.Insights{
		RiskScore:    score,
		DisplayScore: DisplayScore(score),
		Pros:         pros,
		Cons:         cons,
	}
}
