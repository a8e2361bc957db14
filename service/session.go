package service

import (
	"sync"

	"github.com/Tharun0024/gen-ai-25/config"
	"github.com/Tharun0024/gen-ai-25/model"
)

// Snapshot is a consistent view of a session at one instant.
type Snapshot struct {
	Analysis *model.AnalysisData
	Loading  bool
	Epoch    uint64
}

// Session holds the currently analyzed document and the loading flag.
// Every upload bumps the epoch; results carrying an older epoch are
// discarded unless the session applies stale results.
type Session struct {
	mu           sync.RWMutex
	analysis     *model.AnalysisData
	loading      bool
	epoch        uint64
	discardStale bool
}

func NewSession(stalePolicy string) *Session {
	return &Session{discardStale: stalePolicy != config.StalePolicyApply}
}

func (s *Session) Analysis() *model.AnalysisData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analysis
}

func (s *Session) SetAnalysis(data *model.AnalysisData) {
	s.mu.Lock()
	s.analysis = data
	s.mu.Unlock()
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Analysis: s.analysis, Loading: s.loading, Epoch: s.epoch}
}

// DocumentText returns the extracted text questions are answered against,
// or "" while no completed analysis is available.
func (s *Session) DocumentText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loading || !s.analysis.HasDocumentText() {
		return ""
	}
	return s.analysis.ExtractedText
}

// BeginUpload marks an upload in flight, clears the previous analysis and
// returns the epoch the upload must present when it completes.
func (s *Session) BeginUpload() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.analysis = nil
	s.epoch++
	return s.epoch
}

// CompleteUpload commits data and clears the loading flag. It reports false
// when the result was discarded as stale.
func (s *Session) CompleteUpload(epoch uint64, data *model.AnalysisData) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discardStale && epoch != s.epoch {
		return false
	}
	s.analysis = data
	s.loading = false
	return true
}

// FailUpload clears the loading flag after a failed upload, leaving the
// analysis untouched. It reports false when the failure was stale.
func (s *Session) FailUpload(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discardStale && epoch != s.epoch {
		return false
	}
	s.loading = false
	return true
}
