package service

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Tharun0024/gen-ai-25/config"
	"github.com/Tharun0024/gen-ai-25/model"
	"github.com/google/uuid"
)

var ErrWorkspaceNotFound = errors.New("session not found")

// Workspace bundles the state and orchestrators of one browser session.
type Workspace struct {
	ID        string
	Session   *Session
	Messages  *MessageLog
	Uploads   *UploadOrchestrator
	Chat      *ChatOrchestrator
	CreatedAt time.Time

	seq uint64
}

// WorkspaceStore is an in-memory registry of workspaces
type WorkspaceStore struct {
	workspaces map[string]*Workspace
	mu         sync.RWMutex
	seq        uint64

	maxWorkspaces int // 0 = unlimited
	stalePolicy   string
	limits        config.UploadConfig
	timeout       time.Duration

	analyzer Analyzer
	answerer Answerer
	archive  Archiver
}

func NewWorkspaceStore(cfg *config.Config, analyzer Analyzer, answerer Answerer) *WorkspaceStore {
	maxWorkspaces := cfg.Session.MaxSessions
	if maxWorkspaces < 0 {
		maxWorkspaces = 0
	}
	return &WorkspaceStore{
		workspaces:    make(map[string]*Workspace),
		maxWorkspaces: maxWorkspaces,
		stalePolicy:   cfg.Session.StalePolicy,
		limits:        cfg.Upload,
		timeout:       time.Duration(cfg.Analysis.TimeoutSeconds) * time.Second,
		analyzer:      analyzer,
		answerer:      answerer,
	}
}

// WithArchive copies every accepted upload of every workspace to archive.
func (s *WorkspaceStore) WithArchive(archive Archiver) *WorkspaceStore {
	s.archive = archive
	return s
}

// Create opens a new workspace whose conversation starts with the greeting.
func (s *WorkspaceStore) Create() *Workspace {
	id := uuid.New().String()
	session := NewSession(s.stalePolicy)
	messages := NewMessageLog()
	messages.Append(model.SenderAssistant, GreetingMessage)

	uploads := NewUploadOrchestrator(id, session, messages, s.analyzer, s.limits).WithTimeout(s.timeout)
	if s.archive != nil {
		uploads.WithArchive(s.archive)
	}

	ws := &Workspace{
		ID:        id,
		Session:   session,
		Messages:  messages,
		Uploads:   uploads,
		Chat:      NewChatOrchestrator(id, session, messages, s.answerer),
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	ws.seq = s.seq
	s.workspaces[id] = ws
	s.cleanupIfNeeded()

	return ws
}

func (s *WorkspaceStore) Get(id string) (*Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.workspaces[id]
	if !ok {
		return nil, ErrWorkspaceNotFound
	}
	return ws, nil
}

func (s *WorkspaceStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workspaces[id]; !ok {
		return ErrWorkspaceNotFound
	}
	delete(s.workspaces, id)
	return nil
}

func (s *WorkspaceStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workspaces)
}

// cleanupIfNeeded evicts the oldest workspaces beyond maxWorkspaces.
// Must be called with lock held
func (s *WorkspaceStore) cleanupIfNeeded() {
	if s.maxWorkspaces <= 0 || len(s.workspaces) <= s.maxWorkspaces {
		return
	}

	all := make([]*Workspace, 0, len(s.workspaces))
	for _, ws := range s.workspaces {
		all = append(all, ws)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].seq < all[j].seq
	})

	for _, ws := range all[:len(all)-s.maxWorkspaces] {
		slog.Info("evicting old session",
			"session_id", ws.ID,
			"created_at", ws.CreatedAt,
		)
		delete(s.workspaces, ws.ID)
	}
}
