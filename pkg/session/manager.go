// Package session persists named conversation sessions, including the tool
// grants a user approved for them, so a session reopened later keeps its
// approvals.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Session is one named conversation with its durable per-tool approvals.
type Session struct {
	manager *Manager

	mu           sync.Mutex
	name         string
	createdAt    time.Time
	grantedTools map[string]struct{}
}

// record is the on-disk shape of a session.
type record struct {
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	GrantedTools []string  `json:"granted_tools,omitempty"`
}

// Manager loads and persists sessions under a directory.
type Manager struct {
	sessionsDir string
}

// NewManager creates a session manager rooted at sessionsDir, defaulting to
// ~/.vela/sessions.
func NewManager(sessionsDir string) (*Manager, error) {
	if sessionsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		sessionsDir = filepath.Join(home, ".vela", "sessions")
	}

	if err := os.MkdirAll(sessionsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	log.Debug().Str("dir", sessionsDir).Msg("Session manager initialized")

	return &Manager{sessionsDir: sessionsDir}, nil
}

// NewName returns a fresh unique session name.
func (m *Manager) NewName() string {
	return uuid.NewString()
}

// Open loads the named session, creating it when absent. An empty name opens
// a new session under a generated name.
func (m *Manager) Open(name string) (*Session, error) {
	if name == "" {
		name = m.NewName()
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	session := &Session{
		manager:      m,
		name:         name,
		createdAt:    time.Now().UTC(),
		grantedTools: make(map[string]struct{}),
	}

	data, err := os.ReadFile(m.sessionPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return session, nil
		}
		return nil, fmt.Errorf("failed to read session %q: %w", name, err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse session %q: %w", name, err)
	}

	if !rec.CreatedAt.IsZero() {
		session.createdAt = rec.CreatedAt
	}
	for _, toolName := range rec.GrantedTools {
		session.grantedTools[toolName] = struct{}{}
	}

	return session, nil
}

// List returns the names of all persisted sessions, sorted.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(entry.Name(), ".json"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *Manager) sessionPath(name string) string {
	return filepath.Join(m.sessionsDir, name+".json")
}

// validateName rejects session names that could escape the sessions
// directory.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("session name cannot contain '..'")
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("session name cannot contain path separators")
	}
	if strings.Contains(name, "\x00") {
		return fmt.Errorf("session name cannot contain null bytes")
	}
	return nil
}

// Name returns the session name.
func (s *Session) Name() string {
	return s.name
}

// GrantedTools returns the tools approved for this session, sorted.
func (s *Session) GrantedTools() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.grantedTools))
	for name := range s.grantedTools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddGrantedTool records a tool approval and flushes the session to disk.
func (s *Session) AddGrantedTool(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.grantedTools[name]; exists {
		return nil
	}
	s.grantedTools[name] = struct{}{}

	return s.saveLocked()
}

func (s *Session) saveLocked() error {
	names := make([]string, 0, len(s.grantedTools))
	for name := range s.grantedTools {
		names = append(names, name)
	}
	sort.Strings(names)

	rec := record{
		Name:         s.name,
		CreatedAt:    s.createdAt,
		GrantedTools: names,
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session %q: %w", s.name, err)
	}

	if err := os.WriteFile(s.manager.sessionPath(s.name), data, 0600); err != nil {
		return fmt.Errorf("failed to write session %q: %w", s.name, err)
	}

	return nil
}
