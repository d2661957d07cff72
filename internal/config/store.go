package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Store guards the runtime-mutable configuration behind a single
// reader/writer lock. Callers that may suspend take a Snapshot first and
// work off the owned copy; the lock is never held across a suspension point.
type Store struct {
	mu     sync.RWMutex
	cfg    *Config
	grants map[string]struct{}
}

// Snapshot is an owned copy of everything a permission decision needs.
type Snapshot struct {
	Verbose     bool
	Posture     string
	Permissions *ToolPermissions
	MCPServers  []MCPServerConfig
}

// NewStore wraps a loaded config and seeds the persisted conversation
// grants. A missing grants file is not an error.
func NewStore(cfg *Config) (*Store, error) {
	s := &Store{
		cfg:    cfg,
		grants: make(map[string]struct{}),
	}

	if cfg.GrantsPath != "" {
		if err := s.loadGrants(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load tool grants: %w", err)
			}
		}
	}

	return s, nil
}

// Snapshot returns an owned copy of the decision-relevant fields.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	servers := make([]MCPServerConfig, len(s.cfg.MCPServers))
	copy(servers, s.cfg.MCPServers)

	return Snapshot{
		Verbose:     s.cfg.VerboseToolCalls,
		Posture:     s.cfg.ToolCallPermission,
		Permissions: s.cfg.ToolPermissions.Clone(),
		MCPServers:  servers,
	}
}

// Servers returns a copy of the configured server list.
func (s *Store) Servers() []MCPServerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	servers := make([]MCPServerConfig, len(s.cfg.MCPServers))
	copy(servers, s.cfg.MCPServers)
	return servers
}

// Grants returns the persisted conversation grant names.
func (s *Store) Grants() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.grants))
	for name := range s.grants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddGrant records a conversation-scoped tool approval and flushes the
// grant list to disk.
func (s *Store) AddGrant(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.grants[name]; exists {
		return nil
	}
	s.grants[name] = struct{}{}

	if s.cfg.GrantsPath == "" {
		return nil
	}
	return s.saveGrantsLocked()
}

// ApplyPolicy swaps the permission-related fields. Used by the config
// watcher when the file changes on disk.
func (s *Store) ApplyPolicy(posture string, perms *ToolPermissions, verbose bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.ToolCallPermission = posture
	s.cfg.ToolPermissions = perms.Clone()
	s.cfg.VerboseToolCalls = verbose

	log.Debug().
		Str("posture", posture).
		Bool("verbose", verbose).
		Msg("Permission policy updated")
}

func (s *Store) loadGrants() error {
	data, err := os.ReadFile(s.cfg.GrantsPath)
	if err != nil {
		return err
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("failed to parse grants file: %w", err)
	}

	for _, name := range names {
		s.grants[name] = struct{}{}
	}

	log.Debug().
		Str("path", s.cfg.GrantsPath).
		Int("count", len(names)).
		Msg("Tool grants loaded")

	return nil
}

func (s *Store) saveGrantsLocked() error {
	names := make([]string, 0, len(s.grants))
	for name := range s.grants {
		names = append(names, name)
	}
	sort.Strings(names)

	dir := filepath.Dir(s.cfg.GrantsPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create grants directory: %w", err)
	}

	data, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal grants: %w", err)
	}

	if err := os.WriteFile(s.cfg.GrantsPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write grants file: %w", err)
	}

	return nil
}
