// Package permission gates every tool call behind layered policy before it
// is dispatched: session grants, trusted-server bypass, denied/allowed/ask
// pattern lists, then the default posture. Ambiguity resolves through an
// interactive prompt when a terminal is attached and to denial when not.
package permission

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/harun/vela/internal/config"
	"github.com/harun/vela/pkg/mcp"
	"github.com/harun/vela/pkg/tool"
)

// Posture is the fallback authorization decision used when no explicit
// pattern matches.
type Posture int

const (
	PostureAlways Posture = iota
	PostureNever
	PostureAsk
)

// ParsePosture maps a config string onto a posture. Unknown values parse to
// ask, the safer fallback.
func ParsePosture(s string) Posture {
	switch strings.ToLower(s) {
	case "always":
		return PostureAlways
	case "never":
		return PostureNever
	case "ask":
		return PostureAsk
	default:
		return PostureAsk
	}
}

// Decision is the outcome of an interactive confirmation.
type Decision int

const (
	DecisionDeny Decision = iota
	DecisionAllowOnce
	DecisionAllowSession
)

// Prompter asks the user whether a tool call may run. Implementations block
// on user input; the gate invokes them off its locks and serializes them
// globally.
type Prompter interface {
	Confirm(ctx context.Context, call tool.Call) (Decision, error)
}

// GrantRecorder persists a session-scoped approval to a named session.
type GrantRecorder interface {
	GrantedTools() []string
	AddGrantedTool(name string) error
}

// Gate evaluates tool calls against the layered permission policy. Check
// never returns an error: every failure mode resolves to a boolean, and
// grant-persistence problems are logged without flipping a decision.
type Gate struct {
	store    *config.Store
	prompter Prompter
	session  GrantRecorder

	rolePosture string
	rolePolicy  *config.ToolPermissions

	mu      sync.Mutex
	granted map[string]struct{}

	// promptMu serializes interactive prompts across concurrent checks;
	// the terminal is a single-user resource.
	promptMu sync.Mutex
}

// NewGate creates a gate seeded from the store's persisted grants.
func NewGate(store *config.Store, prompter Prompter) *Gate {
	g := &Gate{
		store:    store,
		prompter: prompter,
		granted:  make(map[string]struct{}),
	}
	for _, name := range store.Grants() {
		g.granted[name] = struct{}{}
	}
	return g
}

// AttachSession binds a named session. Its previously granted tools join the
// session grant set, and new session approvals are recorded to it.
func (g *Gate) AttachSession(session GrantRecorder) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.session = session
	if session != nil {
		for _, name := range session.GrantedTools() {
			g.granted[name] = struct{}{}
		}
	}
}

// SetRolePolicy installs a role-scoped policy. When present it fully shadows
// the global policy; the two are never merged. An empty posture string keeps
// the global default posture.
func (g *Gate) SetRolePolicy(posture string, policy *config.ToolPermissions) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rolePosture = posture
	g.rolePolicy = policy.Clone()
}

// Check resolves whether the tool call may dispatch. It may suspend for an
// interactive confirmation and always resolves to a boolean.
func (g *Gate) Check(ctx context.Context, call tool.Call) bool {
	g.mu.Lock()
	_, granted := g.granted[call.Name]
	rolePosture := g.rolePosture
	rolePolicy := g.rolePolicy.Clone()
	g.mu.Unlock()

	// Snapshot config state before anything that can suspend; the store
	// lock is released by the time a prompt could block.
	snap := g.store.Snapshot()

	if granted {
		g.audit(snap.Verbose, call, "auto-allowed (session)")
		return true
	}

	// Trusted servers bypass every later rule, including a global never.
	if server, ok := mcp.ServerName(call.Name); ok {
		for _, cfg := range snap.MCPServers {
			if cfg.Name == server && cfg.Trusted {
				g.audit(snap.Verbose, call, "auto-allowed (trusted server)")
				return true
			}
		}
	}

	posture := PostureAlways
	if rolePosture != "" {
		posture = ParsePosture(rolePosture)
	} else if snap.Posture != "" {
		posture = ParsePosture(snap.Posture)
	}

	policy := rolePolicy
	if policy == nil {
		policy = snap.Permissions
	}
	if policy != nil {
		if MatchAny(call.Name, policy.Denied) {
			g.audit(snap.Verbose, call, "denied")
			return false
		}
		if MatchAny(call.Name, policy.Allowed) {
			g.audit(snap.Verbose, call, "auto-allowed (allowed list)")
			return true
		}
		if MatchAny(call.Name, policy.Ask) {
			return g.prompt(ctx, call, snap.Verbose)
		}
	}

	switch posture {
	case PostureAlways:
		g.audit(snap.Verbose, call, "auto-allowed (default)")
		return true
	case PostureNever:
		g.audit(snap.Verbose, call, "denied (default)")
		return false
	default:
		return g.prompt(ctx, call, snap.Verbose)
	}
}

func (g *Gate) prompt(ctx context.Context, call tool.Call, verbose bool) bool {
	if g.prompter == nil {
		g.audit(verbose, call, "denied (no prompt available)")
		return false
	}

	g.promptMu.Lock()
	decision, err := g.prompter.Confirm(ctx, call)
	g.promptMu.Unlock()

	if err != nil {
		log.Debug().Err(err).Str("tool", call.Name).Msg("Tool prompt aborted")
		g.audit(verbose, call, "denied (prompt aborted)")
		return false
	}

	switch decision {
	case DecisionAllowOnce:
		g.audit(verbose, call, "allowed (once)")
		return true

	case DecisionAllowSession:
		g.remember(call.Name)
		g.audit(verbose, call, "allowed (session)")
		return true

	default:
		g.audit(verbose, call, "denied (prompt)")
		return false
	}
}

// remember records a session approval in memory and in the durable stores.
// Persistence failures are logged only; the approval already happened.
func (g *Gate) remember(name string) {
	g.mu.Lock()
	g.granted[name] = struct{}{}
	session := g.session
	g.mu.Unlock()

	if err := g.store.AddGrant(name); err != nil {
		log.Warn().Err(err).Str("tool", name).Msg("Failed to persist tool grant")
	}
	if session != nil {
		if err := session.AddGrantedTool(name); err != nil {
			log.Warn().Err(err).Str("tool", name).Msg("Failed to record tool grant in session")
		}
	}
}

func (g *Gate) audit(verbose bool, call tool.Call, outcome string) {
	if !verbose {
		return
	}
	event := log.Info().Str("tool", call.Name).Str("outcome", outcome)
	if len(call.Arguments) > 0 {
		event = event.RawJSON("arguments", call.Arguments)
	}
	if call.ID != "" {
		event = event.Str("call_id", call.ID)
	}
	event.Msg("Tool call evaluated")
}
