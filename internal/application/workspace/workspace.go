package workspace

import (
	"errors"
	"sync"

	"ordercal/internal/application/orderstate"
)

// Session states. A workspace only ever moves forward:
// Unauthenticated -> Authenticating -> Authenticated -> Ended,
// with Authenticating falling back to Unauthenticated on failure.
const (
	StateUnauthenticated = "unauthenticated"
	StateAuthenticating  = "authenticating"
	StateAuthenticated   = "authenticated"
	StateEnded           = "ended"
)

// State-machine errors
var (
	ErrNotUnauthenticated = errors.New("login is only permitted while unauthenticated")
	ErrNotAuthenticating  = errors.New("workspace is not in the authenticating state")
	ErrNotAuthenticated   = errors.New("order editing requires an authenticated session")
)

// Workspace is one user's session-scoped order state: identity plus the
// store that owns the horizon. No order UI or sync activity is permitted
// until it reaches StateAuthenticated.
type Workspace struct {
	mu          sync.RWMutex
	state       string
	userID      string
	displayName string
	store       *orderstate.Store
}

// New creates a workspace in the unauthenticated state.
func New() *Workspace {
	return &Workspace{state: StateUnauthenticated}
}

// State returns the current session state.
func (w *Workspace) State() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// BeginLogin moves to Authenticating.
// PRE: state is Unauthenticated
func (w *Workspace) BeginLogin() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateUnauthenticated {
		return ErrNotUnauthenticated
	}
	w.state = StateAuthenticating
	return nil
}

// FailLogin returns to Unauthenticated after a rejected or failed attempt.
// PRE: state is Authenticating
func (w *Workspace) FailLogin() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateAuthenticating {
		return ErrNotAuthenticating
	}
	w.state = StateUnauthenticated
	return nil
}

// CompleteLogin installs the identity and store and moves to Authenticated.
// PRE: state is Authenticating, store is non-nil
func (w *Workspace) CompleteLogin(userID, displayName string, store *orderstate.Store) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateAuthenticating {
		return ErrNotAuthenticating
	}
	w.state = StateAuthenticated
	w.userID = userID
	w.displayName = displayName
	w.store = store
	return nil
}

// End terminates the session. Terminal: no further transitions.
func (w *Workspace) End() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateEnded
	w.store = nil
}

// UserID returns the authenticated user id, or "" before login.
func (w *Workspace) UserID() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.userID
}

// DisplayName returns the name the order service supplied at login.
func (w *Workspace) DisplayName() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.displayName
}

// Store returns the order state store.
// POST: returns an error unless the session is authenticated
func (w *Workspace) Store() (*orderstate.Store, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.state != StateAuthenticated || w.store == nil {
		return nil, ErrNotAuthenticated
	}
	return w.store, nil
}

// Registry maps session tokens to workspaces.
type Registry struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{workspaces: make(map[string]*Workspace)}
}

// Put associates a workspace with a session token.
// PRE: token is non-empty
func (r *Registry) Put(token string, w *Workspace) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workspaces[token] = w
}

// Get retrieves the workspace for a token.
func (r *Registry) Get(token string) (*Workspace, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workspaces[token]
	return w, ok
}

// Delete ends and removes the workspace for a token.
func (r *Registry) Delete(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.workspaces[token]; ok {
		w.End()
		delete(r.workspaces, token)
	}
}
