package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Manager hands out one Store per client, each persisted under its own key namespace.
// Only clients that signed in are cached; anonymous clients cost nothing.
type Manager struct {
	opts Options

	mu     sync.Mutex
	stores map[string]*Store
}

// NewManager builds a manager. opts.KV is shared and namespaced per client.
func NewManager(opts Options) (*Manager, error) {
	if opts.KV == nil {
		return nil, ErrMissingKV
	}
	return &Manager{opts: opts, stores: make(map[string]*Store)}, nil
}

// NewClientID allocates an id for a client that has no session yet.
func (m *Manager) NewClientID() string {
	return uuid.NewString()
}

// Store returns the session store for clientID, creating it when needed.
// Call it right before a login or registration.
func (m *Manager) Store(ctx context.Context, clientID string) (*Store, error) {
	if clientID == "" {
		return nil, errors.New("session: client id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stores[clientID]; ok {
		return s, nil
	}
	s, err := NewStore(ctx, m.scoped(clientID))
	if err != nil {
		return nil, err
	}
	m.stores[clientID] = s
	return s, nil
}

// Lookup returns the store of a signed-in client, rehydrating it from the KV
// store on first access. It returns nil when the client has no session.
func (m *Manager) Lookup(ctx context.Context, clientID string) (*Store, error) {
	if clientID == "" {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stores[clientID]; ok {
		return s, nil
	}
	opts := m.scoped(clientID)
	if _, ok, err := opts.KV.Get(ctx, KeyUser); err != nil {
		return nil, fmt.Errorf("session: lookup %s: %w", clientID, err)
	} else if !ok {
		return nil, nil
	}
	s, err := NewStore(ctx, opts)
	if err != nil {
		return nil, err
	}
	if !s.State().IsAuthenticated {
		return nil, nil
	}
	m.stores[clientID] = s
	return s, nil
}

// Forget drops the cached store for clientID. Persisted state is kept.
func (m *Manager) Forget(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, clientID)
}

// Len reports how many stores are cached.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

func (m *Manager) scoped(clientID string) Options {
	opts := m.opts
	opts.KV = Namespace(m.opts.KV, clientID)
	return opts
}
