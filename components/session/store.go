package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Persisted keys, mirroring what the web client keeps in local storage.
const (
	KeyUser     = "user"
	KeyUserType = "userType"
	KeyIsAdmin  = "isAdmin"
	KeyToken    = "token"
	KeyAdmin    = "admin"
)

var (
	ErrMissingKV        = errors.New("session: key/value store not configured")
	ErrNotAuthenticated = errors.New("session: not authenticated")
	ErrInvalidRole      = errors.New("session: invalid role")
)

// Options configures a Store.
type Options struct {
	KV        KVStore
	Admin     Credentials
	MockUser  User
	Telemetry Telemetry
	// NewID generates ids for registered users.
	NewID func() string
}

// Store holds the authentication state for one client and mirrors it into a KVStore.
type Store struct {
	opts Options

	mu    sync.RWMutex
	state State

	subMu sync.RWMutex
	subs  map[int]chan State
	next  int
}

// NewStore builds a Store and rehydrates any persisted state.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	if opts.KV == nil {
		return nil, ErrMissingKV
	}
	if opts.Admin.Email == "" || opts.Admin.Password == "" {
		opts.Admin = DefaultAdminCredentials()
	}
	if opts.MockUser.ID == "" {
		opts.MockUser = DefaultMockUser()
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return "user_" + uuid.NewString() }
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)

	s := &Store{
		opts:  opts,
		state: loggedOut(),
		subs:  make(map[int]chan State),
	}
	if err := s.rehydrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func loggedOut() State {
	return State{Role: RoleRider}
}

func (s *Store) rehydrate(ctx context.Context) error {
	raw, ok, err := s.opts.KV.Get(ctx, KeyUser)
	if err != nil {
		return fmt.Errorf("session: load user: %w", err)
	}
	if !ok {
		return nil
	}
	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.opts.Telemetry.Record(ctx, "session.rehydrate.corrupt", map[string]any{"error": err.Error()})
		return s.opts.KV.Delete(ctx, KeyUser, KeyUserType, KeyIsAdmin)
	}
	role := RoleRider
	if saved, ok, err := s.opts.KV.Get(ctx, KeyUserType); err != nil {
		return fmt.Errorf("session: load user type: %w", err)
	} else if ok {
		if parsed, perr := ParseRole(saved); perr == nil {
			role = parsed
		}
	}
	isAdmin, _, err := s.opts.KV.Get(ctx, KeyIsAdmin)
	if err != nil {
		return fmt.Errorf("session: load admin flag: %w", err)
	}

	s.mu.Lock()
	s.state = State{
		IsAuthenticated: true,
		User:            &user,
		Role:            role,
		IsAdmin:         isAdmin == "true",
	}
	s.mu.Unlock()
	s.opts.Telemetry.Record(ctx, "session.rehydrate", map[string]any{"user_id": user.ID, "role": string(role)})
	return nil
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Login signs in. The admin pair yields an admin session; any other input signs in
// the mock user with the requested role.
func (s *Store) Login(ctx context.Context, email, password string, role Role) (LoginResult, error) {
	if email == s.opts.Admin.Email && password == s.opts.Admin.Password {
		user := adminUser(s.opts.Admin.Email)
		if err := s.commit(ctx, State{IsAuthenticated: true, User: &user, Role: RoleAdmin, IsAdmin: true}); err != nil {
			return LoginResult{}, err
		}
		s.opts.Telemetry.Record(ctx, "session.login", map[string]any{"user_id": user.ID, "admin": true})
		return LoginResult{Success: true, IsAdmin: true}, nil
	}

	role, err := nonAdminRole(role)
	if err != nil {
		return LoginResult{}, err
	}
	user := s.opts.MockUser
	if err := s.commit(ctx, State{IsAuthenticated: true, User: &user, Role: role}); err != nil {
		return LoginResult{}, err
	}
	s.opts.Telemetry.Record(ctx, "session.login", map[string]any{"user_id": user.ID, "admin": false, "role": string(role)})
	return LoginResult{Success: true}, nil
}

// Register creates a mock account from the input and signs it in.
func (s *Store) Register(ctx context.Context, input RegisterInput, role Role) (User, error) {
	role, err := nonAdminRole(role)
	if err != nil {
		return User{}, err
	}
	user := s.opts.MockUser
	if v := strings.TrimSpace(input.Name); v != "" {
		user.Name = v
	}
	if v := strings.TrimSpace(input.NameEn); v != "" {
		user.NameEn = v
	}
	if v := strings.TrimSpace(input.Email); v != "" {
		user.Email = v
	}
	if v := strings.TrimSpace(input.Phone); v != "" {
		user.Phone = v
	}
	user.ID = s.opts.NewID()
	if err := s.commit(ctx, State{IsAuthenticated: true, User: &user, Role: role}); err != nil {
		return User{}, err
	}
	s.opts.Telemetry.Record(ctx, "session.register", map[string]any{"user_id": user.ID, "role": string(role)})
	return user, nil
}

// Logout clears the in-memory and persisted state.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.opts.KV.Delete(ctx, KeyUser, KeyUserType, KeyIsAdmin, KeyToken, KeyAdmin); err != nil {
		return fmt.Errorf("session: clear persisted state: %w", err)
	}
	s.mu.Lock()
	s.state = loggedOut()
	snapshot := s.state.clone()
	s.mu.Unlock()
	s.publish(snapshot)
	s.opts.Telemetry.Record(ctx, "session.logout", nil)
	return nil
}

// UpdateUser merges the patch into the signed-in user.
func (s *Store) UpdateUser(ctx context.Context, patch UserPatch) (User, error) {
	current := s.State()
	if !current.IsAuthenticated || current.User == nil {
		return User{}, ErrNotAuthenticated
	}
	updated := patch.apply(*current.User)
	current.User = &updated
	if err := s.commit(ctx, current); err != nil {
		return User{}, err
	}
	return updated, nil
}

// SetRole switches the user type for the signed-in account.
func (s *Store) SetRole(ctx context.Context, role Role) error {
	current := s.State()
	if !current.IsAuthenticated {
		return ErrNotAuthenticated
	}
	role, err := nonAdminRole(role)
	if err != nil {
		return err
	}
	if current.IsAdmin {
		return fmt.Errorf("%w: admin sessions cannot switch type", ErrInvalidRole)
	}
	current.Role = role
	return s.commit(ctx, current)
}

// Subscribe streams state changes until cancel is called. A subscriber that
// falls behind loses its oldest pending states, never the latest one.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.next
	s.next++
	ch := make(chan State, subscriberBuffer)
	s.subs[id] = ch
	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (s *Store) commit(ctx context.Context, next State) error {
	raw, err := json.Marshal(next.User)
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}
	isAdmin := "false"
	if next.IsAdmin {
		isAdmin = "true"
	}
	if err := s.opts.KV.Set(ctx, KeyUser, string(raw)); err != nil {
		return fmt.Errorf("session: persist user: %w", err)
	}
	if err := s.opts.KV.Set(ctx, KeyUserType, string(next.Role)); err != nil {
		return fmt.Errorf("session: persist user type: %w", err)
	}
	if err := s.opts.KV.Set(ctx, KeyIsAdmin, isAdmin); err != nil {
		return fmt.Errorf("session: persist admin flag: %w", err)
	}
	s.mu.Lock()
	s.state = next.clone()
	snapshot := s.state.clone()
	s.mu.Unlock()
	s.publish(snapshot)
	return nil
}

const subscriberBuffer = 4

// publish never blocks. When a buffer is full the oldest queued state makes
// room for the new one.
func (s *Store) publish(state State) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- state.clone():
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- state.clone():
		default:
		}
	}
}

func nonAdminRole(role Role) (Role, error) {
	switch role {
	case "":
		return RoleRider, nil
	case RoleRider, RoleDriver:
		return role, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
}
