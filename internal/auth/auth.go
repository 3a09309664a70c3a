// Package auth implements the session manager: login against the fixed
// roster, role-gated access, and logout. The session is a JSON-encoded user
// record in a session-scoped key-value store.
package auth

import (
	"context"
	"encoding/json"
	"time"

	"cquiz-service/internal/domain"
	"cquiz-service/internal/identity"
	"cquiz-service/internal/store"
)

// EntryPage is the target of every unauthenticated or unauthorized redirect.
const EntryPage = "index.html"

// DefaultLogoutDelay is the cosmetic fade-out window before the session is
// cleared on logout.
const DefaultLogoutDelay = 400 * time.Millisecond

// Hooks are the navigation and notice capabilities of the hosting
// environment. Nil hooks are no-ops.
type Hooks struct {
	// Navigate moves the host to another page.
	Navigate func(target string)
	// Notify surfaces a blocking user-visible notice.
	Notify func(message string)
}

// Manager establishes, reads, and clears the current-user session.
type Manager struct {
	directory *identity.Directory
	kv        store.KV
	key       string
	hooks     Hooks
	delay     time.Duration
}

func NewManager(directory *identity.Directory, kv store.KV, key string, hooks Hooks) *Manager {
	return &Manager{
		directory: directory,
		kv:        kv,
		key:       key,
		hooks:     hooks,
		delay:     DefaultLogoutDelay,
	}
}

// WithLogoutDelay overrides the cosmetic logout delay. Tests set it to zero.
func (m *Manager) WithLogoutDelay(d time.Duration) *Manager {
	m.delay = d
	return m
}

// Login authenticates a roll against the roster and the derived password.
// On success the user is persisted as the session.
func (m *Manager) Login(ctx context.Context, roll, password string) (domain.User, error) {
	user, ok := m.directory.Lookup(roll)
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}

	expected, ok := identity.DerivePassword(roll)
	if !ok || password != expected {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	data, err := json.Marshal(user)
	if err != nil {
		return domain.User{}, err
	}
	if err := m.kv.SetItem(ctx, m.key, string(data)); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Logout clears the session after the cosmetic delay, then navigates to the
// entry page. The clear is deferred so it happens even when navigation
// panics or fails.
func (m *Manager) Logout(ctx context.Context) (err error) {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	defer func() {
		if removeErr := m.kv.RemoveItem(ctx, m.key); removeErr != nil && err == nil {
			err = removeErr
		}
	}()
	if m.hooks.Navigate != nil {
		m.hooks.Navigate(EntryPage)
	}
	return nil
}

// Current reads the session without gating. ok is false when no session
// exists or the stored record is malformed.
func (m *Manager) Current(ctx context.Context) (domain.User, bool, error) {
	raw, ok, err := m.kv.GetItem(ctx, m.key)
	if err != nil || !ok {
		return domain.User{}, false, err
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.Roll == "" {
		return domain.User{}, false, nil
	}
	return user, true, nil
}

// Require gates access to a view. An absent session redirects to the entry
// page; a role mismatch additionally raises a notice. Either way the caller
// gets an error and must not proceed.
func (m *Manager) Require(ctx context.Context, role domain.Role) (domain.User, error) {
	user, ok, err := m.Current(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		m.navigate(EntryPage)
		return domain.User{}, domain.ErrNotAuthenticated
	}
	if role != "" && user.Role != role {
		m.notify("Unauthorized")
		m.navigate(EntryPage)
		return domain.User{}, domain.ErrUnauthorized
	}
	return user, nil
}

func (m *Manager) navigate(target string) {
	if m.hooks.Navigate != nil {
		m.hooks.Navigate(target)
	}
}

func (m *Manager) notify(message string) {
	if m.hooks.Notify != nil {
		m.hooks.Notify(message)
	}
}
