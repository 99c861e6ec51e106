package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/quillpress/quillpress/interfaces"
)

// DefaultTTL is how long a session stays valid without renewal.
const DefaultTTL = 14 * 24 * time.Hour

// Session is an authenticated login.
type Session struct {
	// Token is the opaque identifier handed to the client.
	Token string

	// UserSlug is the canonical slug of the logged-in user.
	UserSlug string

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Manager issues and tracks sessions. Safe for concurrent use.
type Manager struct {
	ttl time.Duration
	log *slog.Logger

	mu       sync.Mutex
	sessions map[string]Session
}

// NewManager creates a session manager with the default TTL.
func NewManager(log *slog.Logger) *Manager {
	return &Manager{
		ttl:      DefaultTTL,
		log:      log,
		sessions: make(map[string]Session),
	}
}

// Login authenticates the user identified by slug against the store and
// issues a session. The password is verified against the stored bcrypt
// hash.
func (m *Manager) Login(ctx context.Context, st interfaces.Store, slug, password string) (*Session, error) {
	user, err := st.UserBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("verify password for %q: %w", slug, err)
	}

	now := time.Now()
	sess := Session{
		Token:     uuid.NewString(),
		UserSlug:  user.Slug,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[sess.Token] = sess
	m.mu.Unlock()

	m.log.Info("Session established", slog.String("user", user.Slug))
	return &sess, nil
}

// Get returns the session for a token if it exists and has not expired.
func (m *Manager) Get(token string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[token]
	if !ok {
		return nil, false
	}
	if time.Now().After(sess.ExpiresAt) {
		delete(m.sessions, token)
		return nil, false
	}
	return &sess, true
}

// Logout removes a session. Unknown tokens are a no-op.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}
