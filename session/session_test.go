package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/quillpress/quillpress/interfaces"
)

// fakeStore implements just enough of interfaces.Store for login tests.
type fakeStore struct {
	interfaces.Store
	users map[string]interfaces.User
}

func (f *fakeStore) UserBySlug(ctx context.Context, slug string) (*interfaces.User, error) {
	user, ok := f.users[slug]
	if !ok {
		return nil, interfaces.ErrUserNotFound
	}
	return &user, nil
}

func newFakeStore(t *testing.T, slug, password string) *fakeStore {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &fakeStore{users: map[string]interfaces.User{
		slug: {Slug: slug, Name: "Jane", PasswordHash: string(hash), Role: "owner"},
	}}
}

func testManager() *Manager {
	return NewManager(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLogin(t *testing.T) {
	st := newFakeStore(t, "jane-doe", "hunter2hunter2")
	mgr := testManager()

	sess, err := mgr.Login(context.Background(), st, "jane-doe", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "jane-doe", sess.UserSlug)
	assert.NotEmpty(t, sess.Token)

	got, ok := mgr.Get(sess.Token)
	require.True(t, ok)
	assert.Equal(t, sess.UserSlug, got.UserSlug)
}

func TestLoginWrongPassword(t *testing.T) {
	st := newFakeStore(t, "jane-doe", "hunter2hunter2")
	mgr := testManager()

	_, err := mgr.Login(context.Background(), st, "jane-doe", "wrong")
	assert.Error(t, err)
}

func TestLoginUnknownUser(t *testing.T) {
	st := newFakeStore(t, "jane-doe", "hunter2hunter2")
	mgr := testManager()

	_, err := mgr.Login(context.Background(), st, "nobody", "hunter2hunter2")
	assert.ErrorIs(t, err, interfaces.ErrUserNotFound)
}

func TestLogoutAndExpiry(t *testing.T) {
	st := newFakeStore(t, "jane-doe", "hunter2hunter2")
	mgr := testManager()

	sess, err := mgr.Login(context.Background(), st, "jane-doe", "hunter2hunter2")
	require.NoError(t, err)

	mgr.Logout(sess.Token)
	_, ok := mgr.Get(sess.Token)
	assert.False(t, ok)

	// Expired sessions are dropped on access.
	sess, err = mgr.Login(context.Background(), st, "jane-doe", "hunter2hunter2")
	require.NoError(t, err)
	mgr.mu.Lock()
	expired := mgr.sessions[sess.Token]
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	mgr.sessions[sess.Token] = expired
	mgr.mu.Unlock()
	_, ok = mgr.Get(sess.Token)
	assert.False(t, ok)
}
