package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProvider struct {
	signInErr  error
	session    *ProviderSession
	currentErr error
	signedOut  bool
}

func (p *stubProvider) SignInWithPassword(ctx context.Context, email, password string) (*ProviderSession, error) {
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	return p.session, nil
}

func (p *stubProvider) CurrentSession(ctx context.Context) (*ProviderSession, error) {
	if p.currentErr != nil {
		return nil, p.currentErr
	}
	if p.session == nil {
		return nil, ErrNoSession
	}
	return p.session, nil
}

func (p *stubProvider) SignOut(ctx context.Context) error {
	p.signedOut = true
	return nil
}

type stubProfiles struct {
	role Role
	err  error
}

func (p *stubProfiles) GetRole(ctx context.Context, userID string) (Role, error) {
	return p.role, p.err
}

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) LoginSucceeded(email string, fallbackMode bool) {
	if fallbackMode {
		n.events = append(n.events, "login-fallback:"+email)
	} else {
		n.events = append(n.events, "login:"+email)
	}
}

func (n *recordingNotifier) LoginFailed(email string) {
	n.events = append(n.events, "login-failed:"+email)
}

func (n *recordingNotifier) LoggedOut(email string) {
	n.events = append(n.events, "logout:"+email)
}

func newTestService(provider IdentityProvider, profiles ProfileRepository) (*Service, *recordingNotifier, SessionStorage) {
	notifier := &recordingNotifier{}
	storage := NewMemorySessionStorage()
	service := NewService(provider, profiles, NewStaticCredentialSource(), storage, notifier, zap.NewNop(), "test-secret")
	return service, notifier, storage
}

func TestAuthenticateFallbackAdminWhenRemoteFails(t *testing.T) {
	provider := &stubProvider{signInErr: errors.New("network unreachable")}
	service, notifier, storage := newTestService(provider, &stubProfiles{})

	session, err := service.Authenticate(context.Background(), "admin@example.com", "admin123")
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.Equal(t, RoleAdmin, session.User.Role)
	assert.True(t, session.Fallback)
	assert.NotEmpty(t, session.Token)

	user := service.CurrentUser()
	require.NotNil(t, user)
	assert.True(t, user.IsAdmin())

	stored, err := storage.Load()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "admin@example.com", stored.Email)

	assert.Equal(t, []string{"login-fallback:admin@example.com"}, notifier.events)
}

func TestAuthenticateFallbackEmployee(t *testing.T) {
	provider := &stubProvider{signInErr: errors.New("invalid credentials")}
	service, _, _ := newTestService(provider, &stubProfiles{})

	session, err := service.Authenticate(context.Background(), "employee@example.com", "employee123")
	require.NoError(t, err)
	assert.Equal(t, RoleEmployee, session.User.Role)
	assert.False(t, session.User.IsAdmin())
}

func TestAuthenticateinvalidCredentials(t *testing.T) {
	provider := &stubProvider{signInErr: errors.New("invalid credentials")}
	service, notifier, _ := newTestService(provider, &stubProfiles{})

	session, err := service.Authenticate(context.Background(), "admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, session)
	assert.Nil(t, service.CurrentUser())
	assert.Equal(t, []string{"login-failed:admin@example.com"}, notifier.events)
}

func TestAuthenticateFallbackDisabled(t *testing.T) {
	provider := &stubProvider{signInErr: errors.New("network unreachable")}
	notifier := &recordingNotifier{}
	service := NewService(provider, &stubProfiles{}, NewDisabledCredentialSource(),
		NewMemorySessionStorage(), notifier, zap.NewNop(), "test-secret")

	_, err := service.Authenticate(context.Background(), "admin@example.com", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateRemoteSuccessUsesProfileRole(t *testing.T) {
	provider := &stubProvider{session: &ProviderSession{
		UserID:      "u-77",
		Email:       "inspector@geda.example",
		AccessToken: "remote-token",
		ExpiresAt:   time.Now().Add(time.Hour),
	}}
	service, notifier, _ := newTestService(provider, &stubProfiles{role: RoleAdmin})

	session, err := service.Authenticate(context.Background(), "inspector@geda.example", "pw")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, session.User.Role)
	assert.False(t, session.Fallback)
	assert.Equal(t, "remote-token", session.Token)
	assert.Equal(t, []string{"login:inspector@geda.example"}, notifier.events)
}

func TestAuthenticateRemoteSuccessDefaultsRoleToEmployee(t *testing.T) {
	provider := &stubProvider{session: &ProviderSession{UserID: "u-1", Email: "new@geda.example"}}

	// Missing profile
	service, _, _ := newTestService(provider, &stubProfiles{})
	session, err := service.Authenticate(context.Background(), "new@geda.example", "pw")
	require.NoError(t, err)
	assert.Equal(t, RoleEmployee, session.User.Role)

	// Profile lookup error
	service, _, _ = newTestService(provider, &stubProfiles{err: errors.New("relation does not exist")})
	session, err = service.Authenticate(context.Background(), "new@geda.example", "pw")
	require.NoError(t, err)
	assert.Equal(t, RoleEmployee, session.User.Role)
}

func TestEndSessionClearsEverything(t *testing.T) {
	provider := &stubProvider{session: &ProviderSession{UserID: "u-1", Email: "a@b.c"}}
	service, notifier, storage := newTestService(provider, &stubProfiles{})

	_, err := service.Authenticate(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	require.NoError(t, service.EndSession(context.Background()))
	assert.Nil(t, service.CurrentUser())
	assert.True(t, provider.signedOut)

	stored, _ := storage.Load()
	assert.Nil(t, stored)
	assert.Contains(t, notifier.events, "logout:a@b.c")

	assert.ErrorIs(t, service.EndSession(context.Background()), ErrNoSession)
}

func TestRestorePrefersRemoteSession(t *testing.T) {
	provider := &stubProvider{session: &ProviderSession{UserID: "u-9", Email: "restored@geda.example"}}
	service, _, _ := newTestService(provider, &stubProfiles{role: RoleAdmin})

	require.NoError(t, service.Restore(context.Background()))
	user := service.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "restored@geda.example", user.Email)
	assert.Equal(t, RoleAdmin, user.Role)
}

func TestRestoreFallsBackToSessionStorage(t *testing.T) {
	provider := &stubProvider{currentErr: errors.New("network unreachable")}
	service, _, storage := newTestService(provider, &stubProfiles{})

	require.NoError(t, storage.Save(&User{ID: "2", Email: "employee@example.com", Role: RoleEmployee}))

	require.NoError(t, service.Restore(context.Background()))
	user := service.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "employee@example.com", user.Email)

	session := service.CurrentSession()
	require.NotNil(t, session)
	assert.True(t, session.Fallback)
}

func TestRestoreNoSession(t *testing.T) {
	service, _, _ := newTestService(&stubProvider{}, &stubProfiles{})
	assert.ErrorIs(t, service.Restore(context.Background()), ErrNoSession)
}

func TestPruneExpiredDropsStaleFallbackSession(t *testing.T) {
	provider := &stubProvider{signInErr: errors.New("network unreachable")}
	service, _, _ := newTestService(provider, &stubProfiles{})

	_, err := service.Authenticate(context.Background(), "admin@example.com", "admin123")
	require.NoError(t, err)

	service.mu.Lock()
	service.current.ExpiresAt = time.Now().Add(-time.Minute)
	service.mu.Unlock()

	service.PruneExpired()
	assert.Nil(t, service.CurrentUser())
}

func TestStaticCredentialSourceLookup(t *testing.T) {
	source := NewStaticCredentialSource()

	user, ok := source.Lookup("admin@example.com", "admin123")
	require.True(t, ok)
	assert.Equal(t, RoleAdmin, user.Role)

	_, ok = source.Lookup("admin@example.com", "nope")
	assert.False(t, ok)

	_, ok = source.Lookup("stranger@example.com", "admin123")
	assert.False(t, ok)
}
