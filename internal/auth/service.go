package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// fallbackSessionTTL bounds locally issued sessions; provider sessions carry
// their own expiry.
const fallbackSessionTTL = 12 * time.Hour

// Notifier receives the human-readable status of every session transition.
// Emitting these is part of the session store's contract, not UI polish.
type Notifier interface {
	LoginSucceeded(email string, fallbackMode bool)
	LoginFailed(email string)
	LoggedOut(email string)
}

// Service is the session store: it authenticates against the hosted
// identity provider, falls back to the static credential table when the
// provider cannot answer, and holds the current user for the session.
type Service struct {
	provider    IdentityProvider
	profiles    ProfileRepository
	credentials CredentialSource
	storage     SessionStorage
	notifier    Notifier
	logger      *zap.Logger
	jwtSecret   []byte

	mu      sync.RWMutex
	current *Session
}

func NewService(
	provider IdentityProvider,
	profiles ProfileRepository,
	credentials CredentialSource,
	storage SessionStorage,
	notifier Notifier,
	logger *zap.Logger,
	jwtSecret string,
) *Service {
	return &Service{
		provider:    provider,
		profiles:    profiles,
		credentials: credentials,
		storage:     storage,
		notifier:    notifier,
		logger:      logger,
		jwtSecret:   []byte(jwtSecret),
	}
}

// Authenticate signs the user in. Remote failures of any kind (network,
// rejected credentials) route through the fallback credential table; only a
// miss there surfaces ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	remote, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		s.logger.Warn("identity provider sign-in failed, checking fallback credentials",
			zap.String("email", email), zap.Error(err))
		return s.authenticateFallback(email, password)
	}

	session := &Session{
		User: User{
			ID:    remote.UserID,
			Email: remote.Email,
			Role:  s.lookupRole(ctx, remote.UserID),
		},
		Token:     remote.AccessToken,
		ExpiresAt: remote.ExpiresAt,
	}

	s.setCurrent(session)
	if s.notifier != nil {
		s.notifier.LoginSucceeded(email, false)
	}
	return session, nil
}

func (s *Service) authenticateFallback(email, password string) (*Session, error) {
	user, ok := s.credentials.Lookup(email, password)
	if !ok {
		if s.notifier != nil {
			s.notifier.LoginFailed(email)
		}
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueFallbackToken(user)
	if err != nil {
		return nil, err
	}

	session := &Session{
		User:      *user,
		Token:     token,
		Fallback:  true,
		ExpiresAt: time.Now().Add(fallbackSessionTTL),
	}

	// Fallback sessions have no provider persistence, so keep the user in
	// session-scoped storage for restarts within the same session.
	if err := s.storage.Save(user); err != nil {
		s.logger.Warn("failed to persist fallback session", zap.Error(err))
	}

	s.setCurrent(session)
	if s.notifier != nil {
		s.notifier.LoginSucceeded(email, true)
	}
	return session, nil
}

// Restore re-establishes a session on startup: the provider's own session
// first, re-fetching the role, then session-scoped storage if the provider
// check errors.
func (s *Service) Restore(ctx context.Context) error {
	remote, err := s.provider.CurrentSession(ctx)
	if err == nil && remote != nil {
		session := &Session{
			User: User{
				ID:    remote.UserID,
				Email: remote.Email,
				Role:  s.lookupRole(ctx, remote.UserID),
			},
			Token:     remote.AccessToken,
			ExpiresAt: remote.ExpiresAt,
		}
		s.setCurrent(session)
		return nil
	}
	if err != nil && err != ErrNoSession {
		s.logger.Warn("identity provider session check failed, trying local storage", zap.Error(err))
		user, loadErr := s.storage.Load()
		if loadErr == nil && user != nil {
			s.setCurrent(&Session{
				User:      *user,
				Fallback:  true,
				ExpiresAt: time.Now().Add(fallbackSessionTTL),
			})
			return nil
		}
	}
	return ErrNoSession
}

// CurrentUser returns the signed-in user, or nil.
func (s *Service) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	user := s.current.User
	return &user
}

// CurrentSession returns the active session, or nil.
func (s *Service) CurrentSession() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	session := *s.current
	return &session
}

// UserForToken resolves a request's bearer token to its user. Locally issued
// tokens verify against the signing secret; provider tokens must match the
// active provider session. Anything else resolves to nil.
func (s *Service) UserForToken(token string) *User {
	if token == "" {
		return nil
	}
	if user := s.parseFallbackToken(token); user != nil {
		return user
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current != nil && !s.current.Fallback && s.current.Token == token {
		user := s.current.User
		return &user
	}
	return nil
}

func (s *Service) parseFallbackToken(token string) *User {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if sub == "" {
		return nil
	}
	return &User{ID: sub, Email: email, Role: Role(role)}
}

// EndSession invalidates the remote session if one exists, clears the
// session-scoped storage, and drops the in-memory user.
func (s *Service) EndSession(ctx context.Context) error {
	session := s.CurrentSession()
	if session == nil {
		return ErrNoSession
	}

	if !session.Fallback {
		if err := s.provider.SignOut(ctx); err != nil {
			s.logger.Warn("identity provider sign-out failed", zap.Error(err))
		}
	}
	if err := s.storage.Clear(); err != nil {
		s.logger.Warn("failed to clear session storage", zap.Error(err))
	}

	s.setCurrent(nil)
	if s.notifier != nil {
		s.notifier.LoggedOut(session.User.Email)
	}
	return nil
}

// PruneExpired drops a fallback session past its TTL. Run periodically.
func (s *Service) PruneExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.Fallback && time.Now().After(s.current.ExpiresAt) {
		s.logger.Info("fallback session expired", zap.String("email", s.current.User.Email))
		s.current = nil
		_ = s.storage.Clear()
	}
}

func (s *Service) lookupRole(ctx context.Context, userID string) Role {
	role, err := s.profiles.GetRole(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to fetch user profile, defaulting role",
			zap.String("user_id", userID), zap.Error(err))
		return RoleEmployee
	}
	if role == "" {
		return RoleEmployee
	}
	return role
}

func (s *Service) setCurrent(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = session
}

func (s *Service) issueFallbackToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"exp":   time.Now().Add(fallbackSessionTTL).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
