package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// CredentialSource supplies degraded-mode credentials checked when the
// identity provider cannot authenticate a login. Production builds disable
// it entirely through configuration.
type CredentialSource interface {
	Lookup(email, password string) (*User, bool)
}

type staticCredential struct {
	user         User
	passwordHash []byte
}

// StaticCredentialSource holds the two built-in portal accounts used when
// the backend is unreachable.
type StaticCredentialSource struct {
	entries []staticCredential
}

func NewStaticCredentialSource() *StaticCredentialSource {
	return &StaticCredentialSource{
		entries: []staticCredential{
			{
				user:         User{ID: "1", Email: "admin@example.com", Role: RoleAdmin},
				passwordHash: mustHash("admin123"),
			},
			{
				user:         User{ID: "2", Email: "employee@example.com", Role: RoleEmployee},
				passwordHash: mustHash("employee123"),
			},
		},
	}
}

func (s *StaticCredentialSource) Lookup(email, password string) (*User, bool) {
	for _, entry := range s.entries {
		if entry.user.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword(entry.passwordHash, []byte(password)) != nil {
			return nil, false
		}
		user := entry.user
		return &user, true
	}
	return nil, false
}

// disabledCredentialSource never matches; used when fallback logins are
// switched off.
type disabledCredentialSource struct{}

func NewDisabledCredentialSource() CredentialSource {
	return disabledCredentialSource{}
}

func (disabledCredentialSource) Lookup(email, password string) (*User, bool) {
	return nil, false
}

func mustHash(password string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
}
