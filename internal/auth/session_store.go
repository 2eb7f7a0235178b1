package auth

import (
	"encoding/json"
	"sync"
)

const sessionStorageKey = "user"

// SessionStorage is the session-scoped persistence used only for fallback
// sessions; remote sessions are held by the identity provider itself. The
// stored value is the JSON-serialized user, mirroring the client's
// sessionStorage contract.
type SessionStorage interface {
	Save(user *User) error
	Load() (*User, error)
	Clear() error
}

type memorySessionStorage struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemorySessionStorage() SessionStorage {
	return &memorySessionStorage{values: make(map[string][]byte)}
}

func (s *memorySessionStorage) Save(user *User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[sessionStorageKey] = data
	return nil
}

func (s *memorySessionStorage) Load() (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.values[sessionStorageKey]
	if !ok {
		return nil, nil
	}
	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *memorySessionStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, sessionStorageKey)
	return nil
}
