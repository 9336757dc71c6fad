// Package auth holds the flat-file user store and the per-login session
// registry. No hardening: credentials are stored as-is, matching the demo
// deployment this service fronts.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("user already exists")
)

type User struct {
	Password string `json:"password"`
	Name     string `json:"name"`
}

// FileStore keeps users in a JSON file keyed by email.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (map[string]User, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]User{}, nil
		}
		return nil, err
	}

	users := map[string]User{}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse user db: %w", err)
	}
	return users, nil
}

func (s *FileStore) save(users map[string]User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Authenticate checks email/password and returns the stored user.
func (s *FileStore) Authenticate(email, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	u, ok := users[email]
	if !ok || u.Password != password {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// Register adds a new user. Existing emails are not overwritten.
func (s *FileStore) Register(email, password, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := users[email]; ok {
		return ErrUserExists
	}

	users[email] = User{Password: password, Name: name}
	return s.save(users)
}
