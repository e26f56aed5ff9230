package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"go-task-manager/internal/model"
)

// PrincipalStore holds the static principal set. Users are read once from a
// JSON file at construction time and are immutable afterwards; there is no
// self-service registration.
type PrincipalStore struct {
	usersFile string
	byName    map[string]model.User
}

func NewPrincipalStore(usersFile string) (*PrincipalStore, error) {
	store := &PrincipalStore{
		usersFile: usersFile,
		byName:    map[string]model.User{},
	}

	if err := store.loadUsers(); err != nil {
		return nil, err
	}

	return store, nil
}

// Verify checks the presented credentials against the principal set. Unknown
// usernames and wrong passwords both surface as ErrInvalidCredentials so the
// response never reveals whether the username exists.
func (s *PrincipalStore) Verify(username string, password string) (model.User, error) {
	user, exists := s.byName[strings.ToLower(strings.TrimSpace(username))]
	if !exists {
		return model.User{}, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.User{}, model.ErrInvalidCredentials
	}

	return user, nil
}

func (s *PrincipalStore) Find(username string) (model.User, bool) {
	user, exists := s.byName[strings.ToLower(strings.TrimSpace(username))]
	return user, exists
}

func (s *PrincipalStore) loadUsers() error {
	if strings.TrimSpace(s.usersFile) == "" {
		return errors.New("users file path is required")
	}

	if err := os.MkdirAll(filepath.Dir(s.usersFile), 0o755); err != nil {
		return err
	}

	if _, err := os.Stat(s.usersFile); os.IsNotExist(err) {
		if err := s.seedDefaultUsers(); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(s.usersFile)
	if err != nil {
		return err
	}

	var users []model.User
	if err := json.Unmarshal(data, &users); err != nil {
		return fmt.Errorf("parse users file: %w", err)
	}
	if len(users) == 0 {
		return fmt.Errorf("users file %s contains no principals", s.usersFile)
	}

	byName := map[string]model.User{}
	for _, user := range users {
		byName[strings.ToLower(user.Username)] = user
	}
	s.byName = byName

	return nil
}

func (s *PrincipalStore) seedDefaultUsers() error {
	adminHash, err := bcrypt.GenerateFromPassword([]byte("admin123"), 12)
	if err != nil {
		return err
	}
	userHash, err := bcrypt.GenerateFromPassword([]byte("user123"), 12)
	if err != nil {
		return err
	}

	defaults := []model.User{
		{Username: "admin", PasswordHash: string(adminHash), Role: "admin"},
		{Username: "user", PasswordHash: string(userHash), Role: "user"},
	}

	data, err := json.MarshalIndent(defaults, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.usersFile, data, 0o600)
}
