package auth

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mkamau/fleet-ledger/internal/domain"
)

// userColumns is the column set of the credential table.
var userColumns = []string{"Username", "PasswordHash", "Role", "VehicleReg"}

// UserStore persists accounts in users.csv next to the ledger tables, with
// the same whole-file-rewrite discipline: one mutex, load, mutate, rewrite.
type UserStore struct {
	mu   sync.Mutex
	path string
}

// OpenUserStore prepares a UserStore at path, creating an empty header-only
// file when none exists.
func OpenUserStore(path string) (*UserStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("auth.OpenUserStore: %w: %v", domain.ErrStorage, err)
	}
	s := &UserStore{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.write(nil); err != nil {
			return nil, fmt.Errorf("auth.OpenUserStore: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("auth.OpenUserStore: %w: %v", domain.ErrStorage, err)
	}
	return s, nil
}

// Get returns the account with the given username.
// Returns domain.ErrNotFound when it does not exist.
func (s *UserStore) Get(username string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.read()
	if err != nil {
		return domain.User{}, fmt.Errorf("auth.UserStore.Get: %w", err)
	}
	for _, u := range users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("auth.UserStore.Get: %w", domain.ErrNotFound)
}

// Create appends a new account. Usernames are unique; creating an existing
// one returns domain.ErrValidation.
func (s *UserStore) Create(user domain.User) error {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if user.PasswordHash == "" {
		return fmt.Errorf("%w: password is required", domain.ErrValidation)
	}
	if !domain.ValidRole(user.Role) {
		return fmt.Errorf("%w: unknown role %q", domain.ErrValidation, user.Role)
	}
	if user.Role == domain.RoleDriver && strings.TrimSpace(user.VehicleReg) == "" {
		return fmt.Errorf("%w: driver accounts need an assigned vehicle", domain.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.read()
	if err != nil {
		return fmt.Errorf("auth.UserStore.Create: %w", err)
	}
	for _, u := range users {
		if u.Username == user.Username {
			return fmt.Errorf("auth.UserStore.Create: %w: username already exists", domain.ErrValidation)
		}
	}
	if err := s.write(append(users, user)); err != nil {
		return fmt.Errorf("auth.UserStore.Create: %w", err)
	}
	return nil
}

// Count returns the number of accounts. Used at startup to decide whether
// the bootstrap admin needs seeding.
func (s *UserStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.read()
	if err != nil {
		return 0, fmt.Errorf("auth.UserStore.Count: %w", err)
	}
	return len(users), nil
}

// read loads all accounts. Callers must hold s.mu. Rows with fewer cells
// than the header load with the missing cells empty.
func (s *UserStore) read() ([]domain.User, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: open users: %v", domain.ErrStorage, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read users: %v", domain.ErrStorage, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cell := func(rec []string, i int) string {
		if i < len(rec) {
			return rec[i]
		}
		return ""
	}
	users := make([]domain.User, 0, len(records)-1)
	for _, rec := range records[1:] {
		users = append(users, domain.User{
			Username:     cell(rec, 0),
			PasswordHash: cell(rec, 1),
			Role:         domain.Role(cell(rec, 2)),
			VehicleReg:   cell(rec, 3),
		})
	}
	return users, nil
}

// write rewrites the whole file via temp file and rename. Callers must hold
// s.mu.
func (s *UserStore) write(users []domain.User) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "users.csv.tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp users: %v", domain.ErrStorage, err)
	}
	tmpName := tmp.Name()

	w := csv.NewWriter(tmp)
	writeErr := w.Write(userColumns)
	for _, u := range users {
		if writeErr != nil {
			break
		}
		writeErr = w.Write([]string{u.Username, u.PasswordHash, string(u.Role), u.VehicleReg})
	}
	if writeErr == nil {
		w.Flush()
		writeErr = w.Error()
	}
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr == nil {
		writeErr = os.Rename(tmpName, s.path)
	}
	if writeErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: write users: %v", domain.ErrStorage, writeErr)
	}
	return nil
}
