package store

import (
	"database/sql"
	"errors"
	"fmt"

	"heavymetal/types"
)

// CreateUser inserts a new user row. Returns ErrDuplicate if the username is
// already taken.
func (s *Store) CreateUser(user types.User) error {
	_, err := s.db.Exec(
		`INSERT INTO users (uuid, name, hashed_password, is_active, is_superuser) VALUES (?, ?, ?, ?, ?)`,
		user.UUID, user.Name, user.HashedPassword, user.IsActive, user.IsSuperuser,
	)
	if err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("user %q: %w", user.Name, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByName looks a user up by exact username. Returns ErrNotFound if no
// such user exists.
func (s *Store) GetUserByName(name string) (*types.User, error) {
	var user types.User
	err := s.db.QueryRow(
		`SELECT uuid, name, hashed_password, is_active, is_superuser FROM users WHERE name = ?`,
		name,
	).Scan(&user.UUID, &user.Name, &user.HashedPassword, &user.IsActive, &user.IsSuperuser)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}
