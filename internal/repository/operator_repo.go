package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"greenhouse/internal/models"
)

var (
	ErrUsernameTaken   = errors.New("username already taken")
	ErrInvalidUsername = errors.New("username is empty")
)

// OperatorSQLite stores operator accounts in the users table. Names are
// normalized before every statement and the schema refuses any that are not.
type OperatorSQLite struct {
	db *sql.DB
}

func NewOperatorSQLite(db *sql.DB) *OperatorSQLite { return &OperatorSQLite{db: db} }

var _ Authorization = (*OperatorSQLite)(nil)

const (
	insertOperatorSQL = `INSERT INTO users (username, password_hash) VALUES (?, ?)`
	selectOperatorSQL = `SELECT id, username, password_hash FROM users WHERE username = ?`
)

// Create adds an operator and returns its id. A name that differs from an
// existing one only in case or surrounding space is ErrUsernameTaken.
func (r *OperatorSQLite) Create(username, passwordHash string) (int, error) {
	name := models.NormalizeUsername(username)
	if name == "" {
		return 0, ErrInvalidUsername
	}
	res, err := r.db.Exec(insertOperatorSQL, name, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("operator %q: %w", name, ErrUsernameTaken)
		}
		return 0, fmt.Errorf("insert operator %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("operator %q id: %w", name, err)
	}
	return int(id), nil
}

// GetByUsername returns (nil, nil) when no operator has that name.
func (r *OperatorSQLite) GetByUsername(username string) (*models.User, error) {
	name := models.NormalizeUsername(username)
	if name == "" {
		return nil, nil
	}
	var u models.User
	err := r.db.QueryRow(selectOperatorSQL, name).Scan(&u.ID, &u.Username, &u.PasswordHash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("select operator %q: %w", name, err)
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
