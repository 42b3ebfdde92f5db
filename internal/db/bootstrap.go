package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// EnsureAdminUser creates the bootstrap admin account when one is configured
// and not already present. Regular users arrive through signup; this only
// exists so a fresh deployment has an admin without manual SQL.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	email = strings.ToLower(strings.TrimSpace(email))

	ctxCheck, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var exists bool
	row := pool.QueryRow(ctxCheck, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email)
	if err := row.Scan(&exists); err != nil {
		return fmt.Errorf("check admin exists: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	ctxInsert, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_, err = pool.Exec(ctxInsert, `
		INSERT INTO users (first_name, last_name, email, role, password_hash)
		VALUES ('Admin', 'User', $1, 'admin', $2)
	`, email, string(hash))
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	return nil
}
