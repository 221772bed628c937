package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sistemapolicial/officer-registry/internal/auth"
)

// ensureBootstrapUser upserts the configured admin account so a fresh
// deployment can log in. The password hash is replaced on every start,
// letting operators rotate the password through the environment.
func ensureBootstrapUser(ctx context.Context, pool *pgxpool.Pool, username, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		username, hash,
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
