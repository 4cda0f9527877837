package postgres

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// migrations holds the idempotent DDL applied at boot. Statements run in
// order inside a single session; each is safe to re-run.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS gov_params (
		id                 SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		transfer_fee       BIGINT NOT NULL,
		vote_threshold     BIGINT NOT NULL,
		submission_deposit BIGINT NOT NULL,
		initial_supply     BIGINT NOT NULL,
		burned             BIGINT NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS gov_accounts (
		principal TEXT PRIMARY KEY,
		tokens    BIGINT NOT NULL CHECK (tokens >= 0)
	)`,

	`CREATE TABLE IF NOT EXISTS gov_proposals (
		id             BIGINT PRIMARY KEY,
		submitted_at   TIMESTAMPTZ NOT NULL,
		proposer       TEXT NOT NULL,
		target         TEXT NOT NULL,
		method         TEXT NOT NULL,
		message        BYTEA NOT NULL DEFAULT ''::bytea,
		state          TEXT NOT NULL,
		failure_reason TEXT NOT NULL DEFAULT '',
		votes_yes      BIGINT NOT NULL DEFAULT 0,
		votes_no       BIGINT NOT NULL DEFAULT 0,
		voters         JSONB NOT NULL DEFAULT '[]'::jsonb
	)`,

	`CREATE INDEX IF NOT EXISTS idx_gov_proposals_state ON gov_proposals (state)`,

	`CREATE TABLE IF NOT EXISTS members (
		principal      TEXT PRIMARY KEY,
		username       TEXT NOT NULL UNIQUE,
		password_hash  TEXT NOT NULL,
		access_key     TEXT NOT NULL UNIQUE,
		secret_key_enc TEXT NOT NULL,
		status         TEXT NOT NULL DEFAULT 'ACTIVE',
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS audit_logs (
		id            UUID PRIMARY KEY,
		principal     TEXT,
		action        TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		resource_id   TEXT NOT NULL DEFAULT '',
		details       TEXT NOT NULL DEFAULT '',
		ip_address    TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs (created_at)`,
}

// Migrate ensures the schema exists.
func Migrate(ctx context.Context, pool Pool, log zerolog.Logger) error {
	for i, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying migration %d: %w", i+1, err)
		}
	}

	log.Info().Int("statements", len(migrations)).Msg("database schema ensured")
	return nil
}
