package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Every statement is idempotent so the bootstrap can run on each startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS appointments (
		id          UUID PRIMARY KEY,
		owner_id    BIGINT NOT NULL,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		moment      TIMESTAMPTZ(0) NOT NULL,
		priority    SMALLINT NOT NULL CHECK (priority BETWEEN 1 AND 3),
		language    TEXT NOT NULL,
		status      TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_owner
		ON appointments (owner_id, moment)`,
	`CREATE TABLE IF NOT EXISTS reminders (
		id             UUID PRIMARY KEY,
		appointment_id UUID NOT NULL,
		fire_at        TIMESTAMPTZ(0) NOT NULL,
		kind           TEXT NOT NULL,
		sent           BOOLEAN NOT NULL DEFAULT FALSE,
		custom_message TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_due
		ON reminders (fire_at) WHERE sent = FALSE`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_appointment
		ON reminders (appointment_id)`,
	`CREATE TABLE IF NOT EXISTS event_logs (
		id             BIGSERIAL PRIMARY KEY,
		event_type     TEXT NOT NULL,
		appointment_id UUID,
		payload        JSONB,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates the tables the assistant owns if they do not exist yet.
// Reminders reference appointments without a foreign key: appointment creation
// and reminder creation are not transactional, and orphans are removed by the
// dispatcher's periodic cleanup instead of being prevented up front.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
