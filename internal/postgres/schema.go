package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	username      VARCHAR(64) NOT NULL UNIQUE,
	email         VARCHAR(120) NOT NULL UNIQUE,
	password_hash VARCHAR(255) NOT NULL,
	nickname      VARCHAR(64),
	avatar_url    VARCHAR(255),
	major         VARCHAR(100),
	grade         VARCHAR(50),
	bio           TEXT,
	skills        TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS competitions (
	id          BIGSERIAL PRIMARY KEY,
	name        VARCHAR(200) NOT NULL,
	category    VARCHAR(100),
	description TEXT NOT NULL,
	start_time  TIMESTAMPTZ,
	end_time    TIMESTAMPTZ,
	organizer   VARCHAR(150),
	status      VARCHAR(50) NOT NULL DEFAULT 'recruiting',
	created_by  BIGINT NOT NULL REFERENCES users(id),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_competitions_status ON competitions(status);

CREATE TABLE IF NOT EXISTS teams (
	id             BIGSERIAL PRIMARY KEY,
	name           VARCHAR(100) NOT NULL,
	description    TEXT,
	competition_id BIGINT NOT NULL REFERENCES competitions(id),
	leader_id      BIGINT NOT NULL REFERENCES users(id),
	status         VARCHAR(50) NOT NULL DEFAULT 'open',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_teams_competition ON teams(competition_id);

CREATE TABLE IF NOT EXISTS team_members (
	user_id   BIGINT NOT NULL REFERENCES users(id),
	team_id   BIGINT NOT NULL REFERENCES teams(id),
	role      VARCHAR(50) NOT NULL DEFAULT 'member',
	joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, team_id)
);

CREATE TABLE IF NOT EXISTS audit_logs (
	id         BIGSERIAL PRIMARY KEY,
	actor_id   BIGINT REFERENCES users(id) ON DELETE SET NULL,
	action     VARCHAR(100) NOT NULL,
	details    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates all tables on startup if they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
