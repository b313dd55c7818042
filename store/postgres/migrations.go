package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the ability store (Postgres).
var Migrations = migrate.NewGroup("ability")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_principals",
			Version: "20250301000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS ability_principals (
    id              TEXT PRIMARY KEY,
    email           TEXT NOT NULL,
    first_name      TEXT NOT NULL,
    last_name       TEXT NOT NULL DEFAULT '',
    telephone       TEXT NOT NULL DEFAULT '',
    roles           JSONB NOT NULL DEFAULT '[]',
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    deactivated_at  TIMESTAMPTZ,
    metadata        JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_ability_principals_email ON ability_principals (LOWER(email));
CREATE INDEX IF NOT EXISTS idx_ability_principals_active ON ability_principals (is_active);
CREATE INDEX IF NOT EXISTS idx_ability_principals_roles ON ability_principals USING GIN (roles);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS ability_principals`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_memberships",
			Version: "20250301000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS ability_memberships (
    id              TEXT PRIMARY KEY,
    principal_id    TEXT NOT NULL,
    group_id        TEXT NOT NULL,
    role            TEXT NOT NULL,
    metadata        JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(principal_id, group_id)
);

CREATE INDEX IF NOT EXISTS idx_ability_memberships_principal ON ability_memberships (principal_id);
CREATE INDEX IF NOT EXISTS idx_ability_memberships_group ON ability_memberships (group_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS ability_memberships`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_grants",
			Version: "20250301000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS ability_grants (
    id              TEXT PRIMARY KEY,
    membership_id   TEXT NOT NULL,
    action          TEXT NOT NULL,
    subject         TEXT NOT NULL,
    effect          TEXT NOT NULL DEFAULT 'allow',
    condition       JSONB NOT NULL DEFAULT '[]',
    position        INTEGER NOT NULL DEFAULT 0,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_ability_grants_membership ON ability_grants (membership_id, position);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS ability_grants`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_applicants",
			Version: "20250301000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS ability_applicants (
    id              TEXT PRIMARY KEY,
    telephone       TEXT NOT NULL,
    email           TEXT NOT NULL DEFAULT '',
    first_name      TEXT NOT NULL DEFAULT '',
    last_name       TEXT NOT NULL DEFAULT '',
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    deactivated_at  TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(telephone)
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS ability_applicants`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_check_logs",
			Version: "20250301000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS ability_check_logs (
    id              TEXT PRIMARY KEY,
    track           TEXT NOT NULL,
    principal_id    TEXT NOT NULL,
    action          TEXT NOT NULL DEFAULT '',
    subject         TEXT NOT NULL DEFAULT '',
    group_id        TEXT NOT NULL DEFAULT '',
    decision        TEXT NOT NULL,
    reason          TEXT NOT NULL DEFAULT '',
    eval_time_ns    BIGINT NOT NULL DEFAULT 0,
    request_ip      TEXT NOT NULL DEFAULT '',
    metadata        JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_ability_check_logs_principal ON ability_check_logs (track, principal_id);
CREATE INDEX IF NOT EXISTS idx_ability_check_logs_created ON ability_check_logs (created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS ability_check_logs`)
				return err
			},
		},
	)
}
