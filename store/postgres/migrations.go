package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Rally store.
var Migrations = migrate.NewGroup("rally")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_rally_journals",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS rally_journals (
    id           TEXT PRIMARY KEY,
    date         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    ref_id       TEXT NOT NULL DEFAULT '',
    description  TEXT NOT NULL DEFAULT '',
    category     TEXT NOT NULL DEFAULT '',
    entries      JSONB NOT NULL DEFAULT '[]',
    metadata     JSONB,
    status       TEXT NOT NULL DEFAULT 'posted',
    created_by   TEXT NOT NULL DEFAULT '',
    total_amount BIGINT NOT NULL DEFAULT 0,
    currency     TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_rally_journals_date ON rally_journals (date);
CREATE INDEX IF NOT EXISTS idx_rally_journals_category ON rally_journals (category, date);
CREATE INDEX IF NOT EXISTS idx_rally_journals_ref ON rally_journals (ref_id) WHERE ref_id != '';
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS rally_journals`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_rally_items",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS rally_items (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL DEFAULT '',
    sku             TEXT NOT NULL DEFAULT '',
    category        TEXT NOT NULL DEFAULT 'consumable',
    stock           BIGINT NOT NULL DEFAULT 0,
    unit            TEXT NOT NULL DEFAULT '',
    avg_cost        TEXT NOT NULL DEFAULT '0',
    last_restock_at TIMESTAMPTZ,
    history         JSONB NOT NULL DEFAULT '[]',
    version         BIGINT NOT NULL DEFAULT 1,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_rally_items_sku ON rally_items (sku);
CREATE INDEX IF NOT EXISTS idx_rally_items_category ON rally_items (category, name);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS rally_items`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_rally_events",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS rally_events (
    id                  TEXT PRIMARY KEY,
    name                TEXT NOT NULL DEFAULT '',
    type                TEXT NOT NULL DEFAULT '',
    status              TEXT NOT NULL DEFAULT 'open',
    starts_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    financial_closed    BOOLEAN NOT NULL DEFAULT FALSE,
    financial_closed_at TIMESTAMPTZ,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_rally_events_status ON rally_events (status, starts_at);
CREATE INDEX IF NOT EXISTS idx_rally_events_closed ON rally_events (financial_closed);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS rally_events`)
				return err
			},
		},
	)
}
