package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Rally store (SQLite).
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
    date         TEXT NOT NULL DEFAULT (datetime('now')),
    ref_id       TEXT NOT NULL DEFAULT '',
    description  TEXT NOT NULL DEFAULT '',
    category     TEXT NOT NULL DEFAULT '',
    entries      TEXT NOT NULL DEFAULT '[]',
    metadata     TEXT,
    status       TEXT NOT NULL DEFAULT 'posted',
    created_by   TEXT NOT NULL DEFAULT '',
    total_amount INTEGER NOT NULL DEFAULT 0,
    currency     TEXT NOT NULL DEFAULT '',
    created_at   TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at   TEXT NOT NULL DEFAULT (datetime('now'))
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
    stock           INTEGER NOT NULL DEFAULT 0,
    unit            TEXT NOT NULL DEFAULT '',
    avg_cost        TEXT NOT NULL DEFAULT '0',
    last_restock_at TEXT,
    history         TEXT NOT NULL DEFAULT '[]',
    version         INTEGER NOT NULL DEFAULT 1,
    created_at      TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at      TEXT NOT NULL DEFAULT (datetime('now'))
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
    starts_at           TEXT NOT NULL DEFAULT (datetime('now')),
    financial_closed    INTEGER NOT NULL DEFAULT 0,
    financial_closed_at TEXT,
    created_at          TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at          TEXT NOT NULL DEFAULT (datetime('now'))
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
