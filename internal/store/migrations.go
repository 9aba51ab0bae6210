package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS clients (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	company    TEXT NOT NULL DEFAULT '',
	notes      TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	assigned_to TEXT NOT NULL DEFAULT '',
	client_id   TEXT REFERENCES clients(id) ON DELETE SET NULL,
	client_name TEXT,
	due_date    DATETIME NOT NULL,
	priority    TEXT NOT NULL DEFAULT 'medium' CHECK(priority IN ('low', 'medium', 'high')),
	status      TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'in_progress', 'completed')),
	alert_date  DATETIME,
	alert_fired INTEGER NOT NULL DEFAULT 0 CHECK(alert_fired IN (0, 1)),
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS invoices (
	id          TEXT PRIMARY KEY,
	number      TEXT NOT NULL UNIQUE,
	client_id   TEXT NOT NULL REFERENCES clients(id),
	client_name TEXT NOT NULL DEFAULT '',
	items       TEXT NOT NULL DEFAULT '[]',
	subtotal    REAL NOT NULL DEFAULT 0,
	tax_rate    REAL NOT NULL DEFAULT 0,
	tax_amount  REAL NOT NULL DEFAULT 0,
	total       REAL NOT NULL DEFAULT 0,
	status      TEXT NOT NULL DEFAULT 'draft' CHECK(status IN ('draft', 'sent', 'paid')),
	issued_at   DATETIME NOT NULL,
	due_at      DATETIME NOT NULL,
	paid_at     DATETIME,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
CREATE INDEX IF NOT EXISTS idx_tasks_client_id ON tasks(client_id);
CREATE INDEX IF NOT EXISTS idx_invoices_client_id ON invoices(client_id);
CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices(status);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_tasks_status_due
	ON tasks(status, due_date);

CREATE INDEX IF NOT EXISTS idx_tasks_alert
	ON tasks(alert_fired, alert_date);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
