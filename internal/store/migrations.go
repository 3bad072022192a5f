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

CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	role       TEXT NOT NULL DEFAULT 'customer' CHECK(role IN ('agent', 'customer')),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tickets (
	id          TEXT PRIMARY KEY,
	customer_id TEXT NOT NULL REFERENCES users(id),
	agent_id    TEXT REFERENCES users(id),
	subject     TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL DEFAULT '',
	source      TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS replies (
	id         TEXT PRIMARY KEY,
	ticket_id  TEXT NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
	author_id  TEXT NOT NULL REFERENCES users(id),
	body       TEXT NOT NULL DEFAULT '',
	date       TEXT NOT NULL DEFAULT '',
	read       INTEGER NOT NULL DEFAULT 0 CHECK(read IN (0, 1)),
	private    INTEGER NOT NULL DEFAULT 0 CHECK(private IN (0, 1)),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS history (
	id         TEXT PRIMARY KEY,
	ticket_id  TEXT NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
	author_id  TEXT NOT NULL REFERENCES users(id),
	date       TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL CHECK(status IN ('open', 'processing', 'hold', 'closed')),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS attachments (
	id         TEXT PRIMARY KEY,
	ticket_id  TEXT NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
	url        TEXT NOT NULL,
	filename   TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS external_ids (
	kind        TEXT NOT NULL,
	external_id TEXT NOT NULL,
	internal_id TEXT NOT NULL,
	PRIMARY KEY (kind, external_id)
);

CREATE INDEX IF NOT EXISTS idx_replies_ticket_id ON replies(ticket_id);
CREATE INDEX IF NOT EXISTS idx_history_ticket_id ON history(ticket_id);
CREATE INDEX IF NOT EXISTS idx_attachments_ticket_id ON attachments(ticket_id);
CREATE INDEX IF NOT EXISTS idx_external_ids_internal ON external_ids(kind, internal_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
