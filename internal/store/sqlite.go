// Package store is the default target ticket store: a local SQLite
// database exposing the create/find operations the import reconciler
// needs, including the external-id mapping table that makes repeated
// imports idempotent.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/syncdesk/deskmigrate/internal/model"
)

// SQLiteStore implements the importer's TargetStore boundary on SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// SQLite serializes writes anyway, and an in-memory database is
	// scoped to a single connection.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// FindByExternalID returns the internal id mapped to an external id of
// the given kind, or "" when no mapping exists.
func (s *SQLiteStore) FindByExternalID(ctx context.Context, kind, externalID string) (string, error) {
	var internalID string
	err := s.db.GetContext(ctx, &internalID,
		"SELECT internal_id FROM external_ids WHERE kind = ? AND external_id = ?",
		kind, externalID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("looking up %s %q: %w", kind, externalID, err)
	}
	return internalID, nil
}

// SetExternalID records (or replaces) the mapping from an external id to
// an internal row id.
func (s *SQLiteStore) SetExternalID(ctx context.Context, kind, internalID, externalID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO external_ids (kind, external_id, internal_id) VALUES (?, ?, ?)",
		kind, externalID, internalID,
	)
	if err != nil {
		return fmt.Errorf("tagging %s %q: %w", kind, externalID, err)
	}
	return nil
}

// InsertUser creates a user row and returns its internal id.
func (s *SQLiteStore) InsertUser(ctx context.Context, u model.User) (string, error) {
	id := uuid.New().String()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, first_name, last_name, role) VALUES (?, ?, ?, ?, ?)",
		id, u.Email, u.FirstName, u.LastName, u.Role,
	)
	if err != nil {
		return "", fmt.Errorf("inserting user %s: %w", u.Email, err)
	}
	return id, nil
}

// InsertTicket creates a ticket row and returns its internal id. agentID
// may be empty for unassigned tickets.
func (s *SQLiteStore) InsertTicket(ctx context.Context, customerID, agentID, subject, body, source string) (string, error) {
	id := uuid.New().String()

	var agent interface{}
	if agentID != "" {
		agent = agentID
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tickets (id, customer_id, agent_id, subject, body, source) VALUES (?, ?, ?, ?, ?, ?)",
		id, customerID, agent, subject, body, source,
	)
	if err != nil {
		return "", fmt.Errorf("inserting ticket %q: %w", subject, err)
	}
	return id, nil
}

// InsertReply creates a reply row and returns its internal id.
func (s *SQLiteStore) InsertReply(ctx context.Context, ticketID, body, authorID, date string, read, private bool) (string, error) {
	id := uuid.New().String()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO replies (id, ticket_id, author_id, body, date, read, private) VALUES (?, ?, ?, ?, ?, ?, ?)",
		id, ticketID, authorID, body, date, boolToInt(read), boolToInt(private),
	)
	if err != nil {
		return "", fmt.Errorf("inserting reply on ticket %s: %w", ticketID, err)
	}
	return id, nil
}

// InsertHistoryItem creates a status-change row and returns its internal
// id. The status column is constrained to the normalized status set, so
// an invalid value fails the insert.
func (s *SQLiteStore) InsertHistoryItem(ctx context.Context, ticketID, authorID, date, status string) (string, error) {
	id := uuid.New().String()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO history (id, ticket_id, author_id, date, status) VALUES (?, ?, ?, ?, ?)",
		id, ticketID, authorID, date, status,
	)
	if err != nil {
		return "", fmt.Errorf("inserting history item on ticket %s: %w", ticketID, err)
	}
	return id, nil
}

// InsertAttachment creates an attachment row on a ticket.
func (s *SQLiteStore) InsertAttachment(ctx context.Context, ticketID string, att model.Attachment) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO attachments (id, ticket_id, url, filename) VALUES (?, ?, ?, ?)",
		uuid.New().String(), ticketID, att.URL, att.Filename,
	)
	if err != nil {
		return fmt.Errorf("inserting attachment %s on ticket %s: %w", att.Filename, ticketID, err)
	}
	return nil
}

// TicketAttachmentURLs returns the URLs of all attachments already
// stored on a ticket.
func (s *SQLiteStore) TicketAttachmentURLs(ctx context.Context, ticketID string) ([]string, error) {
	var urls []string
	err := s.db.SelectContext(ctx, &urls,
		"SELECT url FROM attachments WHERE ticket_id = ? ORDER BY created_at",
		ticketID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing attachments for ticket %s: %w", ticketID, err)
	}
	return urls, nil
}

// CountTickets returns the number of ticket rows.
func (s *SQLiteStore) CountTickets(ctx context.Context) (int, error) {
	return s.count(ctx, "tickets")
}

// CountReplies returns the number of reply rows.
func (s *SQLiteStore) CountReplies(ctx context.Context) (int, error) {
	return s.count(ctx, "replies")
}

// CountHistoryItems returns the number of history rows.
func (s *SQLiteStore) CountHistoryItems(ctx context.Context) (int, error) {
	return s.count(ctx, "history")
}

// CountAttachments returns the number of attachment rows.
func (s *SQLiteStore) CountAttachments(ctx context.Context) (int, error) {
	return s.count(ctx, "attachments")
}

func (s *SQLiteStore) count(ctx context.Context, table string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
