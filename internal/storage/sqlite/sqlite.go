// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/internal/storage"
)

// MemoryPath opens a private in-memory database that lives as long as the store.
const MemoryPath = ":memory:"

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	// mu serializes writers so read-modify-write cycles never interleave.
	mu sync.Mutex
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLiteStore with the given database path.
// MemoryPath keeps everything in memory; any other path is a file whose parent
// directories are created. Migrations run automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dsn, err := dataSourceName(dbPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: it keeps a shared in-memory database alive.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := runMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func dataSourceName(dbPath string) (string, error) {
	const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	if dbPath == "" || dbPath == MemoryPath {
		return fmt.Sprintf("file:receiptsplit-%s?mode=memory&cache=shared&%s", uuid.NewString(), pragmas), nil
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return fmt.Sprintf("file:%s?%s", dbPath, pragmas), nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Create persists a new session with its items and assignments.
func (s *SQLiteStore) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		return errors.New("session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM sessions WHERE id = ?", session.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if exists > 0 {
		return storage.ErrExists
	}

	pending, messages, err := encodeJSONColumns(session)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, currency, subtotal, tax, tip, total, receipt_currency, image_ref, pending, messages, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.Currency,
		session.Receipt.Subtotal, session.Receipt.Tax, session.Receipt.Tip, session.Receipt.Total,
		session.Receipt.Currency, session.Receipt.ImageRef,
		pending, messages, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	if err := insertItems(ctx, tx, session.ID, session.Receipt.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Get retrieves a session by ID, including all items and assignments.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.Session, error) {
	return load(ctx, s.db, id)
}

// Update loads the session, applies fn and rewrites it in one transaction.
func (s *SQLiteStore) Update(ctx context.Context, id string, fn storage.UpdateFunc) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	session, err := load(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	session.ID = id

	pending, messages, err := encodeJSONColumns(session)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE sessions SET currency = ?, subtotal = ?, tax = ?, tip = ?, total = ?,
		 receipt_currency = ?, image_ref = ?, pending = ?, messages = ?, created_at = ?, updated_at = ?
		 WHERE id = ?`,
		session.Currency,
		session.Receipt.Subtotal, session.Receipt.Tax, session.Receipt.Tip, session.Receipt.Total,
		session.Receipt.Currency, session.Receipt.ImageRef,
		pending, messages, session.CreatedAt, session.UpdatedAt,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	// Assignments go with their items through ON DELETE CASCADE.
	if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE session_id = ?", id); err != nil {
		return nil, fmt.Errorf("failed to clear items: %w", err)
	}
	if err := insertItems(ctx, tx, id, session.Receipt.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return session, nil
}

// Delete removes a session and, by cascade, its items.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// PurgeExpired deletes sessions whose last update is older than before.
func (s *SQLiteStore) PurgeExpired(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE updated_at < ?", before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return int(n), nil
}

func load(ctx context.Context, q querier, id string) (*models.Session, error) {
	session := &models.Session{}
	var pending sql.NullString
	var messages string

	err := q.QueryRowContext(ctx,
		`SELECT id, currency, subtotal, tax, tip, total, receipt_currency, image_ref, pending, messages, created_at, updated_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(
		&session.ID, &session.Currency,
		&session.Receipt.Subtotal, &session.Receipt.Tax, &session.Receipt.Tip, &session.Receipt.Total,
		&session.Receipt.Currency, &session.Receipt.ImageRef,
		&pending, &messages, &session.CreatedAt, &session.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if pending.Valid && pending.String != "" {
		var data models.ReceiptData
		if err := json.Unmarshal([]byte(pending.String), &data); err != nil {
			return nil, fmt.Errorf("failed to decode pending receipt: %w", err)
		}
		session.Pending = &data
	}
	if err := json.Unmarshal([]byte(messages), &session.Messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	items, err := loadItems(ctx, q, id)
	if err != nil {
		return nil, err
	}
	session.Receipt.Items = items
	return session, nil
}

// loadItems reads items and then assignments, never holding two result sets
// open on the single connection.
func loadItems(ctx context.Context, q querier, sessionID string) ([]models.ReceiptItem, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, name, price, quantity, scan_id FROM items WHERE session_id = ? ORDER BY position",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}

	var items []models.ReceiptItem
	index := make(map[string]int)
	for rows.Next() {
		item := models.ReceiptItem{AssignedTo: []string{}}
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.Quantity, &item.ScanID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		index[item.ID] = len(items)
		items = append(items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	if len(items) == 0 {
		return items, nil
	}

	assignRows, err := q.QueryContext(ctx,
		"SELECT item_id, participant FROM item_assignments WHERE session_id = ? ORDER BY item_id, position",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get item assignments: %w", err)
	}
	defer assignRows.Close()

	for assignRows.Next() {
		var itemID, participant string
		if err := assignRows.Scan(&itemID, &participant); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		if i, ok := index[itemID]; ok {
			items[i].AssignedTo = append(items[i].AssignedTo, participant)
		}
	}
	if err := assignRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}
	return items, nil
}

func insertItems(ctx context.Context, tx *sql.Tx, sessionID string, items []models.ReceiptItem) error {
	for pos, item := range items {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO items (session_id, id, position, name, price, quantity, scan_id) VALUES (?, ?, ?, ?, ?, ?, ?)",
			sessionID, item.ID, pos, item.Name, item.Price, item.Quantity, item.ScanID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item %s: %w", item.ID, err)
		}

		for apos, participant := range item.AssignedTo {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO item_assignments (session_id, item_id, position, participant) VALUES (?, ?, ?, ?)",
				sessionID, item.ID, apos, participant,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}
	return nil
}

func encodeJSONColumns(session *models.Session) (sql.NullString, string, error) {
	var pending sql.NullString
	if session.Pending != nil {
		data, err := json.Marshal(session.Pending)
		if err != nil {
			return pending, "", fmt.Errorf("failed to encode pending receipt: %w", err)
		}
		pending = sql.NullString{String: string(data), Valid: true}
	}

	messages := "[]"
	if session.Messages != nil {
		data, err := json.Marshal(session.Messages)
		if err != nil {
			return pending, "", fmt.Errorf("failed to encode messages: %w", err)
		}
		messages = string(data)
	}
	return pending, messages, nil
}

// DescribePath returns a log-friendly description of a database path.
func DescribePath(dbPath string) string {
	if dbPath == "" || strings.EqualFold(dbPath, MemoryPath) {
		return "in-memory"
	}
	return dbPath
}
