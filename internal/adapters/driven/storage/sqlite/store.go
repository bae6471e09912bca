package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/plagscan/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
)

// Store is a SQLite database exposing the document and scheduler stores.
type Store struct {
	db   *sql.DB
	path string

	// writeMu serialises read-modify-write transactions.
	writeMu sync.Mutex
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.plagscan/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".plagscan", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "plagscan.db")

	// WAL lets workers read while one of them writes; immediate transactions
	// take the write lock up front so busy_timeout applies to updates.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := migrate(context.Background(), db, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, name, file_path, text_path, embedding, in_corpus, status,
	originality, verdict, last_error, started_at, completed_at, created_at, updated_at`

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}
	if doc.Status == "" {
		doc.Status = domain.StatusQueued
	}

	s.store.writeMu.Lock()
	defer s.store.writeMu.Unlock()
	return upsertDocument(ctx, s.store.db, doc)
}

func upsertDocument(ctx context.Context, db execer, doc *domain.Document) error {
	var verdictJSON any
	if doc.Verdict != nil {
		data, err := json.Marshal(doc.Verdict)
		if err != nil {
			return fmt.Errorf("marshalling verdict: %w", err)
		}
		verdictJSON = string(data)
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			file_path = excluded.file_path,
			text_path = excluded.text_path,
			embedding = excluded.embedding,
			in_corpus = excluded.in_corpus,
			status = excluded.status,
			originality = excluded.originality,
			verdict = excluded.verdict,
			last_error = excluded.last_error,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Name, doc.FilePath, nullString(doc.TextPath), float32SliceToBytes(doc.Embedding),
		boolToInt(doc.InCorpus), string(doc.Status), nullFloat(doc.Originality), verdictJSON,
		nullString(doc.LastError), timePtrToMillis(doc.StartedAt), timePtrToMillis(doc.CompletedAt),
		doc.CreatedAt.UnixMilli(), doc.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	return scanDocument(row)
}

// UpdateDocument applies fn inside a transaction.
func (s *documentStore) UpdateDocument(
	ctx context.Context,
	id string,
	fn func(doc *domain.Document) error,
) (*domain.Document, error) {
	s.store.writeMu.Lock()
	defer s.store.writeMu.Unlock()

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	row := tx.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, err
	}

	if err := fn(doc); err != nil {
		return nil, err
	}
	doc.ID = id
	doc.UpdatedAt = time.Now().UTC()

	if err := upsertDocument(ctx, tx, doc); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing update: %w", err)
	}
	return doc, nil
}

// ListCorpusMembers returns corpus members other than excludeID.
func (s *documentStore) ListCorpusMembers(ctx context.Context, excludeID string, limit int) ([]domain.Document, error) {
	query := "SELECT " + documentColumns + ` FROM documents
		WHERE in_corpus = 1 AND id != ?
		ORDER BY created_at, id`
	args := []any{excludeID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.query(ctx, query, args...)
}

// ListDocuments returns documents matching the filter.
func (s *documentStore) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	var where []string
	var args []any
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.CorpusOnly {
		where = append(where, "in_corpus = 1")
	}
	if !filter.UpdatedBefore.IsZero() {
		where = append(where, "updated_at < ?")
		args = append(args, filter.UpdatedBefore.UnixMilli())
	}

	query := "SELECT " + documentColumns + " FROM documents"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	return s.query(ctx, query, args...)
}

// DeleteDocument removes a document.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	s.store.writeMu.Lock()
	defer s.store.writeMu.Unlock()
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

func (s *documentStore) query(ctx context.Context, query string, args ...any) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	return collectRows(rows, scanDocument)
}

// ==================== Helper Functions ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanDocument scans one document row.
func scanDocument(row scanner) (*domain.Document, error) {
	var doc domain.Document
	var textPath, verdictJSON, lastError sql.NullString
	var embedding []byte
	var inCorpus int
	var status string
	var originality sql.NullFloat64
	var startedAt, completedAt sql.NullInt64
	var createdAt, updatedAt int64

	if err := row.Scan(&doc.ID, &doc.Name, &doc.FilePath, &textPath, &embedding, &inCorpus, &status,
		&originality, &verdictJSON, &lastError, &startedAt, &completedAt, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.TextPath = textPath.String
	doc.Embedding = bytesToFloat32Slice(embedding)
	doc.InCorpus = inCorpus == 1
	doc.Status = domain.ProcessingStatus(status)
	if originality.Valid {
		v := originality.Float64
		doc.Originality = &v
	}
	if verdictJSON.Valid && verdictJSON.String != "" {
		var v domain.Verdict
		if err := json.Unmarshal([]byte(verdictJSON.String), &v); err != nil {
			return nil, fmt.Errorf("unmarshalling verdict: %w", err)
		}
		doc.Verdict = &v
	}
	doc.LastError = lastError.String
	doc.StartedAt = millisToTimePtr(startedAt)
	doc.CompletedAt = millisToTimePtr(completedAt)
	doc.CreatedAt = time.UnixMilli(createdAt).UTC()
	doc.UpdatedAt = time.UnixMilli(updatedAt).UTC()

	return &doc, nil
}

// float32SliceToBytes converts []float32 to a little-endian byte slice.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func timePtrToMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func millisToTimePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}

// timeToMillis returns nil for the zero time.
func timeToMillis(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UnixMilli()
}

func millisToTime(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return time.UnixMilli(v.Int64).UTC()
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// boolToInt converts a bool to 1 (true) or 0 (false).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
