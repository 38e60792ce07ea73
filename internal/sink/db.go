package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nathanj/recorder-agent/internal/records"
)

// DB wraps a PostgreSQL connection pool. It expects the acquisition_runs and
// documents tables to be provisioned; documents holds one row per entry
// number with the full record as JSONB.
type DB struct {
	pool *pgxpool.Pool
}

// Run status values for the acquisition_runs ledger.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// CreateRun creates a new acquisition run record and returns its ID
func (db *DB) CreateRun(ctx context.Context, startDate, endDate string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO acquisition_runs (start_date, end_date, status)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		startDate, endDate, RunStatusRunning,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks an acquisition run as finished
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, documents int) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE acquisition_runs
		 SET status = $1, documents = $2, completed_at = NOW()
		 WHERE id = $3`,
		status, documents, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// InsertDocument upserts one document record. Re-pushing an entry number the
// table already holds overwrites the stored record, which is what
// at-least-once delivery needs on resume.
func (db *DB) InsertDocument(ctx context.Context, runID uuid.UUID, doc *records.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", doc.EntryNumber, err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO documents (entry_number, run_id, recording_date, kind, pdf_url, record)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (entry_number)
		 DO UPDATE SET run_id = $2, recording_date = $3, kind = $4, pdf_url = $5, record = $6, updated_at = NOW()`,
		doc.EntryNumber, runID, doc.RecordingDate, doc.Kind, doc.PdfURL, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document %s: %w", doc.EntryNumber, err)
	}
	return nil
}

// GetDocument retrieves a stored record by entry number
func (db *DB) GetDocument(ctx context.Context, entryNumber string) (*records.Document, error) {
	var payload []byte
	err := db.pool.QueryRow(ctx,
		`SELECT record FROM documents WHERE entry_number = $1`,
		entryNumber,
	).Scan(&payload)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document %s: %w", entryNumber, err)
	}

	var doc records.Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", entryNumber, err)
	}
	return &doc, nil
}

// DocumentFilters holds optional filters for listing documents
type DocumentFilters struct {
	RecordingDate string
	Kind          string
	Limit         int
}

// ListDocuments retrieves stored records with optional filters
func (db *DB) ListDocuments(ctx context.Context, filters DocumentFilters) ([]records.Document, error) {
	if filters.Limit == 0 {
		filters.Limit = 100
	}

	query := `SELECT record FROM documents WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.RecordingDate != "" {
		query += fmt.Sprintf(" AND recording_date = $%d", argNum)
		args = append(args, filters.RecordingDate)
		argNum++
	}
	if filters.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", argNum)
		args = append(args, filters.Kind)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY entry_number ASC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []records.Document
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		var doc records.Document
		if err := json.Unmarshal(payload, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// DBSink adapts a database connection and run ID to the RecordSink interface.
type DBSink struct {
	db    *DB
	runID uuid.UUID
}

// NewDBSink binds pushed records to an acquisition run.
func NewDBSink(db *DB, runID uuid.UUID) *DBSink {
	return &DBSink{db: db, runID: runID}
}

// Push upserts the record.
func (s *DBSink) Push(ctx context.Context, doc *records.Document) error {
	return s.db.InsertDocument(ctx, s.runID, doc)
}

// Close is a no-op; the pool is owned by the caller.
func (s *DBSink) Close(_ context.Context) error {
	return nil
}
