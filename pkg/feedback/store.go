// Package feedback persists user verdicts on generated answers in SQLite,
// keeping a record that closes the quality loop for each tenant's knowledge
// base.
package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"atlas/pkg/models"

	_ "modernc.org/sqlite"
)

// Store manages feedback records in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Submission contains the client-provided fields of one feedback record.
type Submission struct {
	Label   string
	Query   string
	Answer  string
	Comment string
}

// NewStore creates a new feedback store with the given database path.
func NewStore(dbPath string) (*Store, error) {
	database, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrDatabaseError, err)
	}

	ctx := context.Background()

	// Enable foreign keys
	if _, err := database.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("%w: failed to enable foreign keys: %w", ErrDatabaseError, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := database.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("%w: failed to enable WAL mode: %w", ErrDatabaseError, err)
	}

	store := &Store{db: database}
	if err := store.Initialize(); err != nil {
		_ = database.Close()
		return nil, err
	}

	return store, nil
}

// Initialize creates the database schema.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(context.Background(), Schema)
	if err != nil {
		return fmt.Errorf("%w: failed to initialize schema: %w", ErrDatabaseError, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Submit validates and stores one feedback record, returning it with its
// assigned id and timestamp.
func (s *Store) Submit(ctx context.Context, tenantID string, sub Submission) (*models.Feedback, error) {
	label := strings.ToLower(strings.TrimSpace(sub.Label))
	if label != LabelUp && label != LabelDown {
		return nil, ErrInvalidLabel
	}
	if strings.TrimSpace(sub.Query) == "" {
		return nil, ErrEmptyQuery
	}

	record := &models.Feedback{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Label:     label,
		Query:     sub.Query,
		Answer:    sub.Answer,
		Comment:   sub.Comment,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (id, tenant_id, label, query, answer, comment, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.TenantID, record.Label, record.Query, record.Answer, record.Comment, record.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	return record, nil
}

// List returns the tenant's feedback records, newest first, up to limit.
// A non-positive limit uses the default of 100.
func (s *Store) List(ctx context.Context, tenantID string, limit int) ([]models.Feedback, error) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, label, query, answer, COALESCE(comment, ''), created_at
		 FROM feedback WHERE tenant_id = ? ORDER BY created_at DESC, id LIMIT ?`,
		tenantID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	defer rows.Close()

	records := make([]models.Feedback, 0)
	for rows.Next() {
		var record models.Feedback
		if err := rows.Scan(&record.ID, &record.TenantID, &record.Label, &record.Query, &record.Answer, &record.Comment, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	return records, nil
}

// Counts returns the number of up and down votes for the tenant.
func (s *Store) Counts(ctx context.Context, tenantID string) (up, down int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	err = s.db.QueryRowContext(ctx,
		`SELECT
		   COUNT(CASE WHEN label = 'up' THEN 1 END),
		   COUNT(CASE WHEN label = 'down' THEN 1 END)
		 FROM feedback WHERE tenant_id = ?`,
		tenantID,
	).Scan(&up, &down)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	return up, down, nil
}
