package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campusnotify/noticecrawl/internal/domain"
)

// notificationColumns lists columns for SELECT queries on notifications.
const notificationColumns = `id, user_id, title, summary, source_name, original_url,
	category, relevance_score, is_sent, created_at`

// insertColumnCount is the number of bound parameters per inserted row.
const insertColumnCount = 9

// NotificationRepositoryInterface defines the store operations the pipeline
// and dispatcher depend on.
type NotificationRepositoryInterface interface {
	ListKnownURLs(ctx context.Context, userID int64) (map[string]struct{}, error)
	InsertBatch(ctx context.Context, records []domain.NotificationRecord) (int, error)
	ListPending(ctx context.Context, userID int64) ([]domain.NotificationRecord, error)
	MarkSent(ctx context.Context, ids []string) error
}

// NotificationRepository handles database operations for notification records.
type NotificationRepository struct {
	db *sqlx.DB
}

var _ NotificationRepositoryInterface = (*NotificationRepository)(nil)

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// ListKnownURLs returns every original_url already stored for the user, as a
// set for client-side dedup filtering.
func (r *NotificationRepository) ListKnownURLs(ctx context.Context, userID int64) (map[string]struct{}, error) {
	query := `SELECT original_url FROM notifications WHERE user_id = $1`

	var urls []string
	if err := r.db.SelectContext(ctx, &urls, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list known URLs: %w", err)
	}

	known := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		known[u] = struct{}{}
	}
	return known, nil
}

// InsertBatch writes all records in a single multi-row insert. The unique
// constraint on (user_id, original_url) backs the client-side filter, so a
// concurrent duplicate degrades to a skipped row instead of an error.
// Records without an ID get one assigned. Returns the number of rows the
// statement actually inserted.
func (r *NotificationRepository) InsertBatch(ctx context.Context, records []domain.NotificationRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	placeholders := make([]string, 0, len(records))
	args := make([]any, 0, len(records)*insertColumnCount)
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.New().String()
		}
		if records[i].CreatedAt.IsZero() {
			records[i].CreatedAt = time.Now()
		}

		base := i * insertColumnCount
		placeholders = append(placeholders, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
		))
		rec := records[i]
		args = append(args,
			rec.ID, rec.UserID, rec.Title, rec.Summary, rec.SourceName,
			rec.OriginalURL, rec.Category, rec.RelevanceScore, rec.CreatedAt,
		)
	}

	query := `
		INSERT INTO notifications
			(id, user_id, title, summary, source_name, original_url, category, relevance_score, created_at)
		VALUES ` + strings.Join(placeholders, ", ") + `
		ON CONFLICT (user_id, original_url) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert notification batch: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted row count: %w", err)
	}
	return int(inserted), nil
}

// ListPending returns the user's unsent records, newest first.
func (r *NotificationRepository) ListPending(ctx context.Context, userID int64) ([]domain.NotificationRecord, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1 AND is_sent = FALSE
		ORDER BY created_at DESC
	`

	var records []domain.NotificationRecord
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list pending notifications: %w", err)
	}
	return records, nil
}

// MarkSent flips is_sent for exactly the given record IDs.
func (r *NotificationRepository) MarkSent(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := `UPDATE notifications SET is_sent = TRUE WHERE id = ANY($1)`
	if _, err := r.db.ExecContext(ctx, query, pq.StringArray(ids)); err != nil {
		return fmt.Errorf("failed to mark notifications sent: %w", err)
	}
	return nil
}
