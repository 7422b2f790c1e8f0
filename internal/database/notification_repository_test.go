package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/campusnotify/noticecrawl/internal/database"
	"github.com/campusnotify/noticecrawl/internal/domain"
)

func newMockRepo(t *testing.T) (*database.NotificationRepository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "postgres")
	return database.NewNotificationRepository(db), mock
}

func TestNotificationRepository_ListKnownURLs(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT original_url FROM notifications").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"original_url"}).
			AddRow("https://example.com/1").
			AddRow("https://example.com/2"))

	known, err := repo.ListKnownURLs(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListKnownURLs() error = %v", err)
	}
	if len(known) != 2 {
		t.Fatalf("got %d known URLs, want 2", len(known))
	}
	if _, ok := known["https://example.com/1"]; !ok {
		t.Error("known set missing https://example.com/1")
	}
}

func TestNotificationRepository_InsertBatch(t *testing.T) {
	repo, mock := newMockRepo(t)

	records := []domain.NotificationRecord{
		{
			UserID:         7,
			Title:          "AI 채용 공지",
			Summary:        "AI 직무 채용",
			SourceName:     "고려대학교 공지",
			OriginalURL:    "https://info.korea.ac.kr/view?id=1",
			Category:       "korea_university",
			RelevanceScore: 0.9,
		},
		{
			UserID:      7,
			Title:       "장학금 안내",
			OriginalURL: "https://info.korea.ac.kr/view?id=2",
		},
	}

	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(
			sqlmock.AnyArg(), int64(7), "AI 채용 공지", "AI 직무 채용", "고려대학교 공지",
			"https://info.korea.ac.kr/view?id=1", "korea_university", 0.9, sqlmock.AnyArg(),
			sqlmock.AnyArg(), int64(7), "장학금 안내", "", "",
			"https://info.korea.ac.kr/view?id=2", "", 0.0, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	inserted, err := repo.InsertBatch(context.Background(), records)
	if err != nil {
		t.Fatalf("InsertBatch() error = %v", err)
	}
	if inserted != 2 {
		t.Errorf("InsertBatch() = %d, want 2", inserted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestNotificationRepository_InsertBatchDuplicatesSkipped(t *testing.T) {
	repo, mock := newMockRepo(t)

	records := []domain.NotificationRecord{
		{UserID: 7, Title: "공지", OriginalURL: "https://example.com/1"},
	}

	// Replaying an already-stored URL: ON CONFLICT DO NOTHING absorbs the
	// row, so the statement succeeds and reports zero inserts.
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.InsertBatch(context.Background(), records)
	if err != nil {
		t.Fatalf("InsertBatch() error = %v", err)
	}
	if inserted != 0 {
		t.Errorf("InsertBatch() = %d, want 0 for replayed records", inserted)
	}
}

func TestNotificationRepository_InsertBatchEmpty(t *testing.T) {
	repo, _ := newMockRepo(t)

	inserted, err := repo.InsertBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("InsertBatch() error = %v", err)
	}
	if inserted != 0 {
		t.Errorf("InsertBatch() = %d, want 0", inserted)
	}
}

func TestNotificationRepository_ListPending(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM notifications").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "title", "summary", "source_name", "original_url",
			"category", "relevance_score", "is_sent", "created_at",
		}).
			AddRow("rec-2", 7, "최신 공지", "", "고려대학교 공지", "https://example.com/2", "", 0.8, false, now).
			AddRow("rec-1", 7, "이전 공지", "", "고려대학교 공지", "https://example.com/1", "", 0.7, false, now.Add(-time.Hour)))

	pending, err := repo.ListPending(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListPending() error = %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending records, want 2", len(pending))
	}
	if pending[0].ID != "rec-2" {
		t.Errorf("first record = %q, want newest first", pending[0].ID)
	}
}

func TestNotificationRepository_MarkSent(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE notifications SET is_sent = TRUE").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := repo.MarkSent(context.Background(), []string{"rec-1", "rec-2"}); err != nil {
		t.Fatalf("MarkSent() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestNotificationRepository_MarkSentEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)

	if err := repo.MarkSent(context.Background(), nil); err != nil {
		t.Fatalf("MarkSent() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no statement should run for an empty id list: %v", err)
	}
}
