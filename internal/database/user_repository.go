package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campusnotify/noticecrawl/internal/domain"
)

// userColumns lists columns for SELECT queries on users.
const userColumns = `user_id, username, phone_number, school, major, interests, interval_days, alarm_time`

// UserRepositoryInterface defines the user lookups the schedulers depend on.
type UserRepositoryInterface interface {
	List(ctx context.Context) ([]domain.User, error)
	ListByAlarmTime(ctx context.Context, hhmm string) ([]domain.User, error)
}

// UserRepository handles database operations for configured users and their
// monitored target URLs.
type UserRepository struct {
	db *sqlx.DB
}

var _ UserRepositoryInterface = (*UserRepository)(nil)

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// List returns every configured user with their target URLs attached.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY user_id`

	var users []domain.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	if err := r.attachTargetURLs(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListByAlarmTime returns users whose preferred delivery time matches the
// given "HH:MM" time-of-day, with their target URLs attached.
func (r *UserRepository) ListByAlarmTime(ctx context.Context, hhmm string) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE alarm_time = $1 ORDER BY user_id`

	var users []domain.User
	if err := r.db.SelectContext(ctx, &users, query, hhmm); err != nil {
		return nil, fmt.Errorf("failed to list users by alarm time: %w", err)
	}

	if err := r.attachTargetURLs(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

// attachTargetURLs loads each user's monitored boards. One query per user is
// fine at this scale; users number in the tens, not thousands.
func (r *UserRepository) attachTargetURLs(ctx context.Context, users []domain.User) error {
	query := `SELECT id, user_id, target_url FROM target_urls WHERE user_id = $1 ORDER BY id`

	for i := range users {
		var targets []domain.TargetURL
		if err := r.db.SelectContext(ctx, &targets, query, users[i].ID); err != nil {
			return fmt.Errorf("failed to list target URLs for user %d: %w", users[i].ID, err)
		}
		users[i].TargetURLs = targets
	}
	return nil
}
