package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"workshopportal/internal/entity"
)

type AttemptRepository struct {
	db *sql.DB
}

func NewAttemptRepository(db *sql.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Save records one login attempt.
func (a *AttemptRepository) Save(ctx context.Context, attempt entity.LoginAttempt) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO login_attempts (username, success, remote_addr, created_at)
		VALUES ($1, $2, $3, $4)
	`, attempt.Username, attempt.Success, attempt.RemoteAddr, time.Now())
	if err != nil {
		return fmt.Errorf("save login attempt: %w", err)
	}
	return nil
}

// DayActivity is the login activity of one calendar day.
type DayActivity struct {
	Date      time.Time
	Attempts  int
	Succeeded int
}

func (d DayActivity) Failed() int {
	return d.Attempts - d.Succeeded
}

// DailyActivity returns per-day login counts for the last days days,
// newest first.
func (a *AttemptRepository) DailyActivity(ctx context.Context, days int) ([]DayActivity, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT
			DATE(created_at) AS day,
			COUNT(*) AS attempts,
			COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0) AS succeeded
		FROM login_attempts
		WHERE created_at >= CURRENT_DATE - make_interval(days => $1)
		GROUP BY DATE(created_at)
		ORDER BY day DESC
	`, days)
	if err != nil {
		return nil, fmt.Errorf("login activity: %w", err)
	}
	defer rows.Close()

	var out []DayActivity
	for rows.Next() {
		var d DayActivity
		if err := rows.Scan(&d.Date, &d.Attempts, &d.Succeeded); err != nil {
			return nil, fmt.Errorf("scan login activity: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
