package handler

import (
	"context"

	"workshopportal/internal/entity"
	"workshopportal/internal/repository"
)

// SessionAdmin is the part of the session registry the staff screens use.
type SessionAdmin interface {
	RevokeUsers(ctx context.Context, usernames []string) (int64, error)
	CountActive(ctx context.Context) (map[entity.Role]int, error)
	ListActive(ctx context.Context, limit int) ([]entity.SessionRecord, error)
}

// AttemptLog records and summarises login form submissions.
type AttemptLog interface {
	Save(ctx context.Context, attempt entity.LoginAttempt) error
	DailyActivity(ctx context.Context, days int) ([]repository.DayActivity, error)
}
