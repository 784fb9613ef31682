package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"workshopportal/internal/entity"
)

// SessionRepository is the server-side registry of issued portal sessions.
type SessionRepository struct {
	db *sql.DB
	// maxAge matches the cookie lifetime; zero means sessions only end
	// when revoked.
	maxAge time.Duration
}

func NewSessionRepository(db *sql.DB, maxAge time.Duration) *SessionRepository {
	return &SessionRepository{db: db, maxAge: maxAge}
}

// liveSession selects unrevoked rows younger than the cookie lifetime,
// given as whole seconds in $1.
const liveSession = `revoked_at IS NULL
		AND ($1::int = 0 OR created_at > now() - $1::int * interval '1 second')`

func (r *SessionRepository) maxAgeSeconds() int {
	return int(r.maxAge / time.Second)
}

// Create records a new session and returns its id.
func (r *SessionRepository) Create(ctx context.Context, username string, role entity.Role) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, username, role, created_at, last_activity)
		VALUES ($1, $2, $3, now(), now())
	`, id, username, string(role))
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// Active reports whether the session exists, is not revoked and has not
// outlived maxAge, bumping its last activity when it is live.
func (r *SessionRepository) Active(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	var got string
	err := r.db.QueryRowContext(ctx, `
		UPDATE sessions SET last_activity = now()
		WHERE id = $2 AND `+liveSession+`
		RETURNING id
	`, r.maxAgeSeconds(), id).Scan(&got)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return true, nil
}

func (r *SessionRepository) Revoke(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}

	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET revoked_at = now()
		WHERE id = $1 AND revoked_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeUsers ends every live session of the given users and returns how
// many were revoked.
func (r *SessionRepository) RevokeUsers(ctx context.Context, usernames []string) (int64, error) {
	if len(usernames) == 0 {
		return 0, nil
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET revoked_at = now()
		WHERE username = ANY($1) AND revoked_at IS NULL
	`, pq.Array(usernames))
	if err != nil {
		return 0, fmt.Errorf("revoke user sessions: %w", err)
	}
	return res.RowsAffected()
}

// CountActive returns the number of live sessions per role. Expired
// sessions are not counted even if nobody revoked them.
func (r *SessionRepository) CountActive(ctx context.Context) (map[entity.Role]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT role, COUNT(*)
		FROM sessions
		WHERE `+liveSession+`
		GROUP BY role
	`, r.maxAgeSeconds())
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	defer rows.Close()

	counts := make(map[entity.Role]int)
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("scan session count: %w", err)
		}
		counts[entity.Role(role)] = n
	}
	return counts, rows.Err()
}

// ListActive returns live sessions, most recently active first.
func (r *SessionRepository) ListActive(ctx context.Context, limit int) ([]entity.SessionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id::text, username, role, created_at, last_activity
		FROM sessions
		WHERE `+liveSession+`
		ORDER BY last_activity DESC
		LIMIT $2
	`, r.maxAgeSeconds(), limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []entity.SessionRecord
	for rows.Next() {
		var s entity.SessionRecord
		var role string
		if err := rows.Scan(&s.ID, &s.Username, &role, &s.CreatedAt, &s.LastActivity); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.Role = entity.Role(role)
		out = append(out, s)
	}
	return out, rows.Err()
}
