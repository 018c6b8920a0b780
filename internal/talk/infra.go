package talk

import (
	"context"
	"database/sql"
	"time"
)

type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &repo{db: db}
}

func (r *repo) Find(ctx context.Context, groupID, userID string) (*Mapping, error) {
	m := Mapping{GroupID: groupID, UserID: userID}
	err := r.db.QueryRowContext(ctx, `
		SELECT talk_id, created_at, last_used
		FROM mappings
		WHERE group_id = $1 AND user_id = $2
	`, groupID, userID).Scan(&m.TalkID, &m.CreatedAt, &m.LastUsed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repo) Insert(ctx context.Context, m *Mapping) (bool, error) {
	// The composite primary key plus DO NOTHING makes concurrent first
	// contacts converge on a single row.
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO mappings (group_id, user_id, talk_id, created_at, last_used)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`,
		m.GroupID,
		m.UserID,
		m.TalkID,
		m.CreatedAt,
		m.LastUsed,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repo) Touch(ctx context.Context, groupID, userID string, lastUsed time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE mappings SET last_used = $3
		WHERE group_id = $1 AND user_id = $2
	`, groupID, userID, lastUsed)
	return err
}

func (r *repo) ListByGroup(ctx context.Context, groupID string) ([]Mapping, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT group_id, user_id, talk_id, created_at, last_used
		FROM mappings
		WHERE group_id = $1
		ORDER BY created_at ASC
	`, groupID)
	if err != nil {
		return nil, err
	}
	return scanMappings(rows)
}

func (r *repo) ListByUser(ctx context.Context, userID string) ([]Mapping, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT group_id, user_id, talk_id, created_at, last_used
		FROM mappings
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	return scanMappings(rows)
}

func (r *repo) Delete(ctx context.Context, groupID, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM mappings WHERE group_id = $1 AND user_id = $2
	`, groupID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanMappings(rows *sql.Rows) ([]Mapping, error) {
	defer rows.Close()

	var out []Mapping
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.TalkID, &m.CreatedAt, &m.LastUsed); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
