package logging

import (
	"context"
	"database/sql"
)

type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &repo{db: db}
}

func (r *repo) AppendActivity(ctx context.Context, e ActivityEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO logs (timestamp, group_id, user_id, message, response, status, processing_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		e.Timestamp,
		e.GroupID,
		e.UserID,
		e.Message,
		e.Response,
		e.Status,
		e.ProcessingTime,
	)
	return err
}

func (r *repo) AppendError(ctx context.Context, e ErrorEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO error_logs (timestamp, error_type, error_message, context_data, stack_trace)
		VALUES ($1, $2, $3, $4, $5)
	`,
		e.Timestamp,
		string(e.Type),
		e.Message,
		e.Context,
		e.StackTrace,
	)
	return err
}
