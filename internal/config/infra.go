package config

import (
	"context"
	"database/sql"
)

type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Store {
	return &repo{db: db}
}

func (r *repo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `
		SELECT value FROM configuration WHERE key = $1
	`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *repo) Set(ctx context.Context, key, value, description string) error {
	// An empty description keeps whatever the row already has.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO configuration (key, value, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			description = CASE WHEN EXCLUDED.description = '' THEN configuration.description ELSE EXCLUDED.description END
	`, key, value, description)
	return err
}

func (r *repo) All(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT key, value, description FROM configuration ORDER BY key ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value, &e.Description); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
