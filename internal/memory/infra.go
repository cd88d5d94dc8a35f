package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type memoryRepo struct {
	db *sql.DB
}

func NewMemoryRepo(db *sql.DB) Repo {
	return &memoryRepo{db: db}
}

func (r *memoryRepo) Create(ctx context.Context, m Memory) (string, error) {
	id := uuid.NewString()

	meta := []byte("{}")
	if len(m.Metadata) > 0 {
		b, err := json.Marshal(m.Metadata)
		if err != nil {
			return "", err
		}
		meta = b
	}

	// string, not []byte: lib/pq would ship bytes as bytea, not jsonb
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO memories (id, user_id, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, id, m.UserID, m.Content, string(meta), time.Now()).Scan(&id)
	return id, err
}

func (r *memoryRepo) Search(ctx context.Context, userID, query string, limit int) ([]Memory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, content, metadata, created_at
		FROM memories
		WHERE user_id = $1
		  AND to_tsvector('english', content) @@ plainto_tsquery('english', $2)
		ORDER BY ts_rank(to_tsvector('english', content), plainto_tsquery('english', $2)) DESC,
		         created_at DESC
		LIMIT $3
	`, userID, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemories(rows)
}

func (r *memoryRepo) List(ctx context.Context, userID string, limit int) ([]Memory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, content, metadata, created_at
		FROM memories
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemories(rows)
}

func (r *memoryRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM memories WHERE user_id = $1 AND id = $2
	`, userID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanMemories(rows *sql.Rows) ([]Memory, error) {
	var out []Memory
	for rows.Next() {
		var (
			m    Memory
			meta []byte
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.Content, &meta, &m.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &m.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
