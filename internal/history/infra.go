package history

import (
	"context"
	"database/sql"
	"time"
)

type historyRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) Repo {
	return &historyRepo{db: db}
}

func (r *historyRepo) Create(ctx context.Context, m Message) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO messages (session_id, user_id, role, agent, content, summary, audio_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, m.SessionID, m.UserID, m.Role, nullable(m.Agent), m.Content, nullable(m.Summary), nullable(m.AudioURL), time.Now()).Scan(&id)
	return id, err
}

func (r *historyRepo) BySession(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	// newest first under the limit, flipped to ascending below
	query := `
		SELECT id, session_id, user_id, role, agent, content, summary, audio_url, created_at
		FROM messages
		WHERE session_id = $1
		ORDER BY id DESC
	`
	args := []any{sessionID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var (
			m                        Message
			agent, summary, audioURL sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.UserID, &m.Role, &agent, &m.Content, &summary, &audioURL, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Agent = agent.String
		m.Summary = summary.String
		m.AudioURL = audioURL.String
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// flip to chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *historyRepo) SetAudioURL(ctx context.Context, id int64, url string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE messages SET audio_url = $1 WHERE id = $2
	`, url, id)
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

func (r *historyRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = $1`, sessionID)
	return err
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
