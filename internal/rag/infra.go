package rag

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ragRepo struct {
	db *sql.DB
}

func NewRagRepo(db *sql.DB) Repo {
	return &ragRepo{db: db}
}

func (r *ragRepo) CreateDocument(ctx context.Context, doc Document, chunks []string) (Document, error) {
	meta := []byte("{}")
	if len(doc.Metadata) > 0 {
		b, err := json.Marshal(doc.Metadata)
		if err != nil {
			return Document{}, err
		}
		meta = b
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Document{}, err
	}
	defer func() { _ = tx.Rollback() }()

	doc.ID = uuid.NewString()
	doc.CreatedAt = time.Now()
	doc.Chunks = len(chunks)

	// string, not []byte: lib/pq would ship bytes as bytea, not jsonb
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, title, metadata, created_at)
		VALUES ($1, $2, $3, $4)
	`, doc.ID, doc.Title, string(meta), doc.CreatedAt); err != nil {
		return Document{}, fmt.Errorf("insert document: %w", err)
	}

	for seq, content := range chunks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO document_chunks (id, document_id, seq, content)
			VALUES ($1, $2, $3, $4)
		`, uuid.NewString(), doc.ID, seq, content); err != nil {
			return Document{}, fmt.Errorf("insert chunk %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (r *ragRepo) SearchChunks(ctx context.Context, query string, limit int) ([]Chunk, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, d.title, c.seq, c.content,
		       ts_rank(to_tsvector('english', c.content), plainto_tsquery('english', $1)) AS rank
		FROM document_chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE to_tsvector('english', c.content) @@ plainto_tsquery('english', $1)
		ORDER BY rank DESC, c.seq ASC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Title, &c.Seq, &c.Content, &c.Rank); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ragRepo) ListDocuments(ctx context.Context, limit int) ([]Document, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.id, d.title, d.metadata, d.created_at,
		       (SELECT count(*) FROM document_chunks c WHERE c.document_id = d.id) AS chunks
		FROM documents d
		ORDER BY d.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var (
			d    Document
			meta []byte
		)
		if err := rows.Scan(&d.ID, &d.Title, &meta, &d.CreatedAt, &d.Chunks); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &d.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ragRepo) DeleteDocument(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
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
