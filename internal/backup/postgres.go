package backup

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/postgres"
)

const createTable = `
CREATE TABLE IF NOT EXISTS library_backup (
	position  INTEGER PRIMARY KEY,
	title     TEXT    NOT NULL,
	authors   TEXT[]  NOT NULL,
	keywords  TEXT[]  NOT NULL,
	extension TEXT    NOT NULL,
	hash      BYTEA   NOT NULL UNIQUE
)`

// Postgres keeps a single backup in the library_backup table. Saving
// replaces the previous backup atomically.
type Postgres struct {
	client *postgres.Client
}

func NewPostgres(client *postgres.Client) *Postgres {
	return &Postgres{client: client}
}

func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.client.DB.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("%w: creating backup table: %v", apperrors.ErrIO, err)
	}
	return nil
}

func (p *Postgres) Save(ctx context.Context, docs []document.Document) error {
	if err := p.Migrate(ctx); err != nil {
		return err
	}
	err := p.client.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM library_backup`); err != nil {
			return fmt.Errorf("clearing previous backup: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO library_backup (position, title, authors, keywords, extension, hash)
			 VALUES ($1, $2, $3, $4, $5, $6)`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()
		for i, d := range docs {
			if _, err := stmt.ExecContext(ctx, i,
				d.Title, pq.Array(nonNil(d.Authors)), pq.Array(nonNil(d.Keywords)), d.Extension, d.Hash[:],
			); err != nil {
				return fmt.Errorf("saving document %q: %w", d.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrIO, err)
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context) ([]document.Document, error) {
	if err := p.Migrate(ctx); err != nil {
		return nil, err
	}
	rows, err := p.client.DB.QueryContext(ctx,
		`SELECT title, authors, keywords, extension, hash FROM library_backup ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying backup: %v", apperrors.ErrIO, err)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		var (
			d    document.Document
			hash []byte
		)
		if err := rows.Scan(&d.Title, pq.Array(&d.Authors), pq.Array(&d.Keywords), &d.Extension, &hash); err != nil {
			return nil, fmt.Errorf("%w: scanning backup row: %v", apperrors.ErrIO, err)
		}
		if d.Hash, err = document.HashFromBytes(hash); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading backup rows: %v", apperrors.ErrIO, err)
	}
	return docs, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
