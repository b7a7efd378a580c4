package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on PostgreSQL, one jsonb document per row.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the given database URL and ensures the
// documents table exists.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			doc        JSONB NOT NULL,
			PRIMARY KEY (collection, id)
		)`)
	if err != nil {
		return fmt.Errorf("ensure documents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) putDoc(ctx context.Context, collection, id string, doc []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)
		 ON CONFLICT (collection, id) DO UPDATE SET doc = EXCLUDED.doc`,
		collection, id, doc)
	return err
}

func (s *PostgresStore) getDoc(ctx context.Context, collection, id string) ([]byte, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM documents WHERE collection = $1 AND id = $2`,
		collection, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *PostgresStore) GetPosition(ctx context.Context, collection, symbol string) (*Position, error) {
	doc, err := s.getDoc(ctx, collection, symbol)
	if err != nil || doc == nil {
		return nil, err
	}
	var p Position
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) PutPosition(ctx context.Context, collection string, p *Position) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.putDoc(ctx, collection, p.Symbol, doc)
}

func (s *PostgresStore) Positions(ctx context.Context, collection string) ([]*Position, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM documents WHERE collection = $1 AND id <> $2 ORDER BY id`,
		collection, sequenceDocID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []*Position
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var p Position
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, err
		}
		positions = append(positions, &p)
	}
	return positions, rows.Err()
}

func (s *PostgresStore) PutChain(ctx context.Context, collection, ticker string, seq int, doc []byte) error {
	return s.putDoc(ctx, collection, ChainKey(ticker, seq), doc)
}

func (s *PostgresStore) GetChain(ctx context.Context, collection, ticker string, seq int) ([]byte, error) {
	return s.getDoc(ctx, collection, ChainKey(ticker, seq))
}

func (s *PostgresStore) Sequence(ctx context.Context, collection string) (int, bool, error) {
	doc, err := s.getDoc(ctx, collection, sequenceDocID)
	if err != nil {
		return 0, false, err
	}
	if doc == nil {
		return 0, false, nil
	}
	var n int
	if err := json.Unmarshal(doc, &n); err != nil {
		return 0, false, fmt.Errorf("bad sequence document in %s: %w", collection, err)
	}
	return n, true, nil
}

func (s *PostgresStore) SetSequence(ctx context.Context, collection string, n int) error {
	doc, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.putDoc(ctx, collection, sequenceDocID, doc)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
