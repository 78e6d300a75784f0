package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/oja-market/internal/port"
)

type documentRepository struct {
	q    querier
	pool *pgxpool.Pool
}

func NewDocuments(pool *pgxpool.Pool) port.TxDocumentStore {
	return &documentRepository{
		q:    pool,
		pool: pool,
	}
}

func NewDocumentsWithTx(tx pgx.Tx) port.TxDocumentStore {
	return &documentRepository{
		q:    tx,
		pool: nil, // use provided transaction instead
	}
}

func (r *documentRepository) Get(ctx context.Context, collection, id string) (port.Document, error) {
	if err := validateRef(collection, id); err != nil {
		return port.Document{}, err
	}

	row := r.q.QueryRow(ctx, `
		SELECT id, data, created_at, updated_at
		FROM documents
		WHERE collection = $1 AND id = $2`, collection, id)

	doc, err := scanDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return port.Document{}, port.ErrNotFound
	}
	if err != nil {
		return port.Document{}, fmt.Errorf("scanDocument: %w", err)
	}

	return doc, nil
}

func (r *documentRepository) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	if collection == "" {
		return "", fmt.Errorf("collection is empty")
	}
	if data == nil {
		data = map[string]any{}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("json.Marshal: %w", err)
	}

	id := uuid.NewString()

	_, err = r.q.Exec(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)`, collection, id, string(raw))
	if err != nil {
		return "", fmt.Errorf("q.Exec: %w", err)
	}

	return id, nil
}

func (r *documentRepository) Update(ctx context.Context, collection, id string, data map[string]any) error {
	if err := validateRef(collection, id); err != nil {
		return err
	}
	if data == nil {
		data = map[string]any{}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	tag, err := r.q.Exec(ctx, `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2`, collection, id, string(raw))
	if err != nil {
		return fmt.Errorf("q.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return port.ErrNotFound
	}

	return nil
}

func (r *documentRepository) Query(ctx context.Context, collection string, filters ...port.Filter) ([]port.Document, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection is empty")
	}

	sql, args, err := buildQuery(collection, filters)
	if err != nil {
		return nil, fmt.Errorf("buildQuery: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("q.Query: %w", err)
	}
	defer rows.Close()

	var docs []port.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanDocument: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return docs, nil
}

func (r *documentRepository) RunInTx(ctx context.Context, fn func(store port.DocumentStore) error) error {
	_, err := withTx(ctx, r.pool, r.q, func(q querier) (struct{}, error) {
		return struct{}{}, fn(&documentRepository{q: q})
	})
	return err
}

func buildQuery(collection string, filters []port.Filter) (string, []any, error) {
	sql := `SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1`
	args := []any{collection}

	for _, f := range filters {
		if err := validateFilter(f); err != nil {
			return "", nil, err
		}

		value, err := json.Marshal(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("json.Marshal: %w", err)
		}

		args = append(args, f.Field, string(value))
		sql += fmt.Sprintf(" AND data -> $%d::text %s $%d::jsonb", len(args)-1, sqlOps[f.Op], len(args))
	}

	sql += " ORDER BY created_at, id"

	return sql, args, nil
}

func scanDocument(row pgx.Row) (port.Document, error) {
	var (
		doc       port.Document
		raw       []byte
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&doc.ID, &raw, &createdAt, &updatedAt); err != nil {
		return port.Document{}, err
	}

	if err := json.Unmarshal(raw, &doc.Data); err != nil {
		return port.Document{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	doc.CreatedAt = createdAt
	doc.UpdatedAt = updatedAt

	return doc, nil
}

func validateRef(collection, id string) error {
	if collection == "" {
		return fmt.Errorf("collection is empty")
	}
	if id == "" {
		return fmt.Errorf("id is empty")
	}
	return nil
}

var sqlOps = map[port.Op]string{
	port.OpEq:  "=",
	port.OpNe:  "IS DISTINCT FROM",
	port.OpLt:  "<",
	port.OpLte: "<=",
	port.OpGt:  ">",
	port.OpGte: ">=",
}

func validateFilter(f port.Filter) error {
	if f.Field == "" {
		return fmt.Errorf("filter field is empty")
	}
	if _, ok := sqlOps[f.Op]; !ok {
		return fmt.Errorf("filter op[%s] is not supported", f.Op)
	}
	return nil
}
