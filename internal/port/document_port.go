package port

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("document not found")

const (
	CollectionUsers    = "users"
	CollectionProducts = "products"
	CollectionOrders   = "orders"
	CollectionReviews  = "reviews"
	CollectionVendors  = "vendors"
	CollectionMessages = "messages"
)

type Op string

const (
	OpEq  Op = "=="
	OpNe  Op = "!="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
)

type Filter struct {
	Field string
	Op    Op
	Value any
}

func Where(field string, op Op, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// Document is a schemaless record. Data holds JSON-compatible values.
type Document struct {
	ID        string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Add(ctx context.Context, collection string, data map[string]any) (string, error)
	// Update merges the top-level keys of data into the stored document.
	Update(ctx context.Context, collection, id string, data map[string]any) error
	// Query returns matching documents ordered by creation time.
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
}

// TxDocumentStore runs fn against a store whose writes commit together.
type TxDocumentStore interface {
	DocumentStore
	RunInTx(ctx context.Context, fn func(store DocumentStore) error) error
}
