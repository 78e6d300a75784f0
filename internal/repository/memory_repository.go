package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/oja-market/internal/port"
)

type memoryRepository struct {
	mu   sync.RWMutex
	seq  int
	docs map[string]map[string]memoryDoc
}

type memoryDoc struct {
	doc port.Document
	seq int
}

// NewMemory returns an in-process document store with the same semantics
// as the Postgres one: values are normalized through JSON, filters compare
// like jsonb operators.
func NewMemory() port.TxDocumentStore {
	return &memoryRepository{docs: make(map[string]map[string]memoryDoc)}
}

func (r *memoryRepository) Get(_ context.Context, collection, id string) (port.Document, error) {
	if err := validateRef(collection, id); err != nil {
		return port.Document{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.docs[collection][id]
	if !ok {
		return port.Document{}, port.ErrNotFound
	}

	return copyDoc(d.doc)
}

func (r *memoryRepository) Add(_ context.Context, collection string, data map[string]any) (string, error) {
	if collection == "" {
		return "", fmt.Errorf("collection is empty")
	}

	normalized, err := normalize(data)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	id := uuid.NewString()

	if r.docs[collection] == nil {
		r.docs[collection] = make(map[string]memoryDoc)
	}

	r.seq++
	r.docs[collection][id] = memoryDoc{
		doc: port.Document{ID: id, Data: normalized, CreatedAt: now, UpdatedAt: now},
		seq: r.seq,
	}

	return id, nil
}

func (r *memoryRepository) Update(_ context.Context, collection, id string, data map[string]any) error {
	if err := validateRef(collection, id); err != nil {
		return err
	}

	normalized, err := normalize(data)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.docs[collection][id]
	if !ok {
		return port.ErrNotFound
	}

	merged := make(map[string]any, len(d.doc.Data)+len(normalized))
	for k, v := range d.doc.Data {
		merged[k] = v
	}
	for k, v := range normalized {
		merged[k] = v
	}

	d.doc.Data = merged
	d.doc.UpdatedAt = time.Now().UTC()
	r.docs[collection][id] = d

	return nil
}

func (r *memoryRepository) Query(_ context.Context, collection string, filters ...port.Filter) ([]port.Document, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection is empty")
	}

	normalized := make([]port.Filter, 0, len(filters))
	for _, f := range filters {
		if err := validateFilter(f); err != nil {
			return nil, fmt.Errorf("buildQuery: %w", err)
		}

		value, err := normalizeValue(f.Value)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, port.Filter{Field: f.Field, Op: f.Op, Value: value})
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []memoryDoc
	for _, d := range r.docs[collection] {
		if matchesAll(d.doc.Data, normalized) {
			matched = append(matched, d)
		}
	}

	slices.SortFunc(matched, func(a, b memoryDoc) int {
		return a.seq - b.seq
	})

	docs := make([]port.Document, 0, len(matched))
	for _, d := range matched {
		doc, err := copyDoc(d.doc)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// RunInTx applies fn to a scratch copy and publishes it only when fn
// succeeds. Transactions are serialized with every other operation.
func (r *memoryRepository) RunInTx(_ context.Context, fn func(store port.DocumentStore) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	scratch := &memoryRepository{seq: r.seq, docs: make(map[string]map[string]memoryDoc, len(r.docs))}
	for collection, docs := range r.docs {
		copied := make(map[string]memoryDoc, len(docs))
		for id, d := range docs {
			copied[id] = d
		}
		scratch.docs[collection] = copied
	}

	if err := fn(scratch); err != nil {
		return err
	}

	r.docs = scratch.docs
	r.seq = scratch.seq

	return nil
}

func matchesAll(data map[string]any, filters []port.Filter) bool {
	for _, f := range filters {
		if !matches(data, f) {
			return false
		}
	}
	return true
}

func matches(data map[string]any, f port.Filter) bool {
	actual, ok := data[f.Field]
	if !ok {
		// a missing field is SQL NULL: only IS DISTINCT FROM holds
		return f.Op == port.OpNe
	}

	if f.Op == port.OpEq {
		return reflect.DeepEqual(actual, f.Value)
	}
	if f.Op == port.OpNe {
		return !reflect.DeepEqual(actual, f.Value)
	}

	c, ok := compareJSON(actual, f.Value)
	if !ok {
		return false
	}

	switch f.Op {
	case port.OpLt:
		return c < 0
	case port.OpLte:
		return c <= 0
	case port.OpGt:
		return c > 0
	case port.OpGte:
		return c >= 0
	}
	return false
}

// compareJSON orders two normalized values the way jsonb does for scalars:
// null < string < number < boolean, then by value.
func compareJSON(a, b any) (int, bool) {
	ra, rb := jsonRank(a), jsonRank(b)
	if ra < 0 || rb < 0 {
		return 0, false
	}
	if ra != rb {
		return ra - rb, true
	}

	switch av := a.(type) {
	case nil:
		return 0, true
	case string:
		return strings.Compare(av, b.(string)), true
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

func jsonRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case string:
		return 1
	case float64:
		return 2
	case bool:
		return 3
	}
	return -1
}

func normalize(data map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}
	if out == nil {
		out = map[string]any{}
	}

	return out, nil
}

func normalizeValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return out, nil
}

func copyDoc(doc port.Document) (port.Document, error) {
	data, err := normalize(doc.Data)
	if err != nil {
		return port.Document{}, err
	}
	doc.Data = data
	return doc, nil
}
