package repository_test

import (
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/oja-market/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runDocumentContract exercises behaviour every port.TxDocumentStore must share.
func runDocumentContract(t *testing.T, store port.TxDocumentStore) {
	t.Run("add then get: ok", func(t *testing.T) {
		ctx := t.Context()
		collection := randomCollection()
		data := map[string]any{"name": gofakeit.ProductName(), "price": 1500, "tags": []string{"a", "b"}}

		id, err := store.Add(ctx, collection, data)
		require.NoError(t, err)
		require.NotEmpty(t, id)

		doc, err := store.Get(ctx, collection, id)
		require.NoError(t, err)

		assert.Equal(t, id, doc.ID)
		assert.Equal(t, data["name"], doc.Data["name"])
		assert.Equal(t, float64(1500), doc.Data["price"])
		assert.Equal(t, []any{"a", "b"}, doc.Data["tags"])
		assert.False(t, doc.CreatedAt.IsZero())
	})

	t.Run("get missing: not found", func(t *testing.T) {
		_, err := store.Get(t.Context(), randomCollection(), gofakeit.UUID())
		assert.ErrorIs(t, err, port.ErrNotFound)
	})

	t.Run("validation errors", func(t *testing.T) {
		ctx := t.Context()

		_, err := store.Add(ctx, "", map[string]any{})
		assert.EqualError(t, err, "collection is empty")

		_, err = store.Get(ctx, "products", "")
		assert.EqualError(t, err, "id is empty")

		err = store.Update(ctx, "", "x", map[string]any{})
		assert.EqualError(t, err, "collection is empty")

		_, err = store.Query(ctx, "products", port.Where("", port.OpEq, 1))
		assert.ErrorContains(t, err, "filter field is empty")

		_, err = store.Query(ctx, "products", port.Where("price", "~", 1))
		assert.ErrorContains(t, err, "filter op[~] is not supported")
	})

	t.Run("update merges top-level keys", func(t *testing.T) {
		ctx := t.Context()
		collection := randomCollection()

		id, err := store.Add(ctx, collection, map[string]any{"stock": 5, "name": "Adire Scarf"})
		require.NoError(t, err)

		require.NoError(t, store.Update(ctx, collection, id, map[string]any{"stock": 3}))

		doc, err := store.Get(ctx, collection, id)
		require.NoError(t, err)
		assert.Equal(t, float64(3), doc.Data["stock"])
		assert.Equal(t, "Adire Scarf", doc.Data["name"])
	})

	t.Run("update with nil data keeps the document", func(t *testing.T) {
		ctx := t.Context()
		collection := randomCollection()

		id, err := store.Add(ctx, collection, map[string]any{"stock": 5, "name": "Adire Scarf"})
		require.NoError(t, err)

		require.NoError(t, store.Update(ctx, collection, id, nil))

		doc, err := store.Get(ctx, collection, id)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"stock": float64(5), "name": "Adire Scarf"}, doc.Data)
	})

	t.Run("update missing: not found", func(t *testing.T) {
		err := store.Update(t.Context(), randomCollection(), gofakeit.UUID(), map[string]any{"x": 1})
		assert.ErrorIs(t, err, port.ErrNotFound)
	})

	t.Run("query filters and order", func(t *testing.T) {
		ctx := t.Context()
		collection := randomCollection()

		seed := []map[string]any{
			{"name": "a", "status": "active", "price": 100},
			{"name": "b", "status": "draft", "price": 200},
			{"name": "c", "status": "active", "price": 300},
			{"name": "d", "price": 400},
		}
		for _, data := range seed {
			_, err := store.Add(ctx, collection, data)
			require.NoError(t, err)
		}

		tests := []struct {
			name    string
			filters []port.Filter
			want    []string
		}{
			{name: "no filters", want: []string{"a", "b", "c", "d"}},
			{name: "equality", filters: []port.Filter{port.Where("status", port.OpEq, "active")}, want: []string{"a", "c"}},
			{name: "not equal includes missing field", filters: []port.Filter{port.Where("status", port.OpNe, "active")}, want: []string{"b", "d"}},
			{name: "greater than", filters: []port.Filter{port.Where("price", port.OpGt, 200)}, want: []string{"c", "d"}},
			{name: "range", filters: []port.Filter{port.Where("price", port.OpGte, 200), port.Where("price", port.OpLte, 300)}, want: []string{"b", "c"}},
			{name: "less than", filters: []port.Filter{port.Where("price", port.OpLt, 200)}, want: []string{"a"}},
			{name: "combined", filters: []port.Filter{port.Where("status", port.OpEq, "active"), port.Where("price", port.OpGt, 150)}, want: []string{"c"}},
			{name: "no match", filters: []port.Filter{port.Where("status", port.OpEq, "archived")}, want: nil},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				docs, err := store.Query(ctx, collection, tt.filters...)
				require.NoError(t, err)

				var names []string
				for _, doc := range docs {
					names = append(names, doc.Data["name"].(string))
				}
				assert.Equal(t, tt.want, names)
			})
		}
	})

	t.Run("tx commits", func(t *testing.T) {
		ctx := t.Context()
		collection := randomCollection()

		var id string
		err := store.RunInTx(ctx, func(tx port.DocumentStore) error {
			var err error
			id, err = tx.Add(ctx, collection, map[string]any{"n": 1})
			if err != nil {
				return err
			}
			return tx.Update(ctx, collection, id, map[string]any{"n": 2})
		})
		require.NoError(t, err)

		doc, err := store.Get(ctx, collection, id)
		require.NoError(t, err)
		assert.Equal(t, float64(2), doc.Data["n"])
	})

	t.Run("tx rolls back on error", func(t *testing.T) {
		ctx := t.Context()
		collection := randomCollection()
		boom := errors.New("boom")

		id, err := store.Add(ctx, collection, map[string]any{"stock": 10})
		require.NoError(t, err)

		err = store.RunInTx(ctx, func(tx port.DocumentStore) error {
			if err := tx.Update(ctx, collection, id, map[string]any{"stock": 0}); err != nil {
				return err
			}
			if _, err := tx.Add(ctx, collection, map[string]any{"orphan": true}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		doc, err := store.Get(ctx, collection, id)
		require.NoError(t, err)
		assert.Equal(t, float64(10), doc.Data["stock"])

		docs, err := store.Query(ctx, collection)
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})
}

func randomCollection() string {
	return "c_" + gofakeit.LetterN(10)
}
