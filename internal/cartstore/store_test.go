package cartstore_test

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nikolayk812/oja-market/internal/cartstore"
	"github.com/nikolayk812/oja-market/internal/domain"
	"github.com/nikolayk812/oja-market/internal/storage"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadSaveRoundTrip(t *testing.T) {
	ctx := t.Context()

	for i := 0; i < 50; i++ {
		mem := storage.NewMemory()
		s1 := cartstore.New(mem, zerolog.Nop())
		for _, item := range randomItems() {
			require.NoError(t, s1.Add(ctx, item.ProductID, snapshotOf(item), item.Quantity))
		}

		s2 := cartstore.New(mem, zerolog.Nop())
		s2.Load(ctx)

		assertCart(t, s1.Cart(), s2.Cart())
	}
}

func TestStore_LoadMissingKey(t *testing.T) {
	s := cartstore.New(storage.NewMemory(), zerolog.Nop())
	s.Load(t.Context())

	assert.True(t, s.Cart().IsEmpty())
}

func TestStore_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "{{not json"},
		{name: "object instead of array", raw: `{"id":"p1"}`},
		{name: "zero quantity", raw: `[{"id":"p1","name":"x","price":10,"quantity":0}]`},
		{name: "missing id", raw: `[{"name":"x","price":10,"quantity":1}]`},
		{name: "negative price", raw: `[{"id":"p1","name":"x","price":-1,"quantity":1}]`},
		{name: "price is not a number", raw: `[{"id":"p1","name":"x","price":"abc","quantity":1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			mem := storage.NewMemory()

			var logs bytes.Buffer
			s := cartstore.New(mem, zerolog.New(&logs))
			require.NoError(t, s.Add(ctx, "stale", randomSnapshot(), 1))
			require.NoError(t, mem.SetItem(ctx, cartstore.DefaultKey, tt.raw))

			s.Load(ctx)

			assert.True(t, s.Cart().IsEmpty())
			assert.Contains(t, logs.String(), "persisted cart is corrupt")
		})
	}
}

func TestStore_LoadReadFailure(t *testing.T) {
	mem := storage.NewMemory()
	mem.FailReads(true)

	var logs bytes.Buffer
	s := cartstore.New(mem, zerolog.New(&logs))
	s.Load(t.Context())

	assert.True(t, s.Cart().IsEmpty())
	assert.Contains(t, logs.String(), "read cart failed")
}

func TestStore_LoadLegacyLayout(t *testing.T) {
	ctx := t.Context()
	mem := storage.NewMemory()
	raw := `[
		{"id":"p1","name":"Ankara Tote","price":1000,"image":"tote.jpg","vendorId":"v1","vendorName":"Ada","quantity":2},
		{"id":"p2","name":"Shea Butter","price":450.5,"quantity":1},
		{"id":"p1","name":"Ankara Tote","price":1000,"quantity":1}
	]`
	require.NoError(t, mem.SetItem(ctx, cartstore.DefaultKey, raw))

	s := cartstore.New(mem, zerolog.Nop())
	s.Load(ctx)

	want := domain.Cart{Items: []domain.CartLineItem{
		{ProductID: "p1", Name: "Ankara Tote", Image: "tote.jpg", UnitPrice: decimal.NewFromInt(1000), Quantity: 3, VendorID: "v1", VendorName: "Ada"},
		{ProductID: "p2", Name: "Shea Butter", UnitPrice: decimal.RequireFromString("450.5"), Quantity: 1},
	}}
	assertCart(t, want, s.Cart())
}

func TestStore_AddMerges(t *testing.T) {
	ctx := t.Context()
	s := cartstore.New(storage.NewMemory(), zerolog.Nop())
	snap := randomSnapshot()

	require.NoError(t, s.Add(ctx, "p1", snap, 1))
	require.NoError(t, s.Add(ctx, "p1", randomSnapshot(), 2))

	cart := s.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	// the first snapshot is kept
	assert.Equal(t, snap.Name, cart.Items[0].Name)
}

func TestStore_AddKeepsInsertionOrder(t *testing.T) {
	ctx := t.Context()
	s := cartstore.New(storage.NewMemory(), zerolog.Nop())

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.Add(ctx, id, randomSnapshot(), 1))
	}
	require.NoError(t, s.Add(ctx, "a", randomSnapshot(), 1))

	var ids []string
	for _, item := range s.Cart().Items {
		ids = append(ids, item.ProductID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestStore_AddVendorDefaults(t *testing.T) {
	ctx := t.Context()
	s := cartstore.New(storage.NewMemory(), zerolog.Nop())

	require.NoError(t, s.Add(ctx, "p1", domain.ProductSnapshot{Name: "x", UnitPrice: decimal.NewFromInt(5)}, 1))

	item := s.Cart().Items[0]
	assert.Equal(t, domain.DefaultVendorID, item.VendorID)
	assert.Equal(t, domain.DefaultVendorName, item.VendorName)
}

func TestStore_AddValidation(t *testing.T) {
	ctx := t.Context()
	mem := storage.NewMemory()
	s := cartstore.New(mem, zerolog.Nop())

	tests := []struct {
		name      string
		productID string
		snapshot  domain.ProductSnapshot
		quantity  int
		wantError string
	}{
		{
			name:      "empty product id: error",
			snapshot:  randomSnapshot(),
			quantity:  1,
			wantError: "productID is empty",
		},
		{
			name:      "zero quantity: error",
			productID: "p1",
			snapshot:  randomSnapshot(),
			quantity:  0,
			wantError: "quantity[0] must be positive",
		},
		{
			name:      "negative price: error",
			productID: "p1",
			snapshot:  domain.ProductSnapshot{UnitPrice: decimal.NewFromInt(-3)},
			quantity:  1,
			wantError: "price[-3] must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Add(ctx, tt.productID, tt.snapshot, tt.quantity)
			require.EqualError(t, err, tt.wantError)
		})
	}

	assert.True(t, s.Cart().IsEmpty())
	assert.Zero(t, mem.Writes())
}

func TestStore_UpdateQuantity(t *testing.T) {
	ctx := t.Context()
	mem := storage.NewMemory()
	s := cartstore.New(mem, zerolog.Nop())
	require.NoError(t, s.Add(ctx, "p1", randomSnapshot(), 1))
	require.NoError(t, s.Add(ctx, "p2", randomSnapshot(), 2))

	assert.False(t, s.UpdateQuantity(ctx, 1, 3))
	assert.Equal(t, 5, s.Cart().Items[1].Quantity)

	// driving an item to zero removes it
	assert.True(t, s.UpdateQuantity(ctx, 0, -1))
	cart := s.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "p2", cart.Items[0].ProductID)

	// persisted copy matches memory
	reloaded := cartstore.New(mem, zerolog.Nop())
	reloaded.Load(ctx)
	assertCart(t, cart, reloaded.Cart())
}

func TestStore_UpdateQuantityOutOfRange(t *testing.T) {
	ctx := t.Context()
	mem := storage.NewMemory()
	s := cartstore.New(mem, zerolog.Nop())
	require.NoError(t, s.Add(ctx, "p1", randomSnapshot(), 1))
	writes := mem.Writes()

	for _, index := range []int{-1, 1, 100} {
		assert.False(t, s.UpdateQuantity(ctx, index, -5))
	}

	assert.Len(t, s.Cart().Items, 1)
	assert.Equal(t, writes, mem.Writes())
}

func TestStore_AddRejectsQuantityOverflow(t *testing.T) {
	ctx := t.Context()
	mem := storage.NewMemory()
	s := cartstore.New(mem, zerolog.Nop())
	require.NoError(t, s.Add(ctx, "p1", randomSnapshot(), math.MaxInt))
	writes := mem.Writes()

	err := s.Add(ctx, "p1", randomSnapshot(), 1)
	require.ErrorIs(t, err, cartstore.ErrQuantityLimit)

	cart := s.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, math.MaxInt, cart.Items[0].Quantity)
	assert.Equal(t, writes, mem.Writes(), "nothing written")

	reloaded := cartstore.New(mem, zerolog.Nop())
	reloaded.Load(ctx)
	assertCart(t, cart, reloaded.Cart())
}

func TestStore_UpdateQuantityIgnoresOverflow(t *testing.T) {
	ctx := t.Context()
	mem := storage.NewMemory()
	s := cartstore.New(mem, zerolog.Nop())
	require.NoError(t, s.Add(ctx, "p1", randomSnapshot(), 2))
	writes := mem.Writes()

	assert.False(t, s.UpdateQuantity(ctx, 0, math.MaxInt))

	cart := s.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, writes, mem.Writes())
}

func TestStore_QuantityFloorInvariant(t *testing.T) {
	ctx := t.Context()

	for i := 0; i < 50; i++ {
		s := cartstore.New(storage.NewMemory(), zerolog.Nop())
		for _, item := range randomItems() {
			require.NoError(t, s.Add(ctx, item.ProductID, snapshotOf(item), item.Quantity))
		}

		for step := 0; step < 30; step++ {
			n := len(s.Cart().Items)
			index := gofakeit.IntRange(-1, n)
			delta := gofakeit.IntRange(-4, 3)

			removed := s.UpdateQuantity(ctx, index, delta)
			if removed {
				require.Len(t, s.Cart().Items, n-1)
			}

			for _, item := range s.Cart().Items {
				require.GreaterOrEqual(t, item.Quantity, 1)
			}
		}
	}
}

func TestStore_Remove(t *testing.T) {
	ctx := t.Context()
	s := cartstore.New(storage.NewMemory(), zerolog.Nop())
	require.NoError(t, s.Add(ctx, "p1", randomSnapshot(), 1))
	require.NoError(t, s.Add(ctx, "p2", randomSnapshot(), 1))

	removed, ok := s.Remove(ctx, 0)
	require.True(t, ok)
	assert.Equal(t, "p1", removed.ProductID)

	_, ok = s.Remove(ctx, 5)
	assert.False(t, ok)
	_, ok = s.Remove(ctx, -1)
	assert.False(t, ok)

	cart := s.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "p2", cart.Items[0].ProductID)
}

func TestStore_Clear(t *testing.T) {
	ctx := t.Context()
	mem := storage.NewMemory()
	s := cartstore.New(mem, zerolog.Nop())
	require.NoError(t, s.Add(ctx, "p1", randomSnapshot(), 4))

	s.Clear(ctx)

	assert.True(t, s.Cart().IsEmpty())
	raw, err := mem.GetItem(ctx, cartstore.DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestStore_WriteFailureKeepsMemory(t *testing.T) {
	ctx := t.Context()
	mem := storage.NewMemory()
	mem.FailWrites(true)

	var logs bytes.Buffer
	s := cartstore.New(mem, zerolog.New(&logs))

	require.NoError(t, s.Add(ctx, "p1", randomSnapshot(), 2))
	assert.False(t, s.UpdateQuantity(ctx, 0, 1))

	cart := s.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 3, s.ItemCount())
	assert.Contains(t, logs.String(), "save cart failed")
}

func TestStore_CartIsSnapshot(t *testing.T) {
	ctx := t.Context()
	s := cartstore.New(storage.NewMemory(), zerolog.Nop())
	require.NoError(t, s.Add(ctx, "p1", randomSnapshot(), 1))

	cart := s.Cart()
	cart.Items[0].Quantity = 42

	assert.Equal(t, 1, s.Cart().Items[0].Quantity)
}

func TestStore_WithKey(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := cartstore.New(mem, zerolog.Nop(), cartstore.WithKey("guest-cart"))
	require.NoError(t, s.Add(ctx, "p1", randomSnapshot(), 1))

	_, err := mem.GetItem(ctx, "guest-cart")
	assert.NoError(t, err)
	_, err = mem.GetItem(ctx, cartstore.DefaultKey)
	assert.Error(t, err)
}

func randomItems() []domain.CartLineItem {
	n := gofakeit.IntRange(0, 6)
	items := make([]domain.CartLineItem, 0, n)
	for i := 0; i < n; i++ {
		snap := randomSnapshot()
		items = append(items, domain.CartLineItem{
			ProductID:  gofakeit.UUID(),
			Name:       snap.Name,
			Image:      snap.Image,
			UnitPrice:  snap.UnitPrice,
			Quantity:   gofakeit.IntRange(1, 5),
			VendorID:   snap.VendorID,
			VendorName: snap.VendorName,
		})
	}
	return items
}

func randomSnapshot() domain.ProductSnapshot {
	return domain.ProductSnapshot{
		Name:       gofakeit.ProductName(),
		Image:      gofakeit.URL(),
		UnitPrice:  decimal.NewFromFloat(gofakeit.Price(1, 100000)),
		VendorID:   gofakeit.UUID(),
		VendorName: gofakeit.Company(),
	}
}

func snapshotOf(item domain.CartLineItem) domain.ProductSnapshot {
	return domain.ProductSnapshot{
		Name:       item.Name,
		Image:      item.Image,
		UnitPrice:  item.UnitPrice,
		VendorID:   item.VendorID,
		VendorName: item.VendorName,
	}
}

func assertCart(t *testing.T, expected, actual domain.Cart) {
	t.Helper()

	opts := cmp.Options{
		cmp.Comparer(func(x, y decimal.Decimal) bool {
			return x.Equal(y)
		}),
		cmpopts.EquateEmpty(),
	}

	assert.Empty(t, cmp.Diff(expected, actual, opts))
}
