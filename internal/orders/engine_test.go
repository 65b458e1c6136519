package orders

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/apperr"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/models"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/store"
)

func newEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	s, err := store.NewStore(store.DriverSQLite, filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return NewEngine(s), s
}

func addProduct(t *testing.T, s *store.Store, name, price string, sizes ...models.SizeStock) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), Image: "/uploads/x.jpg", Sizes: sizes}
	require.NoError(t, s.CreateProduct(context.Background(), p))
	return p
}

func validInput(items ...ItemInput) PlaceOrderInput {
	return PlaceOrderInput{
		CustomerName:    "Mona Adel",
		CustomerPhone:   "01012345678",
		CustomerAddress: "12 Nile St, Cairo",
		Governorate:     "1",
		Items:           items,
		Notes:           "ring twice",
	}
}

func stockOf(t *testing.T, s *store.Store, id int64, size models.Size) int {
	t.Helper()
	p, err := s.GetProduct(context.Background(), id)
	require.NoError(t, err)
	entry := p.SizeEntry(size)
	require.NotNil(t, entry)
	return entry.Quantity
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("01012345678"))
	assert.True(t, ValidPhone("01112345678"))
	assert.True(t, ValidPhone("01212345678"))
	assert.True(t, ValidPhone("01512345678"))
	assert.False(t, ValidPhone("0301234567"))
	assert.False(t, ValidPhone("01312345678"))
	assert.False(t, ValidPhone("0101234567"))
	assert.False(t, ValidPhone("010123456789"))
}

func TestPlaceOrderPricingAndStock(t *testing.T) {
	ctx := context.Background()
	e, s := newEngine(t)
	abaya := addProduct(t, s, "Abaya", "75.5", models.SizeStock{Size: models.SizeM, Quantity: 4})
	scarf := addProduct(t, s, "Scarf", "49", models.SizeStock{Size: models.SizeS, Quantity: 1})

	order, err := e.PlaceOrder(ctx, validInput(
		ItemInput{ProductID: abaya.ID, Quantity: 2, SelectedSize: models.SizeM},
		ItemInput{ProductID: scarf.ID, Quantity: 1, SelectedSize: models.SizeS},
	))
	require.NoError(t, err)

	// 75.5*2 + 49 = 200; Cairo ships for 30.
	assert.Equal(t, "200", order.Subtotal.String())
	assert.Equal(t, "30", order.ShippingCost.String())
	assert.Equal(t, "230", order.TotalAmount.String())
	assert.True(t, order.TotalAmount.Equal(order.Subtotal.Add(order.ShippingCost)))
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, 1, order.Governorate)
	assert.Equal(t, "ring twice", order.Notes)

	require.Len(t, order.Items, 2)
	require.NotNil(t, order.Items[0].Product)
	assert.Equal(t, "Abaya", order.Items[0].Product.Name)
	assert.True(t, order.Items[0].Price.Equal(decimal.RequireFromString("75.5")))

	assert.Equal(t, 2, stockOf(t, s, abaya.ID, models.SizeM), "decremented exactly once")
	assert.Equal(t, 0, stockOf(t, s, scarf.ID, models.SizeS))
}

func TestCapturedPriceSurvivesPriceChange(t *testing.T) {
	ctx := context.Background()
	e, s := newEngine(t)
	p := addProduct(t, s, "Abaya", "100", models.SizeStock{Size: models.SizeM, Quantity: 4})

	order, err := e.PlaceOrder(ctx, validInput(ItemInput{ProductID: p.ID, Quantity: 1, SelectedSize: models.SizeM}))
	require.NoError(t, err)

	p.Price = decimal.NewFromInt(500)
	require.NoError(t, s.UpdateProduct(ctx, p))

	got, err := s.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", got.Items[0].Price.String())
	assert.Equal(t, "130", got.TotalAmount.String())
}

func TestPlaceOrderValidationFailures(t *testing.T) {
	ctx := context.Background()
	e, s := newEngine(t)
	p := addProduct(t, s, "Abaya", "100", models.SizeStock{Size: models.SizeM, Quantity: 2})
	ok := ItemInput{ProductID: p.ID, Quantity: 1, SelectedSize: models.SizeM}

	cases := []struct {
		name    string
		mutate  func(in *PlaceOrderInput)
		kind    apperr.Kind
		message string
	}{
		{"missing name", func(in *PlaceOrderInput) { in.CustomerName = "  " }, apperr.KindValidation, "all required fields must be filled"},
		{"no items", func(in *PlaceOrderInput) { in.Items = nil }, apperr.KindValidation, "all required fields must be filled"},
		{"bad phone", func(in *PlaceOrderInput) { in.CustomerPhone = "0301234567" }, apperr.KindValidation, "invalid phone number"},
		{"unknown governorate", func(in *PlaceOrderInput) { in.Governorate = "99" }, apperr.KindConflict, "invalid governorate"},
		{"non-numeric governorate", func(in *PlaceOrderInput) { in.Governorate = "cairo" }, apperr.KindConflict, "invalid governorate"},
		{"zero quantity", func(in *PlaceOrderInput) { in.Items[0].Quantity = 0 }, apperr.KindValidation, "quantity must be a positive integer"},
		{"unknown product", func(in *PlaceOrderInput) { in.Items[0].ProductID = 9999 }, apperr.KindNotFound, "product not found"},
		{"missing size", func(in *PlaceOrderInput) { in.Items[0].SelectedSize = "" }, apperr.KindValidation, "size is required for product Abaya"},
		{"size not carried", func(in *PlaceOrderInput) { in.Items[0].SelectedSize = models.SizeXL }, apperr.KindConflict, "size XL is not available for product Abaya"},
		{"over stock", func(in *PlaceOrderInput) { in.Items[0].Quantity = 3 }, apperr.KindConflict, "insufficient stock for Abaya - size M. Available: 2"},
		{"same size twice", func(in *PlaceOrderInput) { in.Items = append(in.Items, ok, ok) }, apperr.KindConflict, "insufficient stock for Abaya - size M. Available: 2"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := validInput(ok)
			c.mutate(&in)

			_, err := e.PlaceOrder(ctx, in)
			require.Error(t, err)
			ae := apperr.From(err)
			assert.Equal(t, c.kind, ae.Kind)
			assert.Equal(t, c.message, ae.Message)

			assert.Equal(t, 2, stockOf(t, s, p.ID, models.SizeM), "stock must be untouched")
			n, err := s.CountOrders(ctx)
			require.NoError(t, err)
			assert.Zero(t, n, "no order must be created")
		})
	}
}

func TestLaterItemFailureLeavesEarlierStock(t *testing.T) {
	ctx := context.Background()
	e, s := newEngine(t)
	a := addProduct(t, s, "Abaya", "100", models.SizeStock{Size: models.SizeM, Quantity: 5})
	b := addProduct(t, s, "Scarf", "10", models.SizeStock{Size: models.SizeS, Quantity: 1})

	_, err := e.PlaceOrder(ctx, validInput(
		ItemInput{ProductID: a.ID, Quantity: 2, SelectedSize: models.SizeM},
		ItemInput{ProductID: b.ID, Quantity: 2, SelectedSize: models.SizeS},
	))
	require.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, 5, stockOf(t, s, a.ID, models.SizeM))
}

// raceRepo lets validation see enough stock and then drains it before the
// decrement, the way a concurrent order would.
type raceRepo struct {
	*store.Store
	drain func()
}

func (r *raceRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	r.drain()
	return r.Store.CreateOrder(ctx, o)
}

func TestShortageAtDecrementIsReported(t *testing.T) {
	ctx := context.Background()
	_, s := newEngine(t)
	p := addProduct(t, s, "Abaya", "100", models.SizeStock{Size: models.SizeM, Quantity: 2})

	repo := &raceRepo{Store: s, drain: func() {
		p.Sizes = []models.SizeStock{{Size: models.SizeM, Quantity: 1}}
		require.NoError(t, s.UpdateProduct(ctx, p))
	}}
	e := NewEngine(repo)

	_, err := e.PlaceOrder(ctx, validInput(ItemInput{ProductID: p.ID, Quantity: 2, SelectedSize: models.SizeM}))
	require.Error(t, err)
	assert.Equal(t, "insufficient stock for Abaya - size M. Available: 1", apperr.From(err).Message)
	assert.Equal(t, 1, stockOf(t, s, p.ID, models.SizeM))
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	e, s := newEngine(t)
	p := addProduct(t, s, "Abaya", "100", models.SizeStock{Size: models.SizeM, Quantity: 2})
	order, err := e.PlaceOrder(ctx, validInput(ItemInput{ProductID: p.ID, Quantity: 1, SelectedSize: models.SizeM}))
	require.NoError(t, err)

	_, err = e.SetStatus(ctx, order.ID, "cancelled")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	updated, err := e.SetStatus(ctx, order.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)

	got, err := s.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, got.Status)

	_, err = e.SetStatus(ctx, 9999, "shipped")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
