package orderservice_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/oja-market/internal/catalog"
	"github.com/nikolayk812/oja-market/internal/domain"
	"github.com/nikolayk812/oja-market/internal/identity"
	"github.com/nikolayk812/oja-market/internal/orderservice"
	"github.com/nikolayk812/oja-market/internal/port"
	"github.com/nikolayk812/oja-market/internal/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type serviceSuite struct {
	suite.Suite

	docs    port.TxDocumentStore
	idp     *identity.Memory
	catalog *catalog.Service
	svc     *orderservice.Service
	token   string
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(serviceSuite))
}

func (suite *serviceSuite) SetupTest() {
	ctx := suite.T().Context()

	suite.docs = repository.NewMemory()
	suite.idp = identity.NewMemory()
	suite.catalog = catalog.NewService(suite.docs, zerolog.Nop())
	suite.svc = orderservice.New(suite.docs, suite.idp, domain.DefaultTotalsConfig(), zerolog.Nop())

	session, err := suite.idp.SignUp(ctx, gofakeit.Email(), "secret123")
	suite.Require().NoError(err)
	suite.token = session.Token
}

func (suite *serviceSuite) TestPlaceOrder() {
	ctx := suite.T().Context()

	productID := suite.createProduct("Ankara Tote", 1000, 5, domain.ProductStatusActive)

	lines := []domain.OrderLine{
		// client price is ignored
		{ProductID: productID, Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
		{ProductID: productID, Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
	}

	confirmation, err := suite.svc.PlaceOrder(ctx, suite.token, lines)
	suite.Require().NoError(err)
	suite.NotEmpty(confirmation.OrderID)
	suite.True(decimal.NewFromInt(7150).Equal(confirmation.Total), confirmation.Total.String())

	product, err := suite.catalog.Product(ctx, productID)
	suite.Require().NoError(err)
	suite.Equal(3, product.Stock)

	order, err := suite.docs.Get(ctx, port.CollectionOrders, confirmation.OrderID)
	suite.Require().NoError(err)
	suite.Equal(orderservice.OrderStatusPending, order.Data["status"])
	suite.Equal(suite.idp.CurrentSession().UserID, order.Data["userId"])
	suite.InDelta(2000, order.Data["subtotal"], 1e-9)
	suite.InDelta(5000, order.Data["shipping"], 1e-9)
	suite.InDelta(150, order.Data["tax"], 1e-9)

	items, ok := order.Data["items"].([]any)
	suite.Require().True(ok)
	suite.Len(items, 1)
}

func (suite *serviceSuite) TestPlaceOrder_Rejections() {
	ctx := suite.T().Context()

	activeID := suite.createProduct("Leather Sandals", 12000, 1, domain.ProductStatusActive)
	draftID := suite.createProduct("Draft Bag", 500, 10, "draft")
	missingID := gofakeit.UUID()

	tests := []struct {
		name     string
		token    string
		lines    []domain.OrderLine
		wantCode codes.Code
		wantMsg  string
	}{
		{
			name:     "invalid token",
			token:    "nope",
			lines:    []domain.OrderLine{{ProductID: activeID, Quantity: 1}},
			wantCode: codes.Unauthenticated,
			wantMsg:  "sign in to place an order",
		},
		{
			name:     "no lines",
			token:    suite.token,
			wantCode: codes.InvalidArgument,
			wantMsg:  "cart is empty",
		},
		{
			name:     "missing product",
			token:    suite.token,
			lines:    []domain.OrderLine{{ProductID: missingID, Quantity: 1}},
			wantCode: codes.NotFound,
			wantMsg:  "product " + missingID + " not found",
		},
		{
			name:     "inactive product",
			token:    suite.token,
			lines:    []domain.OrderLine{{ProductID: draftID, Quantity: 1}},
			wantCode: codes.NotFound,
			wantMsg:  "product " + draftID + " not found",
		},
		{
			name:     "insufficient stock",
			token:    suite.token,
			lines:    []domain.OrderLine{{ProductID: activeID, Quantity: 2}},
			wantCode: codes.FailedPrecondition,
			wantMsg:  "insufficient stock for Leather Sandals",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.svc.PlaceOrder(ctx, tt.token, tt.lines)

			st, ok := status.FromError(err)
			suite.Require().True(ok, "not a status error: %v", err)
			suite.Equal(tt.wantCode, st.Code())
			suite.Equal(tt.wantMsg, st.Message())
		})
	}

	orders, err := suite.docs.Query(ctx, port.CollectionOrders)
	suite.Require().NoError(err)
	suite.Empty(orders)
}

func (suite *serviceSuite) TestPlaceOrder_AllOrNothing() {
	ctx := suite.T().Context()

	plentyID := suite.createProduct("Beaded Necklace", 800, 10, domain.ProductStatusActive)
	scarceID := suite.createProduct("Aso Oke", 60000, 1, domain.ProductStatusActive)

	lines := []domain.OrderLine{
		{ProductID: plentyID, Quantity: 4},
		{ProductID: scarceID, Quantity: 3},
	}

	_, err := suite.svc.PlaceOrder(ctx, suite.token, lines)
	suite.Equal(codes.FailedPrecondition, status.Code(err))

	plenty, err := suite.catalog.Product(ctx, plentyID)
	suite.Require().NoError(err)
	suite.Equal(10, plenty.Stock, "stock of earlier lines is rolled back")
}

func (suite *serviceSuite) createProduct(name string, price int64, stock int, productStatus string) string {
	id, err := suite.catalog.CreateProduct(suite.T().Context(), domain.Product{
		Name:       name,
		Price:      decimal.NewFromInt(price),
		Stock:      stock,
		Status:     productStatus,
		VendorID:   gofakeit.UUID(),
		VendorName: gofakeit.Company(),
	})
	require.NoError(suite.T(), err)
	return id
}
