// Package orderapi holds the wire contract of the createOrder call shared
// by the order client and the order service. Messages are structpb.Struct
// values so no generated code is needed.
package orderapi

import (
	"fmt"
	"math"

	"github.com/nikolayk812/oja-market/internal/domain"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName       = "oja.orders.v1.OrderService"
	CreateOrderMethod = "/" + ServiceName + "/CreateOrder"
)

// EncodeRequest builds {"items":[{"productId","quantity","price","name"}]}.
func EncodeRequest(lines []domain.OrderLine) (*structpb.Struct, error) {
	items := make([]any, 0, len(lines))
	for _, line := range lines {
		items = append(items, map[string]any{
			"productId": line.ProductID,
			"quantity":  line.Quantity,
			"price":     line.UnitPrice.InexactFloat64(),
			"name":      line.Name,
		})
	}

	req, err := structpb.NewStruct(map[string]any{"items": items})
	if err != nil {
		return nil, fmt.Errorf("structpb.NewStruct: %w", err)
	}

	return req, nil
}

func DecodeRequest(req *structpb.Struct) ([]domain.OrderLine, error) {
	if req == nil {
		return nil, fmt.Errorf("request is empty")
	}

	list := req.GetFields()["items"].GetListValue()
	if list == nil {
		return nil, fmt.Errorf("items is missing")
	}

	lines := make([]domain.OrderLine, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		fields := v.GetStructValue().GetFields()
		if fields == nil {
			return nil, fmt.Errorf("items[%d] is not an object", i)
		}

		productID := fields["productId"].GetStringValue()
		if productID == "" {
			return nil, fmt.Errorf("items[%d].productId is empty", i)
		}

		qty, ok := fields["quantity"].GetKind().(*structpb.Value_NumberValue)
		if !ok || qty.NumberValue < 1 || qty.NumberValue != math.Trunc(qty.NumberValue) {
			return nil, fmt.Errorf("items[%d].quantity must be a positive integer", i)
		}

		lines = append(lines, domain.OrderLine{
			ProductID: productID,
			Quantity:  int(qty.NumberValue),
			UnitPrice: decimal.NewFromFloat(fields["price"].GetNumberValue()),
			Name:      fields["name"].GetStringValue(),
		})
	}

	return lines, nil
}

// EncodeResponse builds {"orderId","total"}.
func EncodeResponse(c domain.OrderConfirmation) (*structpb.Struct, error) {
	resp, err := structpb.NewStruct(map[string]any{
		"orderId": c.OrderID,
		"total":   c.Total.InexactFloat64(),
	})
	if err != nil {
		return nil, fmt.Errorf("structpb.NewStruct: %w", err)
	}

	return resp, nil
}

func DecodeResponse(resp *structpb.Struct) (domain.OrderConfirmation, error) {
	fields := resp.GetFields()

	orderID := fields["orderId"].GetStringValue()
	if orderID == "" {
		return domain.OrderConfirmation{}, fmt.Errorf("orderId is empty")
	}

	total, ok := fields["total"].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return domain.OrderConfirmation{}, fmt.Errorf("total is missing")
	}

	return domain.OrderConfirmation{
		OrderID: orderID,
		Total:   decimal.NewFromFloat(total.NumberValue),
	}, nil
}
