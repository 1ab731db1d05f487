package grpc

import (
	"fmt"
	"time"

	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service speaks well-known protobuf types over the default proto codec.
// Orders travel as structpb values; money is a decimal string and times are
// RFC 3339.
type (
	CheckoutRequest    = emptypb.Empty
	CheckoutResponse   = structpb.Struct
	GetOrderRequest    = wrapperspb.StringValue
	GetOrderResponse   = structpb.Struct
	ListOrdersRequest  = emptypb.Empty
	ListOrdersResponse = structpb.ListValue
)

func str(s string) *structpb.Value { return structpb.NewStringValue(s) }

func num(n int64) *structpb.Value { return structpb.NewNumberValue(float64(n)) }

func encodeOrder(o *domain.Order) *structpb.Struct {
	lines := make([]*structpb.Value, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"kind":       str(string(l.Ref.Kind)),
			"product_id": num(l.Ref.ID),
			"name":       str(l.Name),
			"quantity":   num(int64(l.Quantity)),
			"unit_price": str(l.UnitPrice.String()),
		}}))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":         str(o.ID.String()),
		"owner_id":   num(o.OwnerID),
		"owner_name": str(o.OwnerName),
		"status":     str(string(o.Status)),
		"total":      str(o.Total.String()),
		"lines":      structpb.NewListValue(&structpb.ListValue{Values: lines}),
		"created_at": str(o.CreatedAt.UTC().Format(time.RFC3339Nano)),
	}}
}

func encodeCheckoutResult(res *domain.CheckoutResult) *structpb.Struct {
	transitions := make([]*structpb.Value, 0, len(res.Transitions))
	for _, t := range res.Transitions {
		transitions = append(transitions, str(string(t)))
	}
	order := structpb.NewNullValue()
	if res.Order != nil {
		order = structpb.NewStructValue(encodeOrder(res.Order))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"status":      str(string(res.Status)),
		"transitions": structpb.NewListValue(&structpb.ListValue{Values: transitions}),
		"order":       order,
	}}
}

func encodeOrders(orders []*domain.Order) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(orders))
	for _, o := range orders {
		values = append(values, structpb.NewStructValue(encodeOrder(o)))
	}
	return &structpb.ListValue{Values: values}
}

func decodeOrder(s *structpb.Struct) (*domain.Order, error) {
	f := s.GetFields()
	id, err := uuid.Parse(f["id"].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("order id: %w", err)
	}
	total, err := decimal.NewFromString(f["total"].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("order total: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, f["created_at"].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("order created_at: %w", err)
	}

	o := &domain.Order{
		ID:        id,
		OwnerID:   int64(f["owner_id"].GetNumberValue()),
		OwnerName: f["owner_name"].GetStringValue(),
		Status:    domain.OrderStatus(f["status"].GetStringValue()),
		Total:     total,
		CreatedAt: createdAt,
	}
	for _, v := range f["lines"].GetListValue().GetValues() {
		lf := v.GetStructValue().GetFields()
		price, err := decimal.NewFromString(lf["unit_price"].GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("line unit_price: %w", err)
		}
		o.Lines = append(o.Lines, domain.OrderLine{
			Ref: domain.ProductRef{
				Kind: domain.Kind(lf["kind"].GetStringValue()),
				ID:   int64(lf["product_id"].GetNumberValue()),
			},
			Name:      lf["name"].GetStringValue(),
			Quantity:  int(lf["quantity"].GetNumberValue()),
			UnitPrice: price,
		})
	}
	return o, nil
}

func decodeCheckoutResult(s *structpb.Struct) (*domain.CheckoutResult, error) {
	f := s.GetFields()
	res := &domain.CheckoutResult{Status: domain.CheckoutStatus(f["status"].GetStringValue())}
	for _, v := range f["transitions"].GetListValue().GetValues() {
		res.Transitions = append(res.Transitions, domain.CheckoutStatus(v.GetStringValue()))
	}
	if order := f["order"].GetStructValue(); order != nil {
		o, err := decodeOrder(order)
		if err != nil {
			return nil, err
		}
		res.Order = o
	}
	return res, nil
}
