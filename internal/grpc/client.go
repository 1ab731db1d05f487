package grpc

import (
	"context"

	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/fjod/game-hardware-store/internal/identity"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls CheckoutService on behalf of an owner.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) Checkout(ctx context.Context, owner identity.Owner) (*domain.CheckoutResult, error) {
	out := new(CheckoutResponse)
	if err := c.invoke(ctx, owner, "Checkout", new(CheckoutRequest), out); err != nil {
		return nil, err
	}
	return decodeCheckoutResult(out)
}

func (c *Client) GetOrder(ctx context.Context, ownerID int64, id uuid.UUID) (*domain.Order, error) {
	out := new(GetOrderResponse)
	if err := c.invoke(ctx, identity.Owner{ID: ownerID}, "GetOrder", wrapperspb.String(id.String()), out); err != nil {
		return nil, err
	}
	return decodeOrder(out)
}

func (c *Client) ListOrders(ctx context.Context, ownerID int64) ([]*domain.Order, error) {
	out := new(ListOrdersResponse)
	if err := c.invoke(ctx, identity.Owner{ID: ownerID}, "ListOrders", new(ListOrdersRequest), out); err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		o, err := decodeOrder(v.GetStructValue())
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (c *Client) invoke(ctx context.Context, owner identity.Owner, method string, in, out any) error {
	ctx = identity.AppendToOutgoing(ctx, owner)
	return c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out)
}
