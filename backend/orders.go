package backend

import (
	"context"

	"cart-service/models"
)

// OrderSubmitter sends an assembled order to the backend. Implementations
// must return a non-nil error unless the backend confirmed the order; the
// caller only clears the cart on nil.
type OrderSubmitter interface {
	CreateOrder(ctx context.Context, data models.OrderData) error
}

func (c *Client) CreateOrder(ctx context.Context, data models.OrderData) error {
	return c.postJSON(ctx, "/WebOrder/createOrder", data.BackendPayload())
}
