package httptransport

import (
	"context"
	"net/http"

	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/gateway"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/order"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability"
	"github.com/Zhima-Mochi/ecom-compositor/internal/pkg/wire"
)

const basePathOrders = "/orders"

var _ gateway.OrderGateway = (*OrderClient)(nil)

type OrderClient struct{ c *client }

func NewOrderClient(baseURL string, hc *http.Client, tel observability.Observability) *OrderClient {
	return &OrderClient{c: newClient(gateway.ServiceOrder, baseURL, basePathOrders, hc, tel)}
}

func (oc *OrderClient) CreateOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	return oc.roundTrip(ctx, http.MethodPost, "POST /", "", wire.FromOrder(o))
}

func (oc *OrderClient) FetchOrder(ctx context.Context, orderID int64) (*order.Order, error) {
	return oc.roundTrip(ctx, http.MethodGet, "GET /{id}", idPath(orderID), nil)
}

func (oc *OrderClient) UpdateOrder(ctx context.Context, orderID int64, o *order.Order) (*order.Order, error) {
	return oc.roundTrip(ctx, http.MethodPut, "PUT /{id}", idPath(orderID), wire.FromOrder(o))
}

func (oc *OrderClient) roundTrip(ctx context.Context, method, endpoint, path string, in any) (*order.Order, error) {
	var dto wire.Order
	if err := oc.c.call(ctx, method, endpoint, path, in, &dto); err != nil {
		return nil, err
	}
	o, err := dto.Domain()
	if err != nil {
		return nil, oc.c.decodeError(err)
	}
	return o, nil
}
