package httptransport

import (
	"context"
	"net/http"

	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/gateway"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/payment"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability"
	"github.com/Zhima-Mochi/ecom-compositor/internal/pkg/wire"
)

const basePathPayments = "/payments"

var _ gateway.PaymentGateway = (*PaymentClient)(nil)

type PaymentClient struct{ c *client }

func NewPaymentClient(baseURL string, hc *http.Client, tel observability.Observability) *PaymentClient {
	return &PaymentClient{c: newClient(gateway.ServicePayment, baseURL, basePathPayments, hc, tel)}
}

func (pc *PaymentClient) CreatePayment(ctx context.Context, p *payment.Payment) (*payment.Payment, error) {
	return pc.roundTrip(ctx, http.MethodPost, "POST /", "", wire.FromPayment(p))
}

func (pc *PaymentClient) FetchPaymentByOrder(ctx context.Context, orderID int64) (*payment.Payment, error) {
	return pc.roundTrip(ctx, http.MethodGet, "GET /order/{orderId}", "/order"+idPath(orderID), nil)
}

func (pc *PaymentClient) UpdatePayment(ctx context.Context, paymentID int64, p *payment.Payment) (*payment.Payment, error) {
	return pc.roundTrip(ctx, http.MethodPut, "PUT /{id}", idPath(paymentID), wire.FromPayment(p))
}

func (pc *PaymentClient) roundTrip(ctx context.Context, method, endpoint, path string, in any) (*payment.Payment, error) {
	var dto wire.Payment
	if err := pc.c.call(ctx, method, endpoint, path, in, &dto); err != nil {
		return nil, err
	}
	p, err := dto.Domain()
	if err != nil {
		return nil, pc.c.decodeError(err)
	}
	return p, nil
}
