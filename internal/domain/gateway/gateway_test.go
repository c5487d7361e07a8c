package gateway

import (
	"context"
	"errors"
	"testing"
)

func TestTransportErrorMessage(t *testing.T) {
	cases := []struct {
		err  *TransportError
		want string
	}{
		{&TransportError{Service: ServiceOrder, Status: 500, Body: "boom"}, "order service: HTTP 500: boom"},
		{&TransportError{Service: ServicePayment, Status: 502}, "payment service: HTTP 502"},
		{&TransportError{Service: ServiceCatalog, Err: context.DeadlineExceeded}, "catalog service: context deadline exceeded"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Errorf("Error() = %q, want %q", got, tc.want)
		}
	}
}

func TestTransportErrorUnwraps(t *testing.T) {
	err := error(&TransportError{Service: ServiceInventory, Err: context.Canceled})
	if !errors.Is(err, context.Canceled) {
		t.Fatal("expected context.Canceled in chain")
	}
	var te *TransportError
	if !errors.As(err, &te) || te.Service != ServiceInventory {
		t.Fatalf("errors.As failed: %v", err)
	}
}
