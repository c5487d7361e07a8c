package httptransport

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"

	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/catalog"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/gateway"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability"
	"github.com/Zhima-Mochi/ecom-compositor/internal/pkg/wire"
)

const basePathProducts = "/products"

var _ gateway.CatalogGateway = (*CatalogClient)(nil)

type CatalogClient struct{ c *client }

func NewCatalogClient(baseURL string, hc *http.Client, tel observability.Observability) *CatalogClient {
	return &CatalogClient{c: newClient(gateway.ServiceCatalog, baseURL, basePathProducts, hc, tel)}
}

func (cc *CatalogClient) FetchProduct(ctx context.Context, productID int64) (*catalog.Product, error) {
	var dto wire.Product
	if err := cc.c.call(ctx, http.MethodGet, "GET /{id}", idPath(productID), nil, &dto); err != nil {
		return nil, err
	}
	p, err := dto.Domain()
	if err != nil {
		return nil, cc.c.decodeError(err)
	}
	return p, nil
}

// ListProducts streams the product array element by element; the response is
// never buffered whole.
func (cc *CatalogClient) ListProducts(ctx context.Context) iter.Seq2[*catalog.Product, error] {
	return func(yield func(*catalog.Product, error) bool) {
		body, err := cc.c.open(ctx, http.MethodGet, "GET /", "", nil)
		if err != nil {
			yield(nil, err)
			return
		}
		defer body.Close()

		dec := json.NewDecoder(body)
		tok, err := dec.Token()
		if err != nil {
			yield(nil, cc.c.decodeError(err))
			return
		}
		if tok == nil {
			return // null listing
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			yield(nil, cc.c.decodeError(fmt.Errorf("expected array, got %v", tok)))
			return
		}

		for dec.More() {
			var dto wire.Product
			if err := dec.Decode(&dto); err != nil {
				yield(nil, cc.c.decodeError(err))
				return
			}
			p, err := dto.Domain()
			if err != nil {
				yield(nil, cc.c.decodeError(err))
				return
			}
			if !yield(p, nil) {
				return
			}
		}
		if _, err := dec.Token(); err != nil {
			yield(nil, cc.c.decodeError(err))
		}
	}
}
