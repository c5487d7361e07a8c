package httptransport

import (
	"context"
	"net/http"

	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/gateway"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/inventory"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability"
	"github.com/Zhima-Mochi/ecom-compositor/internal/pkg/wire"
)

const basePathInventory = "/inventory"

var _ gateway.InventoryGateway = (*InventoryClient)(nil)

type InventoryClient struct{ c *client }

func NewInventoryClient(baseURL string, hc *http.Client, tel observability.Observability) *InventoryClient {
	return &InventoryClient{c: newClient(gateway.ServiceInventory, baseURL, basePathInventory, hc, tel)}
}

// FetchInventory looks the record up by product id.
func (ic *InventoryClient) FetchInventory(ctx context.Context, productID int64) (*inventory.Record, error) {
	var dto wire.Inventory
	if err := ic.c.call(ctx, http.MethodGet, "GET /{productId}", idPath(productID), nil, &dto); err != nil {
		return nil, err
	}
	return ic.decode(dto)
}

// UpdateInventory replaces the record addressed by its inventory id.
func (ic *InventoryClient) UpdateInventory(ctx context.Context, inventoryID int64, rec *inventory.Record) (*inventory.Record, error) {
	var dto wire.Inventory
	if err := ic.c.call(ctx, http.MethodPut, "PUT /{id}", idPath(inventoryID), wire.FromInventory(rec), &dto); err != nil {
		return nil, err
	}
	return ic.decode(dto)
}

func (ic *InventoryClient) decode(dto wire.Inventory) (*inventory.Record, error) {
	rec, err := dto.Domain()
	if err != nil {
		return nil, ic.c.decodeError(err)
	}
	return rec, nil
}
