package handlers

import (
	"context"
	"sync"

	"github.com/mahin-dev/catalog-console/internal/gateway"
	"github.com/mahin-dev/catalog-console/internal/models"
)

// Handlers holds all dependencies for the console's HTTP handlers: the
// upstream gateway client and the session's canonical product array. The
// array is the source of truth between refetches; every listing view is
// derived from it and every accepted save is folded back into it.
type Handlers struct {
	Gateway *gateway.Client

	mu       sync.Mutex
	products []models.Product
	loaded   bool
}

func New(gw *gateway.Client) *Handlers {
	return &Handlers{Gateway: gw}
}

// sessionProducts returns a snapshot of the canonical array, fetching it
// from upstream on first use or when refresh is requested.
func (h *Handlers) sessionProducts(ctx context.Context, refresh bool) ([]models.Product, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.loaded || refresh {
		list, err := h.Gateway.ListProducts(ctx)
		if err != nil {
			return nil, err
		}
		h.products = list
		h.loaded = true
	}
	return append([]models.Product(nil), h.products...), nil
}

// storeProduct folds an upstream response back into the canonical array,
// replacing by id or appending when new.
func (h *Handlers) storeProduct(p models.Product) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.products {
		if h.products[i].ID == p.ID {
			h.products[i] = p
			return
		}
	}
	h.products = append(h.products, p)
}

func (h *Handlers) dropProduct(id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.products {
		if h.products[i].ID == id {
			h.products = append(h.products[:i], h.products[i+1:]...)
			return
		}
	}
}

// findProduct looks a product up in the canonical array.
func (h *Handlers) findProduct(id int64) (models.Product, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.products {
		if h.products[i].ID == id {
			return h.products[i], true
		}
	}
	return models.Product{}, false
}
