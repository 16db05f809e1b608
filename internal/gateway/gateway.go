// Package gateway is the HTTP client for the remote catalog API. The
// upstream service owns persistence and validation; this client only moves
// collections and submissions across the wire.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mahin-dev/catalog-console/internal/models"
)

// Error is a non-success response from the upstream API. The status code is
// preserved so the console can decide whether the user can fix the input.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: upstream returned %d: %s", e.Status, e.Body)
}

// Client talks to one upstream catalog API. Calls are never retried;
// transient failures surface to the caller as errors.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client for the given base URL, e.g.
// "http://127.0.0.1:8000".
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// referencePaths maps a reference kind to its upstream collection path.
var referencePaths = map[models.ReferenceKind]string{
	models.KindCategory: "/api/category",
	models.KindBrand:    "/api/brand",
	models.KindColor:    "/api/color",
	models.KindSize:     "/api/size",
	models.KindDiscount: "/api/discounts",
	models.KindShipping: "/api/shipping",
	models.KindSection:  "/api/sections",
}

// ListProducts fetches the full product collection.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := c.doJSON(ctx, http.MethodGet, "/api/products", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProduct fetches a single product by id.
func (c *Client) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var out models.Product
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProduct posts a multipart submission and returns the stored product.
func (c *Client) CreateProduct(ctx context.Context, sub *models.Submission) (*models.Product, error) {
	return c.sendSubmission(ctx, http.MethodPost, "/api/products", sub)
}

// UpdateProduct puts a multipart submission for an existing product.
func (c *Client) UpdateProduct(ctx context.Context, id int64, sub *models.Submission) (*models.Product, error) {
	return c.sendSubmission(ctx, http.MethodPut, fmt.Sprintf("/api/products/%d", id), sub)
}

// DeleteProduct removes a product upstream.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/products/%d", id), nil)
}

// ListReference fetches the read-only option list for one reference kind.
func (c *Client) ListReference(ctx context.Context, kind models.ReferenceKind) ([]models.ReferenceEntity, error) {
	path, ok := referencePaths[kind]
	if !ok {
		return nil, fmt.Errorf("gateway: unknown reference kind %q", kind)
	}
	var out []models.ReferenceEntity
	if err := c.doJSON(ctx, http.MethodGet, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) sendSubmission(ctx context.Context, method, path string, sub *models.Submission) (*models.Product, error) {
	body, contentType, err := EncodeSubmission(sub)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var out models.Product
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return &Error{Status: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("gateway: decoding %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
