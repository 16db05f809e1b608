package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Product statuses the editor may submit. The upstream API owns the actual
// lifecycle transitions.
const (
	StatusDraft      = "draft"
	StatusPublished  = "published"
	StatusArchived   = "archived"
	StatusOutOfStock = "out_of_stock"
)

// ProductStatuses lists every valid status, in display order.
var ProductStatuses = []string{StatusDraft, StatusPublished, StatusArchived, StatusOutOfStock}

// Currencies the store sells in.
var Currencies = []string{"USD", "EUR", "GBP", "BDT", "INR"}

// Document is the rich-text description blob. The console never looks inside
// it; it is loaded and forwarded byte for byte.
type Document = json.RawMessage

// Ref is a reference-entity handle as selected in the editor. Relation sets
// keep the user's selection order and are unique by ID.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Image is a server-resident product image reference.
type Image struct {
	URL string `json:"url"`
}

// Product is the catalog entity as served by the upstream API.
type Product struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortDesc string `json:"shortDesc"`
	SKU       string `json:"sku"`
	Stock     int    `json:"stock"`

	// SalePrice zero means "no sale price set".
	RegularPrice decimal.Decimal `json:"regularPrice"`
	SalePrice    decimal.Decimal `json:"salePrice"`

	Status   string `json:"status"`
	Currency string `json:"currency"`
	Slug     string `json:"slug,omitempty"`

	Description Document `json:"description,omitempty"`

	// Relation sets, selection-ordered.
	TaxStatus  []Ref `json:"taxStatus,omitempty"`
	Shipping   []Ref `json:"shipping,omitempty"`
	Colors     []Ref `json:"colors,omitempty"`
	Sizes      []Ref `json:"sizes,omitempty"`
	Categories []Ref `json:"categories,omitempty"`
	Brands     []Ref `json:"brands,omitempty"`
	Sections   []Ref `json:"sections,omitempty"`

	// Zero means no discount applied.
	DiscountID int64 `json:"discountId,omitempty"`

	Images []Image `json:"images,omitempty"`
}

// FirstCategory returns the name of the first associated category, or ""
// when the product has none.
func (p *Product) FirstCategory() string {
	if len(p.Categories) == 0 {
		return ""
	}
	return p.Categories[0].Name
}

// ValidStatus reports whether s is a known product status.
func ValidStatus(s string) bool {
	for _, v := range ProductStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ValidCurrency reports whether c is a known store currency.
func ValidCurrency(c string) bool {
	for _, v := range Currencies {
		if c == v {
			return true
		}
	}
	return false
}
