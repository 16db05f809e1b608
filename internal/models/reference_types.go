package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ReferenceKind names one of the reference-entity collections the upstream
// API serves as read-only option lists.
type ReferenceKind string

const (
	KindCategory ReferenceKind = "category"
	KindBrand    ReferenceKind = "brand"
	KindColor    ReferenceKind = "color"
	KindSize     ReferenceKind = "size"
	KindDiscount ReferenceKind = "discount"
	KindShipping ReferenceKind = "shipping"
	KindSection  ReferenceKind = "section"
)

// ReferenceKinds lists every kind the console fetches for an editing session.
var ReferenceKinds = []ReferenceKind{
	KindCategory, KindBrand, KindColor, KindSize,
	KindDiscount, KindShipping, KindSection,
}

// ParseReferenceKind validates a kind taken from a request path.
func ParseReferenceKind(s string) (ReferenceKind, error) {
	for _, k := range ReferenceKinds {
		if s == string(k) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown reference kind %q", s)
}

// ReferenceEntity is one option in a reference collection. Only ID and Name
// are common to every kind; the remaining fields are kind-specific and stay
// zero elsewhere (Hex for colors, Price for discounts and shipping rules,
// Type/StartsAt/EndsAt for discounts).
type ReferenceEntity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`

	Hex      string          `json:"hex,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Type     string          `json:"type,omitempty"`
	StartsAt *time.Time      `json:"startsAt,omitempty"`
	EndsAt   *time.Time      `json:"endsAt,omitempty"`
}

// Ref reduces the entity to the handle stored on products.
func (e ReferenceEntity) Ref() Ref {
	return Ref{ID: e.ID, Name: e.Name}
}
