// Package listing derives the product table view: a filtered, sorted,
// paginated slice of the in-memory product array. ComputeView is pure and is
// cheap enough to run on every keystroke; the Engine only tracks the query.
package listing

import (
	"errors"
	"sort"
	"strings"

	"github.com/mahin-dev/catalog-console/internal/models"
)

// SortDir is the sort direction of the listing.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// Field is a sortable column of the product table.
type Field string

const (
	ByName         Field = "name"
	BySKU          Field = "sku"
	ByCategory     Field = "category" // first associated category's name
	ByRegularPrice Field = "regular_price"
	BySalePrice    Field = "sale_price"
	ByStock        Field = "stock"
	ByStatus       Field = "status"
)

// ErrInvalidPageSize reports a query built with a non-positive page size.
// This is a programmer error; callers must never construct such a query.
var ErrInvalidPageSize = errors.New("listing: page size must be positive")

// Query captures the user's current view of the product table.
// Page is 1-based and clamped to the computed page range by ComputeView.
type Query struct {
	SearchTerm string
	PageSize   int
	Page       int
	SortField  Field
	SortDir    SortDir
}

// DefaultQuery matches the table's initial state.
func DefaultQuery() Query {
	return Query{PageSize: 5, Page: 1, SortField: ByName, SortDir: SortAsc}
}

// View is the result of one computation: the rows of the current page plus
// the counts the pagination chrome needs.
type View struct {
	Rows      []models.Product
	Total     int
	PageCount int
	Page      int
}

// Engine owns the query and applies the table's interaction rules. Changing
// the search term, sort field, or page size resets to page 1 so the view
// never lands on an out-of-range page after the result set shrinks.
type Engine struct {
	query Query
}

func NewEngine() *Engine {
	return &Engine{query: DefaultQuery()}
}

func (e *Engine) Query() Query { return e.query }

func (e *Engine) SetSearchTerm(term string) {
	e.query.SearchTerm = term
	e.query.Page = 1
}

func (e *Engine) SetSortField(f Field) {
	e.query.SortField = f
	e.query.Page = 1
}

func (e *Engine) SetPageSize(n int) {
	e.query.PageSize = n
	e.query.Page = 1
}

func (e *Engine) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	e.query.Page = n
}

// ToggleSort implements spreadsheet column-header behaviour: clicking the
// active column flips direction, switching columns always starts ascending.
func (e *Engine) ToggleSort(f Field) {
	if e.query.SortField == f {
		if e.query.SortDir == SortAsc {
			e.query.SortDir = SortDesc
		} else {
			e.query.SortDir = SortAsc
		}
	} else {
		e.query.SortField = f
		e.query.SortDir = SortAsc
	}
	e.query.Page = 1
}

// ComputeView filters, sorts, and paginates products according to q. It is a
// pure function of its inputs; products is never mutated.
func ComputeView(products []models.Product, q Query) (View, error) {
	if q.PageSize <= 0 {
		return View{}, ErrInvalidPageSize
	}

	matched := filter(products, q.SearchTerm)

	// Stable sort, with desc reversing the comparator rather than the final
	// slice so ties keep their prior relative order in both directions.
	less := comparator(q.SortField)
	sort.SliceStable(matched, func(i, j int) bool {
		if q.SortDir == SortDesc {
			return less(&matched[j], &matched[i])
		}
		return less(&matched[i], &matched[j])
	})

	total := len(matched)
	pageCount := (total + q.PageSize - 1) / q.PageSize
	if pageCount < 1 {
		pageCount = 1
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}

	start := (page - 1) * q.PageSize
	end := start + q.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return View{Rows: matched[start:end], Total: total, PageCount: pageCount, Page: page}, nil
}

// filter keeps products whose name, SKU, or first category name contains the
// term, case-insensitively. An empty term matches everything.
func filter(products []models.Product, term string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(term))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.SKU), q) ||
			(len(p.Categories) > 0 && strings.Contains(strings.ToLower(p.Categories[0].Name), q)) {
			out = append(out, p)
		}
	}
	return out
}

func comparator(f Field) func(a, b *models.Product) bool {
	switch f {
	case BySKU:
		return func(a, b *models.Product) bool {
			return strings.ToLower(a.SKU) < strings.ToLower(b.SKU)
		}
	case ByCategory:
		return func(a, b *models.Product) bool {
			return strings.ToLower(a.FirstCategory()) < strings.ToLower(b.FirstCategory())
		}
	case ByRegularPrice:
		return func(a, b *models.Product) bool {
			return a.RegularPrice.Cmp(b.RegularPrice) < 0
		}
	case BySalePrice:
		return func(a, b *models.Product) bool {
			return a.SalePrice.Cmp(b.SalePrice) < 0
		}
	case ByStock:
		return func(a, b *models.Product) bool {
			return a.Stock < b.Stock
		}
	case ByStatus:
		return func(a, b *models.Product) bool {
			return strings.ToLower(a.Status) < strings.ToLower(b.Status)
		}
	default: // ByName
		return func(a, b *models.Product) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	}
}
