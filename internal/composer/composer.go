// Package composer manages the editable draft of one product across the
// editor's tab groups, its image attachments, and the rich-text description,
// and flattens everything into a single submission on save.
package composer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gosimple/slug"
	"github.com/mahin-dev/catalog-console/internal/models"
	"github.com/shopspring/decimal"
)

// Scalar field names. These double as the multipart form field names the
// upstream API expects.
const (
	FieldName         = "name"
	FieldShortDesc    = "short_desc"
	FieldRegularPrice = "regular_price"
	FieldSalePrice    = "sale_price"
	FieldSKU          = "sku"
	FieldStock        = "stock"
	FieldStatus       = "status"
	FieldCurrency     = "currency"
	FieldDiscountID   = "discount_id"
)

// scalarFields is the serialization order of the scalar form fields.
var scalarFields = []string{
	FieldName, FieldShortDesc, FieldRegularPrice, FieldSalePrice,
	FieldSKU, FieldStock, FieldStatus, FieldCurrency, FieldDiscountID,
}

// Relation names a multi-select relation set on the draft. The submission
// field is the relation name plus "_id".
type Relation string

const (
	RelTaxStatus  Relation = "tax_status"
	RelShipping   Relation = "shipping"
	RelColor      Relation = "color"
	RelSize       Relation = "size"
	RelCategories Relation = "categories"
	RelBrands     Relation = "brands"
	RelSection    Relation = "section"
)

// relations is the serialization order of the relation sets.
var relations = []Relation{
	RelTaxStatus, RelShipping, RelColor, RelSize,
	RelCategories, RelBrands, RelSection,
}

// ScalarFields returns the scalar field names in serialization order.
func ScalarFields() []string {
	return append([]string(nil), scalarFields...)
}

// Relations returns the relation set names in serialization order.
func Relations() []Relation {
	return append([]Relation(nil), relations...)
}

// Mode selects the create or update submission variant.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
)

// Tab is one of the editor's field groups. Tabs are labels over the single
// draft record: switching tabs never touches field state.
type Tab int

const (
	TabGeneral Tab = iota
	TabInventory
	TabShipping
	TabAttributes
)

func (t Tab) String() string {
	switch t {
	case TabInventory:
		return "Inventory"
	case TabShipping:
		return "Shipping"
	case TabAttributes:
		return "Attributes"
	default:
		return "General"
	}
}

// Fields returns the field and relation names the tab exposes.
func (t Tab) Fields() []string {
	switch t {
	case TabInventory:
		return []string{FieldSKU, FieldStock}
	case TabShipping:
		return []string{string(RelShipping)}
	case TabAttributes:
		return []string{string(RelColor), string(RelSize)}
	default:
		return []string{FieldRegularPrice, FieldSalePrice, string(RelTaxStatus)}
	}
}

// ValidationError reports malformed local input caught before a submission
// is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Composer owns the mutable draft of a single product plus its pending image
// attachments until save or cancel. It is not safe for concurrent use; the
// caller must not issue overlapping saves for the same draft.
type Composer struct {
	id        int64
	scalars   map[string]string
	relations map[Relation][]models.Ref
	existing  []models.Image
	pending   []PendingImage
	surface   Surface
	activeTab Tab
}

// New returns an empty draft in create mode. surface may be nil when no
// rich-text editor is attached; the description then serializes empty.
func New(surface Surface) *Composer {
	c := &Composer{
		scalars:   make(map[string]string, len(scalarFields)),
		relations: make(map[Relation][]models.Ref, len(relations)),
		surface:   surface,
	}
	for _, f := range scalarFields {
		c.scalars[f] = ""
	}
	return c
}

// Load pre-populates the draft from an existing product for edit mode and
// hands the stored description to the rich-text surface. An unchanged draft
// must round-trip losslessly through BuildSubmission.
func (c *Composer) Load(p *models.Product) error {
	c.id = p.ID
	c.scalars[FieldName] = p.Name
	c.scalars[FieldShortDesc] = p.ShortDesc
	c.scalars[FieldSKU] = p.SKU
	c.scalars[FieldStock] = strconv.Itoa(p.Stock)
	c.scalars[FieldStatus] = p.Status
	c.scalars[FieldCurrency] = p.Currency
	if p.RegularPrice.IsZero() {
		c.scalars[FieldRegularPrice] = ""
	} else {
		c.scalars[FieldRegularPrice] = p.RegularPrice.String()
	}
	if p.SalePrice.IsZero() {
		c.scalars[FieldSalePrice] = ""
	} else {
		c.scalars[FieldSalePrice] = p.SalePrice.String()
	}
	if p.DiscountID != 0 {
		c.scalars[FieldDiscountID] = strconv.FormatInt(p.DiscountID, 10)
	} else {
		c.scalars[FieldDiscountID] = ""
	}

	c.relations[RelTaxStatus] = cloneRefs(p.TaxStatus)
	c.relations[RelShipping] = cloneRefs(p.Shipping)
	c.relations[RelColor] = cloneRefs(p.Colors)
	c.relations[RelSize] = cloneRefs(p.Sizes)
	c.relations[RelCategories] = cloneRefs(p.Categories)
	c.relations[RelBrands] = cloneRefs(p.Brands)
	c.relations[RelSection] = cloneRefs(p.Sections)

	c.existing = append([]models.Image(nil), p.Images...)
	c.pending = nil

	if c.surface != nil {
		return c.surface.Initialize(p.Description)
	}
	return nil
}

// ID returns the loaded product's id, zero in create mode.
func (c *Composer) ID() int64 { return c.id }

// SetField updates one scalar draft field.
func (c *Composer) SetField(name, value string) error {
	if _, ok := c.scalars[name]; !ok {
		return fmt.Errorf("composer: unknown field %q", name)
	}
	c.scalars[name] = value
	return nil
}

// Field returns the current value of a scalar draft field.
func (c *Composer) Field(name string) string { return c.scalars[name] }

// SetRelation replaces a relation set with the given selection. The new list
// fully replaces the old one; duplicates by id are dropped, keeping the
// first occurrence so selection order survives.
func (c *Composer) SetRelation(rel Relation, selected []models.Ref) error {
	if _, ok := c.relationSlot(rel); !ok {
		return fmt.Errorf("composer: unknown relation %q", rel)
	}
	seen := make(map[int64]bool, len(selected))
	out := make([]models.Ref, 0, len(selected))
	for _, r := range selected {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	c.relations[rel] = out
	return nil
}

// Relation returns the current selection of a relation set.
func (c *Composer) Relation(rel Relation) []models.Ref { return c.relations[rel] }

func (c *Composer) relationSlot(rel Relation) (Relation, bool) {
	for _, r := range relations {
		if r == rel {
			return r, true
		}
	}
	return "", false
}

// SelectTab makes the given field group active. Field state of every other
// tab is retained untouched.
func (c *Composer) SelectTab(t Tab) { c.activeTab = t }

func (c *Composer) ActiveTab() Tab { return c.activeTab }

// Teardown releases the rich-text surface when the editor unmounts. The
// draft itself is unaffected.
func (c *Composer) Teardown() error {
	if c.surface == nil {
		return nil
	}
	return c.surface.Teardown()
}

// Reset discards the draft and returns the composer to an empty create-mode
// state. Call this only after the upstream API has confirmed the save; on
// failure the draft stays intact so the user can correct and resubmit.
func (c *Composer) Reset() {
	c.id = 0
	for _, f := range scalarFields {
		c.scalars[f] = ""
	}
	c.relations = make(map[Relation][]models.Ref, len(relations))
	c.existing = nil
	c.pending = nil
	c.activeTab = TabGeneral
}

// BuildSubmission flattens the draft into the multipart payload. In update
// mode the submission carries the record's id for routing. The draft itself
// is left untouched, whatever the outcome.
func (c *Composer) BuildSubmission(ctx context.Context, mode Mode) (*models.Submission, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	if mode == ModeUpdate && c.id == 0 {
		return nil, fmt.Errorf("composer: update submission without a loaded product")
	}

	sub := &models.Submission{}
	if mode == ModeUpdate {
		sub.ID = c.id
	}

	for _, f := range scalarFields {
		sub.Fields = append(sub.Fields, models.FormField{Name: f, Value: c.scalars[f]})
	}
	sub.Fields = append(sub.Fields, models.FormField{
		Name:  "slug",
		Value: slug.Make(c.scalars[FieldName]),
	})
	sub.Fields = append(sub.Fields, models.FormField{
		Name:  "description",
		Value: c.descriptionSnapshot(ctx),
	})
	for _, rel := range relations {
		sub.Fields = append(sub.Fields, models.FormField{
			Name:  string(rel) + "_id",
			Value: idList(c.relations[rel]),
		})
	}

	// Retained server images first, in their original relative order, so
	// upstream ordinality is preserved; new files append after them.
	for _, img := range c.existing {
		sub.Images = append(sub.Images, img.URL)
	}
	for _, p := range c.pending {
		sub.Attachments = append(sub.Attachments, models.Attachment{
			Key:         p.Key,
			Filename:    p.Filename,
			ContentType: p.ContentType,
			Data:        p.Data,
		})
	}

	return sub, nil
}

// descriptionSnapshot asks the surface for the current document. A missing
// or failed surface must not abort the save; the document is then empty.
func (c *Composer) descriptionSnapshot(ctx context.Context) string {
	if c.surface == nil || !c.surface.Ready() {
		return "{}"
	}
	doc, err := c.surface.Snapshot(ctx)
	if err != nil || doc == nil {
		return "{}"
	}
	return string(doc)
}

func (c *Composer) validate() error {
	if c.scalars[FieldName] == "" {
		return &ValidationError{Field: FieldName, Reason: "required"}
	}
	if v := c.scalars[FieldStock]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return &ValidationError{Field: FieldStock, Reason: "must be a non-negative integer"}
		}
	}
	regular, err := parsePrice(FieldRegularPrice, c.scalars[FieldRegularPrice])
	if err != nil {
		return err
	}
	sale, err := parsePrice(FieldSalePrice, c.scalars[FieldSalePrice])
	if err != nil {
		return err
	}
	if regular != nil && sale != nil && sale.Cmp(*regular) > 0 {
		return &ValidationError{Field: FieldSalePrice, Reason: "must not exceed regular price"}
	}
	if v := c.scalars[FieldStatus]; v != "" && !models.ValidStatus(v) {
		return &ValidationError{Field: FieldStatus, Reason: "unknown status"}
	}
	if v := c.scalars[FieldCurrency]; v != "" && !models.ValidCurrency(v) {
		return &ValidationError{Field: FieldCurrency, Reason: "unknown currency"}
	}
	if v := c.scalars[FieldDiscountID]; v != "" {
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return &ValidationError{Field: FieldDiscountID, Reason: "must be an id"}
		}
	}
	return nil
}

func parsePrice(field, v string) (*decimal.Decimal, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, &ValidationError{Field: field, Reason: "must be a decimal amount"}
	}
	if d.IsNegative() {
		return nil, &ValidationError{Field: field, Reason: "must not be negative"}
	}
	return &d, nil
}

func idList(refs []models.Ref) string {
	ids := make([]int64, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	b, _ := json.Marshal(ids)
	return string(b)
}

func cloneRefs(refs []models.Ref) []models.Ref {
	if refs == nil {
		return nil
	}
	return append([]models.Ref(nil), refs...)
}
