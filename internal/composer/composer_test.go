package composer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mahin-dev/catalog-console/internal/models"
	"github.com/shopspring/decimal"
)

func sampleProduct() *models.Product {
	return &models.Product{
		ID:           42,
		Name:         "Red Shoe",
		ShortDesc:    "A very red shoe",
		SKU:          "S1",
		Stock:        5,
		RegularPrice: decimal.RequireFromString("49.99"),
		SalePrice:    decimal.RequireFromString("39.99"),
		Status:       models.StatusPublished,
		Currency:     "USD",
		Description:  models.Document(`{"blocks":[{"type":"header","data":{"text":"Specs"}}]}`),
		TaxStatus:    []models.Ref{{ID: 1, Name: "Taxable"}},
		Shipping:     []models.Ref{{ID: 2, Name: "120"}},
		Colors:       []models.Ref{{ID: 3, Name: "Red"}, {ID: 4, Name: "Blue"}},
		Sizes:        []models.Ref{{ID: 5, Name: "Large"}},
		Categories:   []models.Ref{{ID: 6, Name: "Footwear"}},
		Brands:       []models.Ref{{ID: 7, Name: "Acme"}},
		Sections:     []models.Ref{{ID: 8, Name: "Featured"}},
		DiscountID:   9,
		Images: []models.Image{
			{URL: "/uploads/a.jpg"},
			{URL: "/uploads/b.jpg"},
			{URL: "/uploads/c.jpg"},
		},
	}
}

func loadedComposer(t *testing.T) *Composer {
	t.Helper()
	c := New(NewMemorySurface())
	if err := c.Load(sampleProduct()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}

func TestBuildSubmission_RoundTripIdempotence(t *testing.T) {
	p := sampleProduct()
	c := loadedComposer(t)

	sub, err := c.BuildSubmission(context.Background(), ModeUpdate)
	if err != nil {
		t.Fatalf("BuildSubmission: %v", err)
	}
	if sub.ID != p.ID {
		t.Fatalf("got id %d, want %d", sub.ID, p.ID)
	}

	scalars := map[string]string{
		FieldName:         "Red Shoe",
		FieldShortDesc:    "A very red shoe",
		FieldRegularPrice: "49.99",
		FieldSalePrice:    "39.99",
		FieldSKU:          "S1",
		FieldStock:        "5",
		FieldStatus:       "published",
		FieldCurrency:     "USD",
		FieldDiscountID:   "9",
	}
	for name, want := range scalars {
		if got := sub.Field(name); got != want {
			t.Fatalf("field %s: got %q, want %q", name, got, want)
		}
	}

	idLists := map[string]string{
		"tax_status_id": "[1]",
		"shipping_id":   "[2]",
		"color_id":      "[3,4]",
		"size_id":       "[5]",
		"categories_id": "[6]",
		"brands_id":     "[7]",
		"section_id":    "[8]",
	}
	for name, want := range idLists {
		if got := sub.Field(name); got != want {
			t.Fatalf("field %s: got %q, want %q", name, got, want)
		}
	}

	if got := sub.Field("description"); got != string(p.Description) {
		t.Fatalf("description not round-tripped: got %q", got)
	}
	if got := sub.Field("slug"); got != "red-shoe" {
		t.Fatalf("slug: got %q, want %q", got, "red-shoe")
	}

	if len(sub.Images) != 3 || sub.Images[0] != "/uploads/a.jpg" || sub.Images[2] != "/uploads/c.jpg" {
		t.Fatalf("image refs not round-tripped: %v", sub.Images)
	}
	if len(sub.Attachments) != 0 {
		t.Fatalf("unexpected attachments on an unchanged draft: %d", len(sub.Attachments))
	}
}

func TestBuildSubmission_CreateOmitsID(t *testing.T) {
	c := New(nil)
	if err := c.SetField(FieldName, "New Thing"); err != nil {
		t.Fatalf("SetField: %v", err)
	}

	sub, err := c.BuildSubmission(context.Background(), ModeCreate)
	if err != nil {
		t.Fatalf("BuildSubmission: %v", err)
	}
	if sub.ID != 0 {
		t.Fatalf("create submission carries id %d", sub.ID)
	}
}

func TestBuildSubmission_UpdateWithoutLoadFails(t *testing.T) {
	c := New(nil)
	c.SetField(FieldName, "x")
	if _, err := c.BuildSubmission(context.Background(), ModeUpdate); err == nil {
		t.Fatal("expected error for update without a loaded product")
	}
}

func TestTabIsolation(t *testing.T) {
	c := loadedComposer(t)

	c.SelectTab(TabGeneral)
	c.SetField(FieldRegularPrice, "120.50")

	c.SelectTab(TabInventory)
	c.SetField(FieldSKU, "S1-REV")

	c.SelectTab(TabAttributes)
	c.SetRelation(RelColor, []models.Ref{{ID: 3, Name: "Red"}})

	c.SelectTab(TabGeneral)
	if got := c.Field(FieldRegularPrice); got != "120.50" {
		t.Fatalf("general tab edit lost on switch: got %q", got)
	}
	if got := c.Field(FieldSKU); got != "S1-REV" {
		t.Fatalf("inventory tab edit lost: got %q", got)
	}
	if got := c.Relation(RelColor); len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("attributes tab edit lost: %v", got)
	}
	if c.ActiveTab() != TabGeneral {
		t.Fatalf("got active tab %v, want General", c.ActiveTab())
	}
}

func TestTabFields(t *testing.T) {
	if f := TabInventory.Fields(); f[0] != FieldSKU || f[1] != FieldStock {
		t.Fatalf("inventory tab fields: %v", f)
	}
	if f := TabShipping.Fields(); len(f) != 1 || f[0] != string(RelShipping) {
		t.Fatalf("shipping tab fields: %v", f)
	}
}

func TestSetRelation_ReplacesAndDedups(t *testing.T) {
	c := loadedComposer(t)

	err := c.SetRelation(RelColor, []models.Ref{
		{ID: 4, Name: "Blue"},
		{ID: 4, Name: "Blue"},
		{ID: 10, Name: "Green"},
	})
	if err != nil {
		t.Fatalf("SetRelation: %v", err)
	}

	got := c.Relation(RelColor)
	if len(got) != 2 || got[0].ID != 4 || got[1].ID != 10 {
		t.Fatalf("replacement semantics violated: %v", got)
	}

	if err := c.SetRelation(Relation("bogus"), nil); err == nil {
		t.Fatal("expected error for unknown relation")
	}
}

func TestImageListSeparation(t *testing.T) {
	c := loadedComposer(t)

	if err := c.RemoveExistingImage(1); err != nil {
		t.Fatalf("RemoveExistingImage: %v", err)
	}
	c.AddImages(
		File{Name: "front.png", ContentType: "image/png", Data: []byte("png1")},
		File{Name: "back.png", ContentType: "image/png", Data: []byte("png2")},
	)

	sub, err := c.BuildSubmission(context.Background(), ModeUpdate)
	if err != nil {
		t.Fatalf("BuildSubmission: %v", err)
	}

	// (original 3 - 1) retained + 2 new, retained first in original order.
	if len(sub.Images)+len(sub.Attachments) != 4 {
		t.Fatalf("got %d+%d entries, want 4", len(sub.Images), len(sub.Attachments))
	}
	if sub.Images[0] != "/uploads/a.jpg" || sub.Images[1] != "/uploads/c.jpg" {
		t.Fatalf("retained order broken: %v", sub.Images)
	}
	if sub.Attachments[0].Filename != "front.png" || sub.Attachments[1].Filename != "back.png" {
		t.Fatalf("new images out of order: %v, %v", sub.Attachments[0].Filename, sub.Attachments[1].Filename)
	}
}

func TestRemoveNewImage_DoesNotTouchExisting(t *testing.T) {
	c := loadedComposer(t)
	c.AddImages(File{Name: "x.jpg"}, File{Name: "y.jpg"})

	if err := c.RemoveNewImage(0); err != nil {
		t.Fatalf("RemoveNewImage: %v", err)
	}
	if got := c.NewImages(); len(got) != 1 || got[0].Filename != "y.jpg" {
		t.Fatalf("new images: %v", got)
	}
	if got := c.ExistingImages(); len(got) != 3 {
		t.Fatalf("existing images touched: %v", got)
	}

	if err := c.RemoveNewImage(5); err == nil {
		t.Fatal("expected out-of-range error")
	}
	if err := c.RemoveExistingImage(-1); err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func TestAddImages_GeneratesKeysAndPreviews(t *testing.T) {
	c := New(nil)
	c.AddImages(File{Name: "My Summer Photo.PNG", ContentType: "image/png"})

	got := c.NewImages()
	if len(got) != 1 {
		t.Fatalf("got %d pending images, want 1", len(got))
	}
	if got[0].Filename != "my-summer-photo.png" {
		t.Fatalf("filename not slugged: %q", got[0].Filename)
	}
	if got[0].Key == "" || !strings.HasPrefix(got[0].Preview, "preview://") {
		t.Fatalf("missing key or preview: %+v", got[0])
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Composer)
		field string
	}{
		{"missing name", func(c *Composer) { c.SetField(FieldName, "") }, FieldName},
		{"bad stock", func(c *Composer) { c.SetField(FieldStock, "many") }, FieldStock},
		{"negative stock", func(c *Composer) { c.SetField(FieldStock, "-3") }, FieldStock},
		{"bad price", func(c *Composer) { c.SetField(FieldRegularPrice, "1.2.3") }, FieldRegularPrice},
		{"sale above regular", func(c *Composer) { c.SetField(FieldSalePrice, "99.99") }, FieldSalePrice},
		{"unknown status", func(c *Composer) { c.SetField(FieldStatus, "retired") }, FieldStatus},
		{"unknown currency", func(c *Composer) { c.SetField(FieldCurrency, "XYZ") }, FieldCurrency},
		{"bad discount id", func(c *Composer) { c.SetField(FieldDiscountID, "ten") }, FieldDiscountID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := loadedComposer(t)
			tt.setup(c)

			_, err := c.BuildSubmission(context.Background(), ModeUpdate)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("got %v, want ValidationError", err)
			}
			if vErr.Field != tt.field {
				t.Fatalf("got field %q, want %q", vErr.Field, tt.field)
			}
		})
	}
}

func TestDraftSurvivesFailedBuild(t *testing.T) {
	c := loadedComposer(t)
	c.SetField(FieldName, "")

	if _, err := c.BuildSubmission(context.Background(), ModeUpdate); err == nil {
		t.Fatal("expected validation error")
	}
	// Unrelated fields must still be there so the user can correct and
	// resubmit.
	if got := c.Field(FieldSKU); got != "S1" {
		t.Fatalf("draft cleared on failure: sku %q", got)
	}

	c.SetField(FieldName, "Red Shoe")
	if _, err := c.BuildSubmission(context.Background(), ModeUpdate); err != nil {
		t.Fatalf("resubmission after fix failed: %v", err)
	}
}

func TestDescriptionFallsBackWhenSurfaceUnavailable(t *testing.T) {
	// No surface at all.
	c := New(nil)
	c.SetField(FieldName, "x")
	sub, err := c.BuildSubmission(context.Background(), ModeCreate)
	if err != nil {
		t.Fatalf("BuildSubmission: %v", err)
	}
	if got := sub.Field("description"); got != "{}" {
		t.Fatalf("nil surface: got %q, want {}", got)
	}

	// Surface present but never initialized: save must not abort.
	c = New(NewMemorySurface())
	c.SetField(FieldName, "x")
	sub, err = c.BuildSubmission(context.Background(), ModeCreate)
	if err != nil {
		t.Fatalf("BuildSubmission: %v", err)
	}
	if got := sub.Field("description"); got != "{}" {
		t.Fatalf("unready surface: got %q, want {}", got)
	}
}

func TestSurfaceLifecycle(t *testing.T) {
	s := NewMemorySurface()
	if s.Ready() {
		t.Fatal("ready before initialization")
	}
	if _, err := s.Snapshot(context.Background()); !errors.Is(err, ErrSurfaceNotReady) {
		t.Fatalf("got %v, want ErrSurfaceNotReady", err)
	}

	doc := models.Document(`{"blocks":[]}`)
	if err := s.Initialize(doc); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	got, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if string(got) != string(doc) {
		t.Fatalf("document not round-tripped: %s", got)
	}

	if err := s.Teardown(); err != nil {
		t.Fatalf("Teardown: %v", err)
	}
	if s.Ready() {
		t.Fatal("still ready after teardown")
	}
}

func TestComposerTeardownReleasesSurface(t *testing.T) {
	s := NewMemorySurface()
	c := New(s)
	if err := c.Load(sampleProduct()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !s.Ready() {
		t.Fatal("surface not initialized by Load")
	}

	if err := c.Teardown(); err != nil {
		t.Fatalf("Teardown: %v", err)
	}
	if s.Ready() {
		t.Fatal("surface still ready after composer teardown")
	}
	// The draft outlives the surface.
	if got := c.Field(FieldName); got != "Red Shoe" {
		t.Fatalf("draft cleared by teardown: name %q", got)
	}

	// A composer without a surface tears down as a no-op.
	if err := New(nil).Teardown(); err != nil {
		t.Fatalf("nil-surface teardown: %v", err)
	}
}

func TestReset(t *testing.T) {
	c := loadedComposer(t)
	c.AddImages(File{Name: "x.jpg"})
	c.SelectTab(TabShipping)

	c.Reset()

	if c.ID() != 0 || c.Field(FieldName) != "" {
		t.Fatalf("draft not cleared: id=%d name=%q", c.ID(), c.Field(FieldName))
	}
	if len(c.ExistingImages()) != 0 || len(c.NewImages()) != 0 {
		t.Fatal("image lists not cleared")
	}
	if c.ActiveTab() != TabGeneral {
		t.Fatalf("active tab not reset: %v", c.ActiveTab())
	}
}
