package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mahin-dev/catalog-console/internal/composer"
	"github.com/mahin-dev/catalog-console/internal/gateway"
	"github.com/mahin-dev/catalog-console/internal/listing"
	"github.com/mahin-dev/catalog-console/internal/models"
)

// queryFromRequest builds the listing query from the request's view
// parameters. The engine's reset rules apply: page is set last so a page
// handed in together with a new search term survives only if still in range.
func queryFromRequest(c *gin.Context) (listing.Query, error) {
	e := listing.NewEngine()

	if s := c.Query("search"); s != "" {
		e.SetSearchTerm(s)
	}
	if f := c.Query("sort"); f != "" {
		e.SetSortField(listing.Field(f))
	}
	if v := c.Query("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return listing.Query{}, fmt.Errorf("per_page must be a positive integer")
		}
		e.SetPageSize(n)
	}
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return listing.Query{}, fmt.Errorf("page must be an integer")
		}
		e.SetPage(n)
	}

	q := e.Query()
	if c.Query("dir") == string(listing.SortDesc) {
		q.SortDir = listing.SortDesc
	}
	return q, nil
}

// ListProducts serves GET /v1/products: the filtered, sorted page of the
// session's product array.
func (h *Handlers) ListProducts(c *gin.Context) {
	q, err := queryFromRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	refresh := c.Query("refresh") == "1" || c.Query("refresh") == "true"
	products, err := h.sessionProducts(c.Request.Context(), refresh)
	if err != nil {
		respondGatewayError(c, err)
		return
	}

	view, err := listing.ComputeView(products, q)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":  view.Rows,
		"total":     view.Total,
		"pageCount": view.PageCount,
		"page":      view.Page,
	})
}

// GetProduct serves GET /v1/products/:id, the record the edit form loads.
func (h *Handlers) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	p, err := h.loadProduct(c, id)
	if err != nil {
		respondGatewayError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

// CreateProduct serves POST /v1/products: rebuild the editor's draft from
// the multipart form, flatten it, and forward the submission upstream.
func (h *Handlers) CreateProduct(c *gin.Context) {
	cmp, err := h.draftFromForm(c, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer cmp.Teardown()

	sub, err := cmp.BuildSubmission(c.Request.Context(), composer.ModeCreate)
	if err != nil {
		respondComposerError(c, err)
		return
	}

	created, err := h.Gateway.CreateProduct(c.Request.Context(), sub)
	if err != nil {
		// The browser keeps its form state; nothing is cleared on failure.
		respondGatewayError(c, err)
		return
	}

	h.storeProduct(*created)
	c.JSON(http.StatusCreated, gin.H{"message": "Product saved", "product": created})
}

// UpdateProduct serves PUT /v1/products/:id. The draft starts from the
// stored record so an untouched form round-trips losslessly.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	base, err := h.loadProduct(c, id)
	if err != nil {
		respondGatewayError(c, err)
		return
	}

	cmp, err := h.draftFromForm(c, base)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer cmp.Teardown()

	sub, err := cmp.BuildSubmission(c.Request.Context(), composer.ModeUpdate)
	if err != nil {
		respondComposerError(c, err)
		return
	}

	updated, err := h.Gateway.UpdateProduct(c.Request.Context(), id, sub)
	if err != nil {
		respondGatewayError(c, err)
		return
	}

	h.storeProduct(*updated)
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": updated})
}

// DeleteProduct serves DELETE /v1/products/:id.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.Gateway.DeleteProduct(c.Request.Context(), id); err != nil {
		respondGatewayError(c, err)
		return
	}

	h.dropProduct(id)
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// loadProduct prefers the session array and falls back to the upstream API.
func (h *Handlers) loadProduct(c *gin.Context, id int64) (*models.Product, error) {
	if _, err := h.sessionProducts(c.Request.Context(), false); err != nil {
		return nil, err
	}
	if p, ok := h.findProduct(id); ok {
		return &p, nil
	}
	return h.Gateway.GetProduct(c.Request.Context(), id)
}

// draftFromForm reconstructs the editor's composer state from the posted
// multipart form. base is nil in create mode.
func (h *Handlers) draftFromForm(c *gin.Context, base *models.Product) (*composer.Composer, error) {
	surface := composer.NewMemorySurface()
	cmp := composer.New(surface)

	if base != nil {
		if err := cmp.Load(base); err != nil {
			return nil, err
		}
	} else if err := surface.Initialize(nil); err != nil {
		return nil, err
	}

	if desc, ok := c.GetPostForm("description"); ok && desc != "" {
		surface.SetDocument(models.Document(desc))
	}

	for _, name := range composer.ScalarFields() {
		if v, ok := c.GetPostForm(name); ok {
			if err := cmp.SetField(name, v); err != nil {
				return nil, err
			}
		}
	}

	for _, rel := range composer.Relations() {
		v, ok := c.GetPostForm(string(rel) + "_id")
		if !ok || v == "" {
			continue
		}
		var refs []models.Ref
		if err := json.Unmarshal([]byte(v), &refs); err != nil {
			return nil, fmt.Errorf("malformed %s_id list", rel)
		}
		if err := cmp.SetRelation(rel, refs); err != nil {
			return nil, err
		}
	}

	// A posted "images" list names which server-resident references survive;
	// everything else is marked for omission from the submission.
	if v, ok := c.GetPostForm("images"); ok {
		var keep []string
		if err := json.Unmarshal([]byte(v), &keep); err != nil {
			return nil, fmt.Errorf("malformed images list")
		}
		keepSet := make(map[string]bool, len(keep))
		for _, u := range keep {
			keepSet[u] = true
		}
		existing := cmp.ExistingImages()
		for i := len(existing) - 1; i >= 0; i-- {
			if !keepSet[existing[i]] {
				if err := cmp.RemoveExistingImage(i); err != nil {
					return nil, err
				}
			}
		}
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["images[]"] {
			f, err := fh.Open()
			if err != nil {
				return nil, fmt.Errorf("reading upload %s: %w", fh.Filename, err)
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("reading upload %s: %w", fh.Filename, err)
			}
			cmp.AddImages(composer.File{
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}

	return cmp, nil
}

func respondComposerError(c *gin.Context, err error) {
	var vErr *composer.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "field": vErr.Field})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// respondGatewayError converts an upstream failure into the console's JSON
// error shape. Client errors keep their status so the form can react;
// anything else is a bad gateway.
func respondGatewayError(c *gin.Context, err error) {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		status := http.StatusBadGateway
		if gwErr.Status >= 400 && gwErr.Status < 500 {
			status = gwErr.Status
		}
		c.JSON(status, gin.H{"error": "upstream rejected the request", "details": gwErr.Body})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}
