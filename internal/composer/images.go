package composer

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// File is a locally picked image file handed to the composer.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// PendingImage is a newly picked file held on the draft until submission.
// Key identifies it for the draft's lifetime; Preview is the reference the
// editor renders before the file ever reaches the server.
type PendingImage struct {
	Key         string
	Filename    string
	ContentType string
	Data        []byte
	Preview     string
}

// AddImages appends newly picked files to the draft. Already-retained server
// images are not touched; the two lists stay separate until submission time.
func (c *Composer) AddImages(files ...File) {
	for _, f := range files {
		key := uuid.New().String()
		c.pending = append(c.pending, PendingImage{
			Key:         key,
			Filename:    safeFilename(f.Name),
			ContentType: f.ContentType,
			Data:        f.Data,
			Preview:     "preview://" + key,
		})
	}
}

// RemoveNewImage drops a newly added image by its position in the new-image
// list only.
func (c *Composer) RemoveNewImage(i int) error {
	if i < 0 || i >= len(c.pending) {
		return fmt.Errorf("composer: new image index %d out of range", i)
	}
	c.pending = append(c.pending[:i], c.pending[i+1:]...)
	return nil
}

// RemoveExistingImage marks a server-resident image for omission from the
// next submission. Nothing is deleted upstream until that submission is
// accepted; the upstream API detaches images absent from it.
func (c *Composer) RemoveExistingImage(i int) error {
	if i < 0 || i >= len(c.existing) {
		return fmt.Errorf("composer: existing image index %d out of range", i)
	}
	c.existing = append(c.existing[:i], c.existing[i+1:]...)
	return nil
}

// ExistingImages returns the retained server-resident references, in order.
func (c *Composer) ExistingImages() []string {
	out := make([]string, 0, len(c.existing))
	for _, img := range c.existing {
		out = append(out, img.URL)
	}
	return out
}

// NewImages returns the pending attachments, in pick order.
func (c *Composer) NewImages() []PendingImage {
	return append([]PendingImage(nil), c.pending...)
}

// safeFilename slugs the base name so the upload carries a predictable,
// URL-safe filename.
func safeFilename(name string) string {
	ext := strings.ToLower(path.Ext(name))
	base := slug.Make(strings.TrimSuffix(path.Base(name), path.Ext(name)))
	if base == "" {
		base = "image"
	}
	return base + ext
}
