package composer

import (
	"context"
	"errors"
	"sync"

	"github.com/mahin-dev/catalog-console/internal/models"
)

// Surface is the embedded rich-text editor the composer delegates the
// description document to. The composer hands the stored document to
// Initialize when a draft loads, asks for a Snapshot at save time, and calls
// Teardown when the editor unmounts. Snapshot must not be called before
// Ready reports true.
type Surface interface {
	Initialize(doc models.Document) error
	Ready() bool
	Snapshot(ctx context.Context) (models.Document, error)
	Teardown() error
}

// ErrSurfaceNotReady is returned by Snapshot before initialization.
var ErrSurfaceNotReady = errors.New("composer: rich-text surface not initialized")

// MemorySurface keeps the document in memory. It backs the console's own
// form handlers (the posted description is the snapshot) and stands in for
// the browser editor in tests.
type MemorySurface struct {
	mu    sync.Mutex
	doc   models.Document
	ready bool
}

func NewMemorySurface() *MemorySurface {
	return &MemorySurface{}
}

func (s *MemorySurface) Initialize(doc models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = append(models.Document(nil), doc...)
	s.ready = true
	return nil
}

func (s *MemorySurface) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// SetDocument replaces the held document, as user edits would.
func (s *MemorySurface) SetDocument(doc models.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = append(models.Document(nil), doc...)
}

func (s *MemorySurface) Snapshot(_ context.Context) (models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, ErrSurfaceNotReady
	}
	if s.doc == nil {
		return nil, nil
	}
	return append(models.Document(nil), s.doc...), nil
}

func (s *MemorySurface) Teardown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = nil
	s.ready = false
	return nil
}
