// Package binding holds the ordered article list shown by a rendering
// surface and tells registered surfaces when they have to re-read it.
package binding

import (
	"fmt"
	"sync"

	"uptotimenews/internal/model"
)

// Surface is a rendering surface. DataChanged carries no payload; the
// surface re-reads Count and RecordAt for whatever it displays.
type Surface interface {
	DataChanged()
}

// SurfaceFunc adapts a plain function to Surface.
type SurfaceFunc func()

func (f SurfaceFunc) DataChanged() { f() }

// IndexError is the panic value of RecordAt when called outside [0, Count).
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("binding: record index %d out of range [0,%d)", e.Index, e.Count)
}

type ListBinding struct {
	mu       sync.RWMutex
	articles []model.Article

	surfacesMu sync.Mutex
	surfaces   []attachedSurface
	nextID     int
}

type attachedSurface struct {
	id      int
	surface Surface
}

func New() *ListBinding {
	return &ListBinding{
		articles: make([]model.Article, 0),
	}
}

func (b *ListBinding) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.articles)
}

// RecordAt returns the record at index and panics with *IndexError when
// index is out of range. Use Lookup when the bound is not known to hold.
func (b *ListBinding) RecordAt(index int) model.Article {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if index < 0 || index >= len(b.articles) {
		panic(&IndexError{Index: index, Count: len(b.articles)})
	}
	return b.articles[index]
}

func (b *ListBinding) Lookup(index int) (model.Article, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if index < 0 || index >= len(b.articles) {
		return model.Article{}, false
	}
	return b.articles[index], true
}

// Snapshot returns a copy of the current contents.
func (b *ListBinding) Snapshot() []model.Article {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]model.Article, len(b.articles))
	copy(result, b.articles)
	return result
}

// ReplaceAll installs a copy of articles as the whole contents and then
// notifies every surface once.
func (b *ListBinding) ReplaceAll(articles []model.Article) {
	next := make([]model.Article, len(articles))
	copy(next, articles)

	b.mu.Lock()
	b.articles = next
	b.mu.Unlock()

	b.NotifyChanged()
}

// NotifyChanged calls DataChanged on every attached surface. It is called
// without holding the list lock, so surfaces may read the binding from
// inside DataChanged.
func (b *ListBinding) NotifyChanged() {
	b.surfacesMu.Lock()
	surfaces := make([]attachedSurface, len(b.surfaces))
	copy(surfaces, b.surfaces)
	b.surfacesMu.Unlock()

	for _, s := range surfaces {
		s.surface.DataChanged()
	}
}

// Attach registers s and returns a function that removes it again.
func (b *ListBinding) Attach(s Surface) (detach func()) {
	b.surfacesMu.Lock()
	id := b.nextID
	b.nextID++
	b.surfaces = append(b.surfaces, attachedSurface{id: id, surface: s})
	b.surfacesMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.surfacesMu.Lock()
			defer b.surfacesMu.Unlock()
			for i, a := range b.surfaces {
				if a.id == id {
					b.surfaces = append(b.surfaces[:i:i], b.surfaces[i+1:]...)
					return
				}
			}
		})
	}
}
