// Package index implements a flat brute-force L2 vector index with metadata
// kept in lock-step: position i in the vector store always corresponds to
// position i in the book list, and the two only ever grow together.
//
// Brute force is deliberate. At catalog scale (thousands of books) a linear
// scan is faster than maintaining an ANN structure and keeps persistence
// trivial.
package index

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/shelfdex/shelfdex/internal/domain"
)

// Flat is a brute-force L2 index. Searches take shared access; Add and Save
// take exclusive access because index mutation happens only at build time.
type Flat struct {
	mu      sync.RWMutex
	dim     int
	vectors [][]float32
	books   []domain.Book
}

var _ domain.VectorIndexProvider = (*Flat)(nil)

// New creates an empty index for vectors of the given dimension.
func New(dim int) (*Flat, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", dim)
	}
	return &Flat{dim: dim}, nil
}

// Dim returns the embedding dimension.
func (f *Flat) Dim() int { return f.dim }

// Len returns the number of indexed books.
func (f *Flat) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.books)
}

// Books returns a copy of all catalog metadata in index order.
func (f *Flat) Books() []domain.Book {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]domain.Book, len(f.books))
	copy(out, f.books)
	return out
}

// Add appends vectors and their books atomically: on any validation error
// neither side grows. Fails with ErrDimensionMismatch or ErrLengthMismatch.
func (f *Flat) Add(vectors [][]float32, books []domain.Book) error {
	if len(vectors) != len(books) {
		return fmt.Errorf("%w: %d vectors, %d books",
			domain.ErrLengthMismatch, len(vectors), len(books))
	}
	for i, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("%w: vector %d has dim %d, index expects %d",
				domain.ErrDimensionMismatch, i, len(v), f.dim)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.vectors = append(f.vectors, vectors...)
	f.books = append(f.books, books...)
	return nil
}

// Search returns up to k nearest hits by L2 distance, nearest first.
// Fewer than k hits come back when the index is small; an empty index or
// non-positive k yields an empty slice.
func (f *Flat) Search(vector []float32, k int) []domain.SearchHit {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if k <= 0 || len(f.vectors) == 0 || len(vector) != f.dim {
		return nil
	}

	hits := make([]domain.SearchHit, 0, len(f.vectors))
	for i, v := range f.vectors {
		hits = append(hits, domain.SearchHit{
			Book:     f.books[i],
			Distance: l2(vector, v),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
