package booking

import "github.com/shareit/service-shareit/internal/pkg/domain"

const DefaultPageSize = 10

// Page is a from/size window. The window is snapped to a page boundary:
// from=5,size=10 reads the first page.
type Page struct {
	From int
	Size int
}

func NewPage(from, size int) (Page, error) {
	if size <= 0 {
		return Page{}, domain.NewValidationError("size must be positive")
	}
	if from < 0 {
		return Page{}, domain.NewValidationError("from must not be negative")
	}
	return Page{From: from, Size: size}, nil
}

// Index is the zero-based page number.
func (p Page) Index() int { return p.From / p.Size }

func (p Page) Offset() int { return p.Index() * p.Size }

func (p Page) Limit() int { return p.Size }
