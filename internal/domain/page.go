package domain

import (
	"fmt"
	"math"
)

const (
	DefaultPageNo   = 1
	DefaultPageSize = 20
)

var allowedPageSizes = []int{10, 20, 50, 100}

// Page is a validated 1-based page request.
type Page struct {
	No   int
	Size int
}

// NewPage validates page parameters; zero values fall back to the defaults.
func NewPage(no, size int) (Page, error) {
	if no == 0 {
		no = DefaultPageNo
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if no < 1 {
		return Page{}, ValidationFailed("page_no starts from 1")
	}
	if !allowedPageSize(size) {
		return Page{}, ValidationFailed(fmt.Sprintf("page_size must be one of %v", allowedPageSizes))
	}
	// the offset (no-1)*size must fit in an int
	if no-1 > math.MaxInt/size {
		return Page{}, ValidationFailed("page_no is out of range")
	}
	return Page{No: no, Size: size}, nil
}

func (p Page) Offset() int {
	return (p.No - 1) * p.Size
}

func (p Page) Limit() int {
	return p.Size
}

func allowedPageSize(size int) bool {
	for _, allowed := range allowedPageSizes {
		if size == allowed {
			return true
		}
	}
	return false
}
