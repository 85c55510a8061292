package domain

// PageResult is one page of a filtered, ordered result set.
type PageResult[T any] struct {
	Current int64
	Size    int64
	Total   int64 // matching rows across all pages
	Pages   int64
	Records []T
}

// NewPageResult builds a page and derives Pages from total and size.
// A nil records slice is replaced by an empty one.
func NewPageResult[T any](current, size, total int64, records []T) PageResult[T] {
	if records == nil {
		records = []T{}
	}
	return PageResult[T]{
		Current: current,
		Size:    size,
		Total:   total,
		Pages:   PageCount(total, size),
		Records: records,
	}
}

// PageCount returns ceil(total/size), or 0 when there is nothing to page.
func PageCount(total, size int64) int64 {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// HasNext reports whether a page exists after this one.
func (p PageResult[T]) HasNext() bool {
	return p.Current < p.Pages
}

// HasPrev reports whether a page exists before this one.
func (p PageResult[T]) HasPrev() bool {
	return p.Current > 1
}

// MapPage converts the records of p with fn, keeping the paging numbers.
func MapPage[T, R any](p PageResult[T], fn func(T) R) PageResult[R] {
	out := make([]R, 0, len(p.Records))
	for _, rec := range p.Records {
		out = append(out, fn(rec))
	}
	return PageResult[R]{
		Current: p.Current,
		Size:    p.Size,
		Total:   p.Total,
		Pages:   p.Pages,
		Records: out,
	}
}
