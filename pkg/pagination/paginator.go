package pagination

import "sync"

// Options configures a Paginator. Both fields accept any value and are
// coerced: PageSize falls back to DefaultPageSize and InitialPage to
// DefaultPage when absent or invalid.
type Options struct {
	PageSize    any
	InitialPage any
}

// Page is a consistent snapshot of a Paginator.
type Page[T any] struct {
	Page       int  `json:"page"        yaml:"page"`
	PageSize   int  `json:"page_size"   yaml:"page_size"`
	TotalPages int  `json:"total_pages" yaml:"total_pages"`
	TotalItems int  `json:"total_items" yaml:"total_items"`
	Items      []T  `json:"items"       yaml:"items"`
	HasPrev    bool `json:"has_prev"    yaml:"has_prev"`
	HasNext    bool `json:"has_next"    yaml:"has_next"`
}

// Paginator exposes one page of a Source at a time.
//
// The zero value is not usable; construct with New.
type Paginator[T any] struct {
	mu       sync.Mutex
	src      Source[T]
	pageSize int
	current  int
}

// New creates a Paginator over src. A nil src is an empty sequence.
func New[T any](src Source[T], opts Options) *Paginator[T] {
	p := &Paginator[T]{
		src:      src,
		pageSize: PositiveOr(opts.PageSize, DefaultPageSize),
		current:  Coerce(opts.InitialPage, DefaultPage),
	}
	p.mu.Lock()
	p.reclamp(p.items())
	p.mu.Unlock()
	return p
}

// PageSize returns the number of items per page.
func (p *Paginator[T]) PageSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pageSize
}

// CurrentPage returns the 1-based index of the visible page.
func (p *Paginator[T]) CurrentPage() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reclamp(p.items())
	return p.current
}

// TotalPages returns max(1, ceil(len/pageSize)).
func (p *Paginator[T]) TotalPages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := p.items()
	p.reclamp(items)
	return totalPages(len(items), p.pageSize)
}

// Items returns the visible slice of the current page. The returned slice is
// a copy; it is empty, never nil, when the page holds no items.
func (p *Paginator[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := p.items()
	p.reclamp(items)
	return window(items, p.current, p.pageSize)
}

// State returns the page, its bounds and its items read under one lock.
func (p *Paginator[T]) State() Page[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := p.items()
	p.reclamp(items)
	total := totalPages(len(items), p.pageSize)
	return Page[T]{
		Page:       p.current,
		PageSize:   p.pageSize,
		TotalPages: total,
		TotalItems: len(items),
		Items:      window(items, p.current, p.pageSize),
		HasPrev:    p.current > 1,
		HasNext:    p.current < total,
	}
}

// GoToPage moves to page n, clamped to [1, TotalPages]. Values that do not
// coerce to a non-zero number go to page 1.
func (p *Paginator[T]) GoToPage(n any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.goTo(Coerce(n, DefaultPage))
}

// PrevPage moves one page back, stopping at the first page.
func (p *Paginator[T]) PrevPage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.goTo(Coerce(p.current, DefaultPage) - 1)
}

// NextPage moves one page forward, stopping at the last page.
func (p *Paginator[T]) NextPage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.goTo(Coerce(p.current, DefaultPage) + 1)
}

// FirstPage moves to page 1.
func (p *Paginator[T]) FirstPage() {
	p.GoToPage(1)
}

// LastPage moves to the last page.
func (p *Paginator[T]) LastPage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.goTo(totalPages(len(p.items()), p.pageSize))
}

// SetPageSize changes the page size. Invalid or non-positive sizes fall back
// to DefaultPageSize. The current page is re-clamped to the new bounds.
func (p *Paginator[T]) SetPageSize(n any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pageSize = PositiveOr(n, DefaultPageSize)
	p.reclamp(p.items())
}

// goTo is the single place the current page is assigned from navigation.
// Callers hold p.mu.
func (p *Paginator[T]) goTo(n int) {
	total := totalPages(len(p.items()), p.pageSize)
	p.current = clamp(n, 1, total)
}

// reclamp keeps current inside [1, TotalPages] for the given items.
// Callers hold p.mu.
func (p *Paginator[T]) reclamp(items []T) {
	total := totalPages(len(items), p.pageSize)
	if p.current > total {
		p.current = total
	}
	if p.current < 1 {
		p.current = 1
	}
}

func (p *Paginator[T]) items() []T {
	if p.src == nil {
		return nil
	}
	return p.src.Items()
}

func totalPages(length, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pages := length / pageSize
	if length%pageSize > 0 {
		pages++
	}
	if pages < 1 {
		return 1
	}
	return pages
}

func window[T any](items []T, page, pageSize int) []T {
	if page < 1 || pageSize < 1 || page-1 > len(items)/pageSize {
		return []T{}
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := len(items)
	if pageSize < end-start {
		end = start + pageSize
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
