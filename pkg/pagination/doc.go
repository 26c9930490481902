// Package pagination derives a visible page from an ordered, externally owned
// sequence and keeps the current page valid as that sequence changes.
//
// A Paginator never copies or mutates its source. Every read recomputes the
// total page count from the source's current length and re-clamps the current
// page before answering, so a shrinking room list or a larger page size can
// never leave the view pointing past the last page.
//
// Example usage:
//
//	rooms := []hotel.Room{...}
//	p := pagination.New(pagination.SliceSource(&rooms), pagination.Options{PageSize: 5})
//	p.NextPage()
//	page := p.State() // page.Items, page.Page, page.TotalPages
//
// Invalid inputs never produce errors:
//   - page size and page index go through Coerce, so "abc", 0, NaN and nil
//     fall back to the defaults (5 and 1)
//   - page indexes outside [1, TotalPages] are clamped
//   - a nil source or nil slice is an empty sequence with exactly one page
package pagination
