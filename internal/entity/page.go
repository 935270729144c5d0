package entity

// PageInfo is derived per list response from the store's pagination headers.
type PageInfo struct {
	HasNextPage bool
	HasPrevPage bool
	Page        int
	PerPage     *int
	TotalCount  int
}

// Page is a {results, pageInfo} envelope. PageInfo is nil when the store did
// not report a total count, meaning Results is the complete set.
type Page[T any] struct {
	Results  []T
	PageInfo *PageInfo
}
