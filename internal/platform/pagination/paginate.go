package pagination

import (
	"net/url"
	"strconv"
)

// Page is one slice of a listing plus the RFC 8288 Link header pointing at its neighbours.
type Page[T any] struct {
	Items []T
	Total int
	Link  string
}

// Paginate returns the items following cursor, at most limit of them. limit <= 0 means
// no upper bound. An After value that is no longer present restarts from the beginning.
func Paginate[T any](items []T, cursor Cursor, limit int, id func(T) string, basePath string) Page[T] {
	total := len(items)
	start := 0
	if cursor.After != "" {
		for i, item := range items {
			if id(item) == cursor.After {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = total
	}
	end := min(start+limit, total)
	page := items[start:end]

	var next, prev string
	if end < total && len(page) > 0 {
		next = Cursor{Kind: cursor.Kind, After: id(page[len(page)-1])}.Encode()
	}
	if start > 0 {
		var after string
		if start > limit {
			after = id(items[start-limit-1])
		}
		prev = Cursor{Kind: cursor.Kind, After: after}.Encode()
	}

	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return Page[T]{Items: page, Total: total, Link: BuildLinkHeader(basePath, q, next, prev)}
}
