package pagination

import (
	"fmt"
	"maps"
	"net/url"
	"strings"
)

// BuildLinkHeader constructs an RFC 8288 Link header with next and prev relations,
// preserving query.
func BuildLinkHeader(basePath string, query url.Values, next, prev string) string {
	var links []string
	if next != "" {
		links = append(links, link(basePath, query, next, "next"))
	}
	if prev != "" {
		links = append(links, link(basePath, query, prev, "prev"))
	}
	return strings.Join(links, ", ")
}

func link(basePath string, query url.Values, cursor, rel string) string {
	q := maps.Clone(query)
	if q == nil {
		q = url.Values{}
	}
	q.Set("cursor", cursor)
	return fmt.Sprintf("<%s?%s>; rel=%q", basePath, q.Encode(), rel)
}
