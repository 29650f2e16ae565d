package connectors

import "strings"

// URIJoin joins URL fragments with single slashes. Leading and trailing
// slashes of each fragment are dropped; empty fragments are ignored.
func URIJoin(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for i, p := range parts {
		if i == 0 {
			p = strings.TrimRight(p, "/")
		} else {
			p = strings.Trim(p, "/")
		}
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}
