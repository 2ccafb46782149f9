package github

import (
	"net/url"
	"strconv"
	"strings"
)

// pageLinks holds page numbers parsed from github's Link header. Zero means missing relation.
type pageLinks struct {
	next int
	last int
}

// parseLinkHeader parses header like:
//
//	<https://api.github.com/repositories/1/issues?page=2>; rel="next", <https://api.github.com/repositories/1/issues?page=5>; rel="last"
func parseLinkHeader(header string) pageLinks {
	var links pageLinks
	if header == "" {
		return links
	}

	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}

		rawURL := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(rawURL, "<") || !strings.HasSuffix(rawURL, ">") {
			continue
		}
		u, err := url.Parse(rawURL[1 : len(rawURL)-1])
		if err != nil {
			continue
		}
		page, err := strconv.Atoi(u.Query().Get("page"))
		if err != nil || page < 1 {
			continue
		}

		for _, param := range segments[1:] {
			param = strings.TrimSpace(param)
			switch param {
			case `rel="next"`:
				links.next = page
			case `rel="last"`:
				links.last = page
			}
		}
	}

	return links
}
