// Package links builds absolute hyperlinks for API resources so
// responses can point clients at related operations without hardcoding
// hosts.
package links

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Link describes a related operation on a resource.
type Link struct {
	Rel    string `json:"rel" example:"self"`
	Href   string `json:"href" example:"https://api.example.com/api/augmentations/1"`
	Method string `json:"method" example:"GET"`
}

// Generator derives absolute URLs from the incoming request.
type Generator struct{}

// NewGenerator creates a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// baseURL reconstructs the external scheme://host for the request,
// honoring X-Forwarded-Proto when the service sits behind a proxy.
func (g *Generator) baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + r.Host
}

// ResourceLinks returns self/update/delete links for a single resource
// under basePath (e.g. "/api/augmentations").
func (g *Generator) ResourceLinks(r *http.Request, basePath string, id int) []Link {
	href := fmt.Sprintf("%s%s/%d", g.baseURL(r), basePath, id)
	return []Link{
		{Rel: "self", Href: href, Method: http.MethodGet},
		{Rel: "update", Href: href, Method: http.MethodPut},
		{Rel: "delete", Href: href, Method: http.MethodDelete},
	}
}

// PageLinks returns self/prev/next links for a paginated listing. prev
// and next are omitted at the edges; total drives the upper bound.
func (g *Generator) PageLinks(r *http.Request, basePath string, page, pageSize, total int) []Link {
	links := []Link{
		{Rel: "self", Href: g.pageURL(r, basePath, page, pageSize), Method: http.MethodGet},
	}
	if page > 1 {
		links = append(links, Link{Rel: "prev", Href: g.pageURL(r, basePath, page-1, pageSize), Method: http.MethodGet})
	}
	if page*pageSize < total {
		links = append(links, Link{Rel: "next", Href: g.pageURL(r, basePath, page+1, pageSize), Method: http.MethodGet})
	}
	return links
}

func (g *Generator) pageURL(r *http.Request, basePath string, page, pageSize int) string {
	values := url.Values{}
	values.Set("page", strconv.Itoa(page))
	values.Set("page_size", strconv.Itoa(pageSize))
	return g.baseURL(r) + basePath + "?" + values.Encode()
}
