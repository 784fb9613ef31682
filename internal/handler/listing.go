package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"workshopportal/internal/entity"
)

// workshopsPerPage matches the page size of the workshop tables.
const workshopsPerPage = 5

// Pager links one page of a filtered list to its neighbours. The links
// keep the search query.
type Pager struct {
	Page  int
	Pages int
	Prev  string
	Next  string
}

// listQuery reads the search text and requested page of a list screen.
func listQuery(r *http.Request) (string, int) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return q, page
}

// paginate cuts items down to the requested page. Pages past the end clamp
// to the last one.
func paginate[T any](items []T, page, size int, base, query string) ([]T, Pager) {
	pages := (len(items) + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	page = min(max(page, 1), pages)

	start := (page - 1) * size
	end := min(start+size, len(items))

	p := Pager{Page: page, Pages: pages}
	if page > 1 {
		p.Prev = pageURL(base, query, page-1)
	}
	if page < pages {
		p.Next = pageURL(base, query, page+1)
	}
	return items[start:end], p
}

func pageURL(base, query string, page int) string {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	v.Set("page", strconv.Itoa(page))
	return base + "?" + v.Encode()
}

// filterWorkshops matches the query against name and instructor,
// ignoring case.
func filterWorkshops(list []entity.Workshop, query string) []entity.Workshop {
	if query == "" {
		return list
	}
	query = strings.ToLower(query)
	out := make([]entity.Workshop, 0, len(list))
	for _, ws := range list {
		if strings.Contains(strings.ToLower(ws.Name), query) ||
			strings.Contains(strings.ToLower(ws.Instructor), query) {
			out = append(out, ws)
		}
	}
	return out
}
