package client

import (
	"context"
	"strconv"
	"strings"

	"github.com/goragodwiriya/nowjs-api-client/pkg/cache"
	"github.com/goragodwiriya/nowjs-api-client/pkg/transport"
)

// PaginateOptions tunes sequential page collection.
type PaginateOptions struct {
	// PageParam is the query parameter carrying the page number.
	// Defaults to "page".
	PageParam string

	// LimitParam is the query parameter carrying the page size.
	// Defaults to "limit".
	LimitParam string

	// DataPath is a dotted path to the item array inside each page body,
	// e.g. "result.items". Empty means the body itself is the array.
	DataPath string

	// TotalPath is a dotted path to the total item count inside each page
	// body. When resolvable, collection stops once that many items are
	// gathered.
	TotalPath string

	// StopCondition, when set, is evaluated after each page and stops
	// collection when it returns true.
	StopCondition func(page []any, resp *transport.Response) bool

	// MaxPages bounds the number of pages fetched. Zero means unbounded.
	MaxPages int

	// StartPage is the first page number requested. Defaults to 1.
	StartPage int

	// Request carries per-page request options.
	Request *RequestOptions
}

// PageResult is the outcome of a pagination run.
type PageResult struct {
	// Data holds every collected item across all fetched pages.
	Data []any

	// Pages is the number of pages fetched.
	Pages int

	// Total is the item count reported by the server, or the collected
	// count when the server reports none.
	Total int
}

// Paginate fetches pages of (url, params) sequentially until the collection
// is exhausted, collecting the per-page item arrays into one result. A page
// shorter than the page size, an empty page, a reached server total, the
// stop condition or the page bound ends collection. A failing page returns
// the pages gathered so far alongside the error.
func (c *Client) Paginate(ctx context.Context, url string, params any, opts *PaginateOptions) (*PageResult, error) {
	if opts == nil {
		opts = &PaginateOptions{}
	}

	pageParam := opts.PageParam
	if pageParam == "" {
		pageParam = "page"
	}
	limitParam := opts.LimitParam
	if limitParam == "" {
		limitParam = "limit"
	}
	page := opts.StartPage
	if page <= 0 {
		page = 1
	}

	values := cache.ParamsToValues(params)
	pageSize := 0
	if limit := values.Get(limitParam); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			pageSize = n
		}
	}

	result := &PageResult{}
	for {
		values.Set(pageParam, strconv.Itoa(page))

		resp, err := c.Get(ctx, url, values, opts.Request)
		if err != nil {
			return result, err
		}
		result.Pages++

		var body any
		if err := resp.JSON(&body); err != nil {
			return result, &RequestError{Method: "GET", URL: url, Err: err}
		}

		items, ok := extractItems(body, opts.DataPath)
		if !ok {
			return result, &RequestError{Method: "GET", URL: url, Err: errNoItemArray(opts.DataPath)}
		}
		result.Data = append(result.Data, items...)

		if total, ok := extractInt(body, opts.TotalPath); ok {
			result.Total = total
		}

		// The first page fixes the page size when no limit was given.
		if pageSize == 0 {
			pageSize = len(items)
		}

		switch {
		case len(items) == 0:
			// Past the end of the collection.
		case pageSize > 0 && len(items) < pageSize:
			// Short page: the collection is exhausted.
		case result.Total > 0 && len(result.Data) >= result.Total:
		case opts.StopCondition != nil && opts.StopCondition(items, resp):
		case opts.MaxPages > 0 && result.Pages >= opts.MaxPages:
		default:
			page++
			continue
		}
		break
	}

	if result.Total == 0 {
		result.Total = len(result.Data)
	}
	return result, nil
}

type errNoItemArray string

func (e errNoItemArray) Error() string {
	if e == "" {
		return "page body is not an array"
	}
	return "no item array at path " + strconv.Quote(string(e))
}

// extractItems resolves the item array of a page body, walking the dotted
// path when one is given.
func extractItems(body any, path string) ([]any, bool) {
	node := lookupPath(body, path)
	items, ok := node.([]any)
	return items, ok
}

// extractInt resolves an integer field such as a server-reported total.
func extractInt(body any, path string) (int, bool) {
	if path == "" {
		return 0, false
	}
	switch v := lookupPath(body, path).(type) {
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}

// lookupPath walks a dotted path through nested JSON objects.
func lookupPath(node any, path string) any {
	if path == "" {
		return node
	}
	for _, part := range strings.Split(path, ".") {
		obj, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = obj[part]
	}
	return node
}
