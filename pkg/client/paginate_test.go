package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/goragodwiriya/nowjs-api-client/pkg/transport"
)

// pagedHandler serves a fixed collection of total items in pages of the
// requested limit, shaped as {"items": [...], "total": N}.
func pagedHandler(t *testing.T, total, defaultLimit int) func(string, string, []byte) (*transport.Response, error) {
	return func(_, rawURL string, _ []byte) (*transport.Response, error) {
		u, err := url.Parse(rawURL)
		if err != nil {
			t.Fatalf("bad request URL %q: %v", rawURL, err)
		}
		q := u.Query()

		page, _ := strconv.Atoi(q.Get("page"))
		if page <= 0 {
			page = 1
		}
		limit, _ := strconv.Atoi(q.Get("limit"))
		if limit <= 0 {
			limit = defaultLimit
		}

		start := (page - 1) * limit
		items := []any{}
		for i := start; i < start+limit && i < total; i++ {
			items = append(items, map[string]any{"id": i + 1})
		}

		body, err := json.Marshal(map[string]any{"items": items, "total": total})
		if err != nil {
			t.Fatalf("marshal page: %v", err)
		}
		return &transport.Response{Status: http.StatusOK, Body: body}, nil
	}
}

func TestPaginateCollectsAllPages(t *testing.T) {
	stub := &stubTransport{handler: pagedHandler(t, 47, 20)}
	c := newTestClient(t, stub, nil)

	result, err := c.Paginate(context.Background(), "https://api.example.com/users",
		map[string]string{"limit": "20"},
		&PaginateOptions{DataPath: "items", TotalPath: "total"})
	if err != nil {
		t.Fatalf("Paginate failed: %v", err)
	}

	if result.Pages != 3 {
		t.Errorf("pages = %d, want 3", result.Pages)
	}
	if len(result.Data) != 47 {
		t.Errorf("items = %d, want 47", len(result.Data))
	}
	if result.Total != 47 {
		t.Errorf("total = %d, want 47", result.Total)
	}
	if got := stub.callCount(); got != 3 {
		t.Errorf("transport calls = %d, want 3", got)
	}
}

func TestPaginateBareArrayBody(t *testing.T) {
	stub := &stubTransport{handler: func(_, rawURL string, _ []byte) (*transport.Response, error) {
		u, _ := url.Parse(rawURL)
		page, _ := strconv.Atoi(u.Query().Get("page"))
		var body string
		switch page {
		case 1:
			body = `[1,2,3]`
		case 2:
			body = `[4]`
		default:
			body = `[]`
		}
		return &transport.Response{Status: http.StatusOK, Body: []byte(body)}, nil
	}}
	c := newTestClient(t, stub, nil)

	result, err := c.Paginate(context.Background(), "https://api.example.com/ids", nil, nil)
	if err != nil {
		t.Fatalf("Paginate failed: %v", err)
	}
	if result.Pages != 2 {
		t.Errorf("pages = %d, want 2 (second page is short)", result.Pages)
	}
	if len(result.Data) != 4 {
		t.Errorf("items = %d, want 4", len(result.Data))
	}
}

func TestPaginateMaxPagesBound(t *testing.T) {
	stub := &stubTransport{handler: pagedHandler(t, 1000, 10)}
	c := newTestClient(t, stub, nil)

	result, err := c.Paginate(context.Background(), "https://api.example.com/events",
		map[string]string{"limit": "10"},
		&PaginateOptions{DataPath: "items", MaxPages: 2})
	if err != nil {
		t.Fatalf("Paginate failed: %v", err)
	}
	if result.Pages != 2 {
		t.Errorf("pages = %d, want 2", result.Pages)
	}
	if len(result.Data) != 20 {
		t.Errorf("items = %d, want 20", len(result.Data))
	}
}

func TestPaginateStopCondition(t *testing.T) {
	stub := &stubTransport{handler: pagedHandler(t, 1000, 10)}
	c := newTestClient(t, stub, nil)

	result, err := c.Paginate(context.Background(), "https://api.example.com/events",
		map[string]string{"limit": "10"},
		&PaginateOptions{
			DataPath: "items",
			StopCondition: func(page []any, _ *transport.Response) bool {
				last := page[len(page)-1].(map[string]any)
				return last["id"].(float64) >= 30
			},
		})
	if err != nil {
		t.Fatalf("Paginate failed: %v", err)
	}
	if result.Pages != 3 {
		t.Errorf("pages = %d, want 3", result.Pages)
	}
}

func TestPaginatePartialResultOnError(t *testing.T) {
	stub := &stubTransport{handler: func(_, rawURL string, _ []byte) (*transport.Response, error) {
		u, _ := url.Parse(rawURL)
		page, _ := strconv.Atoi(u.Query().Get("page"))
		if page >= 2 {
			return nil, &transport.Error{Status: http.StatusBadGateway, Message: "502 Bad Gateway"}
		}
		items := []any{}
		for i := 0; i < 10; i++ {
			items = append(items, i)
		}
		body, _ := json.Marshal(map[string]any{"items": items})
		return &transport.Response{Status: http.StatusOK, Body: body}, nil
	}}
	c := newTestClient(t, stub, func(cfg *Config) {
		cfg.Connection.MaxNetworkRetries = 0
	})

	result, err := c.Paginate(context.Background(), "https://api.example.com/events",
		map[string]string{"limit": "10"},
		&PaginateOptions{DataPath: "items"})
	if err == nil {
		t.Fatal("expected a page error")
	}
	if result == nil {
		t.Fatal("partial results should be returned alongside the error")
	}
	if result.Pages != 1 || len(result.Data) != 10 {
		t.Errorf("partial result pages=%d items=%d, want pages=1 items=10", result.Pages, len(result.Data))
	}
}

func TestPaginateStartPage(t *testing.T) {
	var firstPage string
	stub := &stubTransport{handler: func(method, rawURL string, body []byte) (*transport.Response, error) {
		u, _ := url.Parse(rawURL)
		q := u.Query()
		if firstPage == "" {
			firstPage = q.Get("p")
		}
		// pagedHandler reads the default "page" parameter; translate the
		// custom "p" parameter so the stub serves the requested page.
		q.Set("page", q.Get("p"))
		q.Del("p")
		u.RawQuery = q.Encode()
		return pagedHandler(t, 5, 20)(method, u.String(), body)
	}}
	c := newTestClient(t, stub, nil)

	_, err := c.Paginate(context.Background(), "https://api.example.com/users", nil,
		&PaginateOptions{DataPath: "items", PageParam: "p", StartPage: 4})
	if err != nil {
		t.Fatalf("Paginate failed: %v", err)
	}
	if firstPage != "4" {
		t.Errorf("first requested page = %q, want %q", firstPage, "4")
	}
}

func TestLookupPath(t *testing.T) {
	doc := map[string]any{
		"result": map[string]any{
			"items": []any{1.0, 2.0},
			"meta":  map[string]any{"total": 2.0},
		},
	}

	tests := []struct {
		path string
		want any
	}{
		{"", doc},
		{"result.items", doc["result"].(map[string]any)["items"]},
		{"result.meta.total", 2.0},
		{"result.missing", nil},
		{"result.items.deeper", nil},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("path=%q", tt.path), func(t *testing.T) {
			got := lookupPath(doc, tt.path)
			switch want := tt.want.(type) {
			case nil:
				if got != nil {
					t.Errorf("lookupPath(%q) = %v, want nil", tt.path, got)
				}
			case float64:
				if got != want {
					t.Errorf("lookupPath(%q) = %v, want %v", tt.path, got, want)
				}
			default:
				if got == nil {
					t.Errorf("lookupPath(%q) = nil, want %v", tt.path, want)
				}
			}
		})
	}
}
