package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPTransport_Execute_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept header = %q, want application/json", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": 42}`))
	}))
	defer server.Close()

	tr := NewHTTPTransport(5 * time.Second)
	resp, err := tr.Execute(context.Background(), http.MethodGet, server.URL, nil, nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if resp.Status != http.StatusOK {
		t.Errorf("Status = %d, want %d", resp.Status, http.StatusOK)
	}
	if string(resp.Body) != `{"id": 42}` {
		t.Errorf("Body = %s, want {\"id\": 42}", resp.Body)
	}
	if resp.FromCache {
		t.Error("FromCache should never be set by the transport")
	}

	var decoded struct {
		ID int `json:"id"`
	}
	if err := resp.JSON(&decoded); err != nil {
		t.Fatalf("JSON decode failed: %v", err)
	}
	if decoded.ID != 42 {
		t.Errorf("decoded.ID = %d, want 42", decoded.ID)
	}
}

func TestHTTPTransport_Execute_BodyAndContentType(t *testing.T) {
	var gotContentType string
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	tr := NewHTTPTransport(5 * time.Second)
	resp, err := tr.Execute(context.Background(), http.MethodPost, server.URL, []byte(`{"name":"x"}`), nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if resp.Status != http.StatusCreated {
		t.Errorf("Status = %d, want %d", resp.Status, http.StatusCreated)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotBody != `{"name":"x"}` {
		t.Errorf("request body = %q, want {\"name\":\"x\"}", gotBody)
	}
}

func TestHTTPTransport_Execute_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "missing"}`))
	}))
	defer server.Close()

	tr := NewHTTPTransport(5 * time.Second)
	_, err := tr.Execute(context.Background(), http.MethodGet, server.URL, nil, nil)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}

	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("error type = %T, want *transport.Error", err)
	}
	if terr.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", terr.Status, http.StatusNotFound)
	}
	if terr.IsNetwork() {
		t.Error("HTTP status error should not classify as network")
	}
	if string(terr.Body) != `{"error": "missing"}` {
		t.Errorf("error body = %s, want error payload", terr.Body)
	}
}

func TestHTTPTransport_Execute_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	tr := NewHTTPTransport(time.Second)
	_, err := tr.Execute(context.Background(), http.MethodGet, server.URL, nil, nil)
	if err == nil {
		t.Fatal("expected error for refused connection")
	}

	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("error type = %T, want *transport.Error", err)
	}
	if !terr.IsNetwork() {
		t.Errorf("Status = %d, want 0 (network)", terr.Status)
	}
}

func TestHTTPTransport_Execute_ContextCancelled(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	tr := NewHTTPTransport(10 * time.Second)
	_, err := tr.Execute(ctx, http.MethodGet, server.URL, nil, nil)
	if err == nil {
		t.Fatal("expected error after context cancellation")
	}

	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("error type = %T, want *transport.Error", err)
	}
	if !terr.IsNetwork() {
		t.Error("cancelled call should classify as network-level failure")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want wrapped context.Canceled", err)
	}
}

func TestResponse_Clone(t *testing.T) {
	orig := &Response{
		Status: 200,
		Header: http.Header{"X-Test": []string{"a"}},
		Body:   []byte("body"),
	}

	clone := orig.Clone()
	clone.FromCache = true
	clone.Header.Set("X-Test", "b")

	if orig.FromCache {
		t.Error("mutating clone changed original FromCache")
	}
	if orig.Header.Get("X-Test") != "a" {
		t.Error("mutating clone header changed original header")
	}
}
