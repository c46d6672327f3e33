package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/goragodwiriya/nowjs-api-client/pkg/client"
	"github.com/goragodwiriya/nowjs-api-client/pkg/logging"
	"github.com/goragodwiriya/nowjs-api-client/pkg/persist"
	"github.com/goragodwiriya/nowjs-api-client/pkg/transport"
)

func main() {
	// Configuration from environment
	port := getEnv("PORT", "8080")
	backendURL := getEnv("BACKEND_URL", "http://localhost:3000")
	redisURL := getEnv("REDIS_URL", "")

	cfg := client.DefaultConfig()

	// Optional Redis-backed cache snapshots
	var redisClient *redis.Client
	if redisURL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: redisURL,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Printf("Connected to Redis at %s", redisURL)
		cfg.Storage = persist.NewRedisStore(redisClient, persist.DefaultSnapshotKey, logging.NewLogger("persist"))
	}

	apiClient, err := client.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create API client: %v", err)
	}

	// HTTP Server
	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/ready", readyHandler(redisClient))
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/api/", proxyHandler(apiClient, backendURL))

	addr := ":" + port
	log.Printf("Starting API proxy server on %s", addr)
	log.Printf("Backend: %s", backendURL)

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// readyHandler reports readiness; with Redis configured it checks the
// connection, without it the proxy is always ready.
func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				http.Error(w, fmt.Sprintf("Redis unavailable: %v", err), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

// proxyHandler forwards /api/... requests to the backend through the
// orchestrator so reads are cached, deduplicated and retried.
func proxyHandler(apiClient *client.Client, backendURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Example: /api/users/1 -> {backend}/users/1
		endpoint := backendURL + r.URL.Path[len("/api"):]
		if r.URL.RawQuery != "" {
			endpoint += "?" + r.URL.RawQuery
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		opts := &client.RequestOptions{Header: r.Header.Clone()}

		var resp *transport.Response
		var err error
		switch r.Method {
		case http.MethodGet:
			resp, err = apiClient.Get(ctx, endpoint, nil, opts)
		case http.MethodPost:
			body, readErr := io.ReadAll(r.Body)
			if readErr != nil {
				http.Error(w, "Failed to read request body", http.StatusBadRequest)
				return
			}
			resp, err = apiClient.Post(ctx, endpoint, body, opts)
		case http.MethodPut:
			body, readErr := io.ReadAll(r.Body)
			if readErr != nil {
				http.Error(w, "Failed to read request body", http.StatusBadRequest)
				return
			}
			resp, err = apiClient.Put(ctx, endpoint, body, opts)
		case http.MethodDelete:
			resp, err = apiClient.Delete(ctx, endpoint, opts)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if err != nil {
			http.Error(w, fmt.Sprintf("Upstream request failed: %v", err), http.StatusBadGateway)
			return
		}

		for key, values := range resp.Header {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}
		if resp.FromCache {
			w.Header().Set("X-Cache", "HIT")
		}
		w.WriteHeader(resp.Status)
		if _, err := w.Write(resp.Body); err != nil {
			log.Printf("Failed to write response: %v", err)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
