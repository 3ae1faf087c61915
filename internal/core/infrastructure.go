// Package core provides the HTTP infrastructure for the hotel MCP server:
// routing, authentication, CORS, health and graceful shutdown.
package core

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/mark3labs/mcp-go/server"
	"github.com/vcto/hotel-mcp/internal/api"
	"github.com/vcto/hotel-mcp/internal/auth"
	"github.com/vcto/hotel-mcp/internal/config"
	"github.com/vcto/hotel-mcp/internal/debug"
	"github.com/vcto/hotel-mcp/internal/middleware"
)

const shutdownTimeout = 5 * time.Second

// ErrAuthTokenRequired is returned when the HTTP transport would expose the
// stored hotel session without a bearer token and auth was not disabled.
var ErrAuthTokenRequired = errors.New("MCP_AUTH_TOKEN is required in HTTP mode (use -disable-auth or DISABLE_AUTH=true to serve without it)")

// InfrastructureConfig configures the HTTP server around an MCP server.
type InfrastructureConfig struct {
	Server       config.ServerConfig
	Client       *api.Client
	DebugStorage debug.Storage
	ServerName   string
	Version      string
}

// MCPServerResult contains the configured server and shutdown function
type MCPServerResult struct {
	Server       *http.Server
	Handler      http.Handler
	ShutdownFunc func(ctx context.Context) error
}

// SetupInfrastructure wires mcpServer behind /mcp with bearer auth and CORS,
// plus /health and, when recording is on, /debug/stats. It refuses to build
// an unguarded server unless cfg.Server.DisableAuth is set.
func SetupInfrastructure(mcpServer *server.MCPServer, cfg InfrastructureConfig) (*MCPServerResult, error) {
	authToken := cfg.Server.AuthToken
	switch {
	case cfg.Server.DisableAuth:
		authToken = ""
		log.Println("[AUTH] Authentication disabled; /mcp is reachable without a bearer token")
	case authToken == "":
		return nil, ErrAuthTokenRequired
	}
	guard := auth.Middleware(authToken, cfg.Server.ServerURL)

	streamableServer := server.NewStreamableHTTPServer(
		mcpServer,
		server.WithStateLess(true),
		server.WithEndpointPath("/mcp"),
	)

	router := mux.NewRouter()
	router.HandleFunc("/health", healthHandler(cfg)).Methods(http.MethodGet)

	if cfg.DebugStorage != nil && cfg.DebugStorage.IsEnabled() {
		router.Handle("/debug/stats",
			guard(debugStatsHandler(cfg.DebugStorage)),
		).Methods(http.MethodGet)
	}

	router.PathPrefix("/mcp").Handler(guard(contentTypeMiddleware(streamableServer)))

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = append(corsConfig.AllowOrigins, cfg.Server.AllowedOrigins...)
	}
	handler := middleware.CORS(corsConfig)(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &MCPServerResult{
		Server:  srv,
		Handler: handler,
		ShutdownFunc: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	}, nil
}

// StartServer runs the server until SIGINT/SIGTERM or ctx is done, then
// shuts down gracefully.
func StartServer(ctx context.Context, result *MCPServerResult, cfg InfrastructureConfig) error {
	log.Printf("Starting %s on port %s", cfg.ServerName, cfg.Server.Port)
	log.Printf("Endpoint: %s/mcp", cfg.Server.ServerURL)
	log.Printf("Test with: npx @modelcontextprotocol/inspector --cli %s/mcp --method tools/list", cfg.Server.ServerURL)

	serverErr := make(chan error, 1)
	go func() {
		if err := result.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
		log.Println("Shutdown signal received, starting graceful shutdown...")
	case <-ctx.Done():
		log.Println("Context cancelled, starting graceful shutdown...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := result.ShutdownFunc(shutdownCtx); err != nil {
		return err
	}
	log.Println("Server exiting")
	return nil
}

// contentTypeMiddleware strips the charset parameter from JSON requests;
// the streamable transport compares the media type exactly.
func contentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			r.Header.Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

type healthResponse struct {
	Status    string `json:"status"`
	Server    string `json:"server"`
	Version   string `json:"version,omitempty"`
	APIBase   string `json:"api_base_url,omitempty"`
	Recording bool   `json:"recording"`
}

func healthHandler(cfg InfrastructureConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := healthResponse{
			Status:    "healthy",
			Server:    cfg.ServerName,
			Version:   cfg.Version,
			Recording: cfg.DebugStorage != nil && cfg.DebugStorage.IsEnabled(),
		}
		if cfg.Client != nil {
			resp.APIBase = cfg.Client.BaseURL()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func debugStatsHandler(storage debug.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := storage.Stats(r.Context())
		if err != nil {
			log.Printf("[DEBUG] Failed to read stats: %v", err)
			http.Error(w, "failed to read stats", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
