package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/vcto/hotel-mcp/internal/api"
	"github.com/vcto/hotel-mcp/internal/auth"
	"github.com/vcto/hotel-mcp/internal/config"
	"github.com/vcto/hotel-mcp/internal/core"
	"github.com/vcto/hotel-mcp/internal/debug"
	"github.com/vcto/hotel-mcp/internal/hotel"
)

const (
	serverName    = "hotel-mcp"
	serverVersion = "1.0.0"
)

var (
	httpMode    = flag.Bool("http", os.Getenv("FLY_APP_NAME") != "" || os.Getenv("PORT") != "", "Serve MCP over HTTP instead of stdio")
	disableAuth = flag.Bool("disable-auth", false, "Serve /mcp without a bearer token (also DISABLE_AUTH=true)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[CONFIG] %v", err)
	}
	if *disableAuth {
		cfg.Server.DisableAuth = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, storeCloser := auth.NewStoreFromConfig(ctx, cfg.Tokens)
	defer func() {
		if err := storeCloser.Close(); err != nil {
			log.Printf("[AUTH] Failed to close token store: %v", err)
		}
	}()

	debugStorage, err := debug.Start(ctx, cfg.Debug)
	if err != nil {
		log.Printf("Warning: Failed to initialize debug system: %v", err)
		debugStorage = debug.NoOpStorage{}
	}
	defer func() {
		if err := debugStorage.Close(); err != nil {
			log.Printf("Failed to close debug storage: %v", err)
		}
	}()

	client := api.NewFromConfig(cfg.API,
		api.WithStore(store),
		api.WithTransport(debug.Wrap(debugStorage)),
		api.WithSessionExpiredHandler(func(cause error) {
			log.Printf("[AUTH] Hotel API session expired, log in again: %v", cause)
		}),
	)
	log.Printf("[API] Hotel API at %s", client.BaseURL())

	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, true),
	)

	handler := hotel.NewHandler(hotel.NewService(client), debugStorage)
	handler.SetupTools(s)
	handler.SetupResources(s)

	if !*httpMode {
		if err := server.ServeStdio(s); err != nil {
			log.Fatalf("Server error: %v\n", err)
		}
		return
	}

	infra := core.InfrastructureConfig{
		Server:       cfg.Server,
		Client:       client,
		DebugStorage: debugStorage,
		ServerName:   serverName,
		Version:      serverVersion,
	}
	result, err := core.SetupInfrastructure(s, infra)
	if err != nil {
		log.Fatalf("[AUTH] %v", err)
	}
	if err := core.StartServer(ctx, result, infra); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
