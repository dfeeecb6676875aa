package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"lifelog-coach/internal/app"
	"lifelog-coach/internal/config"
	"lifelog-coach/internal/mcpserver"
)

const version = "1.0.0"

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	cfg := config.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to start: %v", err)
	}
	defer a.Close()

	log.Printf("🚀 Starting lifelog MCP server")
	server := mcpserver.NewMCPServer(a.Service, version)

	log.Printf("🔗 Starting server on stdin/stdout...")
	transport := mcp.NewStdioTransport()
	if err := server.Run(ctx, transport); err != nil {
		log.Printf("❌ Server failed: %v", err)
	}
}
