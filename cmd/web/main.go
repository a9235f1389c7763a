package main

import (
	"fmt"
	"log"

	"github.com/fuzzydedup/internal/config"
	"github.com/fuzzydedup/internal/web"
)

func main() {
	// Load environment configuration
	config.LoadEnv()

	fmt.Println("=== Fuzzy Deduplication Web Service ===")

	webConfig := web.ConfigFromEnv()

	fmt.Printf("Server: http://%s:%d\n", webConfig.Server.Host, webConfig.Server.Port)
	if webConfig.Database.URL != "" {
		fmt.Println("Persistence: enabled")
	} else {
		fmt.Println("Persistence: disabled (set DATABASE_URL to enable)")
	}
	fmt.Printf("Workers: %d\n", webConfig.Engine.Workers)
	fmt.Printf("Export: %v\n", webConfig.Features.ExportEnabled)

	server, err := web.NewServer(webConfig)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := server.Start(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
