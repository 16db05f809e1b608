package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/mahin-dev/catalog-console/internal/gateway"
	"github.com/mahin-dev/catalog-console/internal/handlers"
	"github.com/mahin-dev/catalog-console/internal/routes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	// The remote catalog API this console administers.
	upstream := os.Getenv("UPSTREAM_BASE_URL")
	if upstream == "" {
		upstream = "http://127.0.0.1:8000"
	}

	app := handlers.New(gateway.NewClient(upstream))
	router := routes.SetupRouter(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting catalog console on port %s (upstream: %s)...", port, upstream)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
