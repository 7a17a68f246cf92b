// Package main Professor Advisor API Server
//
//	@title			Professor Advisor API
//	@version		1.0
//	@description	A retrieval-augmented chat API that recommends professors based on student reviews
//
//	@host		localhost:8080
//	@BasePath	/
package main

import (
	"log"

	"github.com/joho/godotenv"

	_ "profadvisor/docs" // This imports the docs package to initialize swagger
	"profadvisor/internal/server"
)

func main() {
	// Provider and index credentials usually live in a local .env file
	// during development; a missing file is fine in production.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	log.Println("Starting Professor Advisor server...")
	srv := server.NewServer()
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
