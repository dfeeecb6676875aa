package main

import (
	"log"

	"github.com/joho/godotenv"

	"lifelog-coach/internal/cli"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	cli.Execute()
}
