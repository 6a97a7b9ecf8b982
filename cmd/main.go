package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/cli"
)

func main() {
	// Load .env before viper reads the environment. Missing files are fine,
	// production deployments rely on real environment variables.
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Info: Loaded environment variables from .env file.")
	}

	cli.Execute()
}
