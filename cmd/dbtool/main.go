package main

import (
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"fuel-route-service/internal/adapters/repositories"
	"fuel-route-service/internal/config"
	"fuel-route-service/internal/platform/db"
)

// dbtool initializes the Postgres schema and seeds the stations table from
// the OPIS price CSV. Run it once before starting the server with
// STATION_SOURCE=postgres.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(db); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	csvPath := config.Get("FUEL_DATA_PATH", "data/fuel-prices.csv")
	log.Println("Seeding stations...")
	if err := repositories.SeedFromCSV(db, csvPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
