package initializers

import (
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB // shared handle, also used by Migrate

func ConnectDB() error {
	log.Println("Connecting to database")

	dsn := os.Getenv("DIRECT_URL")
	if dsn == "" {
		log.Println("DIRECT_URL variable not loading...")
		return fmt.Errorf("env variable DIRECT_URL is empty")
	}

	var err error
	pgConfig := postgres.Config{
		PreferSimpleProtocol: true, // Disable implicit prepared statement usage
		DriverName:           "postgres",
		DSN:                  dsn,
	}

	DB, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		PrepareStmt:          false,
		DisableAutomaticPing: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}

	log.Println("Database connection successful")
	return nil
}
