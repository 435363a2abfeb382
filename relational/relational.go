// Package relational is the second backend: payment methods and the
// notification dispatch log live in postgres.
package relational

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to postgres and migrates the tables.
func Open(dsn string) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := Migrate(database); err != nil {
		return nil, err
	}

	log.Println("Connected to PostgreSQL")
	return database, nil
}

// Migrate creates or updates the relational tables.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(&PaymentMethod{}, &DispatchLog{}); err != nil {
		return fmt.Errorf("failed to migrate relational tables: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(database *gorm.DB) {
	sqlDB, err := database.DB()
	if err != nil {
		log.Println("Failed to get postgres pool:", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Println("Failed to close postgres:", err)
	}
}
