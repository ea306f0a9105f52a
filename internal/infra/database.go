package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"retailpos/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx and migrates the
// schema. The catalog is small enough that AutoMigrate is the whole
// migration story.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return db, nil
}

// RunMigrations creates or updates all tables. Also used by integration tests
// against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.Variant{},
		&model.Customer{},
		&model.StockBatch{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.InvoicePayment{},
	); err != nil {
		return err
	}
	// Invoice numbers come from a sequence so concurrent checkouts cannot
	// collide on the unique index.
	return db.Exec("CREATE SEQUENCE IF NOT EXISTS invoices_number_seq OWNED BY invoices.number").Error
}
