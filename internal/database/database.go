package database

import (
	"fmt"
	"log"
	"time"

	"csgo-market-data/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Initialize opens the store and makes sure the three tables exist.
func Initialize(driver, databaseURL string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverMySQL:
		dialector = mysql.Open(databaseURL)
	case DriverSQLite, "":
		dialector = sqlite.Open(databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if driver == DriverMySQL {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// sqlite 单写者
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database initialized successfully")
	return db, nil
}

// Migrate creates missing tables and columns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.KlineRecord{}, &models.MarketIndexPoint{}); err != nil {
		return fmt.Errorf("failed to migrate series tables: %w", err)
	}

	// price_history may predate the sales_volume/observed_at columns
	if db.Migrator().HasTable(&models.PriceSnapshot{}) {
		if err := ensurePriceHistoryColumns(db); err != nil {
			log.Printf("Migration warning: %v", err)
		}
		return nil
	}
	if err := db.AutoMigrate(&models.PriceSnapshot{}); err != nil {
		return fmt.Errorf("failed to migrate price_history: %w", err)
	}
	return nil
}

// ensurePriceHistoryColumns adds columns introduced after the table was first created.
func ensurePriceHistoryColumns(db *gorm.DB) error {
	for _, field := range []string{"SalesVolume", "ObservedAt"} {
		if db.Migrator().HasColumn(&models.PriceSnapshot{}, field) {
			continue
		}
		if err := db.Migrator().AddColumn(&models.PriceSnapshot{}, field); err != nil {
			return fmt.Errorf("failed adding price_history.%s: %w", field, err)
		}
		log.Printf("Added column %s to price_history", field)
	}
	return nil
}
