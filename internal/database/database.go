package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bookbatch/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.Author{},
		&entities.Category{},
		&entities.Book{},
		&entities.ImportSession{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedDefaultAuthor(); err != nil {
		return nil, fmt.Errorf("failed to seed default author: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping reports whether the underlying store is reachable. The reconciliation
// engine calls this before a batch; an error here aborts the whole import.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// seedDefaultAuthor ensures the fallback author exists so that rows with an
// empty author cell always have something to resolve to.
func (d *Database) seedDefaultAuthor() error {
	var existing entities.Author
	result := d.DB.Where("name = ? AND publisher_id = 0", entities.DefaultAuthorName).First(&existing)
	if result.Error == gorm.ErrRecordNotFound {
		author := entities.Author{Name: entities.DefaultAuthorName}
		if err := d.DB.Create(&author).Error; err != nil {
			return fmt.Errorf("failed to create author %s: %w", entities.DefaultAuthorName, err)
		}
		log.Printf("Created default author: %s", entities.DefaultAuthorName)
		return nil
	}
	return result.Error
}
