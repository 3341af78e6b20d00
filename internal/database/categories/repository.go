// Package categories provides database operations for category lookup and
// creation. Lookup-or-create is transactional for the same reason as the
// authors repository: repeated references to an unseen category in one batch
// must resolve to a single record.
package categories

import (
	"fmt"

	"gorm.io/gorm"

	"bookbatch/internal/entities"
	"bookbatch/internal/importer"
)

// Repository handles all category database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new categories repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetOrCreate retrieves the category with the given name or creates it if
// absent. The boolean reports whether a new record was created.
func (r *Repository) GetOrCreate(name string) (*entities.Category, bool, error) {
	var category *entities.Category
	var created bool

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var matches []entities.Category
		if err := tx.Where("name = ?", name).Limit(2).Find(&matches).Error; err != nil {
			return err
		}

		switch len(matches) {
		case 0:
			category = &entities.Category{Name: name}
			created = true
			return tx.Create(category).Error
		case 1:
			category = &matches[0]
			return nil
		default:
			return fmt.Errorf("category %q: %w", name, importer.ErrAmbiguous)
		}
	})
	if err != nil {
		return nil, false, err
	}
	return category, created, nil
}

// GetAll retrieves all categories.
func (r *Repository) GetAll() ([]entities.Category, error) {
	var categories []entities.Category
	err := r.db.Find(&categories).Error
	return categories, err
}

// Count returns the number of categories with the given name.
func (r *Repository) Count(name string) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Category{}).Where("name = ?", name).Count(&count).Error
	return count, err
}
