// Package authors provides database operations for author lookup and creation.
//
// Lookup-or-create runs inside a transaction so that resolving an unseen
// author name behaves as an atomic check-then-act unit: two rows referencing
// the same new name never produce two author records.
//
// # Usage
//
//	repo := authors.NewRepository(db)
//	author, created, err := repo.GetOrCreate("Frank Herbert")
package authors

import (
	"fmt"

	"gorm.io/gorm"

	"bookbatch/internal/entities"
	"bookbatch/internal/importer"
)

// Repository handles all author database operations.
type Repository struct {
	db          *gorm.DB
	publisherID uint // 0 = unscoped
}

// NewRepository creates a new authors repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithPublisher returns a copy of the repository whose lookups are restricted
// to authors belonging to the given publisher. Authors created through the
// scoped copy are assigned to that publisher.
func (r *Repository) WithPublisher(publisherID uint) *Repository {
	return &Repository{db: r.db, publisherID: publisherID}
}

// GetOrCreate retrieves the author with the given name or creates it if
// absent. The boolean reports whether a new record was created.
func (r *Repository) GetOrCreate(name string) (*entities.Author, bool, error) {
	var author *entities.Author
	var created bool

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var matches []entities.Author
		query := tx.Where("name = ?", name)
		if r.publisherID != 0 {
			query = query.Where("publisher_id = ?", r.publisherID)
		}
		if err := query.Limit(2).Find(&matches).Error; err != nil {
			return err
		}

		switch len(matches) {
		case 0:
			author = &entities.Author{Name: name, PublisherID: r.publisherID}
			created = true
			return tx.Create(author).Error
		case 1:
			author = &matches[0]
			return nil
		default:
			return fmt.Errorf("author %q: %w", name, importer.ErrAmbiguous)
		}
	})
	if err != nil {
		return nil, false, err
	}
	return author, created, nil
}

// GetByID retrieves an author by ID.
func (r *Repository) GetByID(id uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.First(&author, id).Error
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// Count returns the number of authors with the given name, honoring the
// publisher scope.
func (r *Repository) Count(name string) (int64, error) {
	var count int64
	query := r.db.Model(&entities.Author{}).Where("name = ?", name)
	if r.publisherID != 0 {
		query = query.Where("publisher_id = ?", r.publisherID)
	}
	err := query.Count(&count).Error
	return count, err
}
