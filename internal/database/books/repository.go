// Package books provides database operations for book persistence during
// import and export. Books are addressed by the identity key derived from a
// source row, not by surrogate ID.
package books

import (
	"gorm.io/gorm"

	"bookbatch/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByIdentityKey retrieves the book matching the given identity key, with
// author and categories loaded. Returns (nil, nil) when no record matches.
func (r *Repository) FindByIdentityKey(key string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Author").Preload("Categories", func(db *gorm.DB) *gorm.DB {
		return db.Order("categories.name ASC")
	}).Where("identity_key = ?", key).First(&book).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Insert creates a new book row and its category associations. The related
// author and categories must already exist; only join rows are written here.
func (r *Repository) Insert(book *entities.Book) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		categories := book.Categories
		if err := tx.Omit("Author", "Categories").Create(book).Error; err != nil {
			return err
		}
		if len(categories) == 0 {
			return nil
		}
		return tx.Model(book).Association("Categories").Replace(categories)
	})
}

// Update overwrites the mutable fields of an existing book row and replaces
// its category associations.
func (r *Repository) Update(book *entities.Book) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		categories := book.Categories
		if err := tx.Omit("Author", "Categories").Save(book).Error; err != nil {
			return err
		}
		return tx.Model(book).Association("Categories").Replace(categories)
	})
}

// Delete removes a book row. Category join rows are cleared first so a later
// re-import of the same identity starts from a clean slate.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		book := entities.Book{ID: id}
		if err := tx.Model(&book).Association("Categories").Clear(); err != nil {
			return err
		}
		return tx.Delete(&entities.Book{}, id).Error
	})
}

// GetByID retrieves a book by ID with associations loaded.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Author").Preload("Categories").First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetAll retrieves all books with associations loaded, ordered by name.
func (r *Repository) GetAll() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Author").Preload("Categories", func(db *gorm.DB) *gorm.DB {
		return db.Order("categories.name ASC")
	}).Order("books.name ASC").Find(&books).Error
	return books, err
}

// Count returns the total number of books.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}

// Ping reports whether the underlying store is reachable.
func (r *Repository) Ping() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
