// Package sessions provides database operations for import session
// bookkeeping: one row per import run, updated with outcome counts as the
// run progresses.
package sessions

import (
	"time"

	"gorm.io/gorm"

	"bookbatch/internal/entities"
)

// Repository handles all import session database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sessions repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create starts a new pending import session for the given source.
func (r *Repository) Create(source string) (*entities.ImportSession, error) {
	session := &entities.ImportSession{
		Source:    source,
		Status:    entities.ImportStatusPending,
		StartedAt: time.Now(),
	}
	if err := r.db.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// Update persists the current state of a session.
func (r *Repository) Update(session *entities.ImportSession) error {
	return r.db.Save(session).Error
}

// Get retrieves a session by ID.
func (r *Repository) Get(id uint) (*entities.ImportSession, error) {
	var session entities.ImportSession
	err := r.db.First(&session, id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// List retrieves sessions ordered by most recent first.
func (r *Repository) List(limit int) ([]entities.ImportSession, error) {
	var sessions []entities.ImportSession
	query := r.db.Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&sessions).Error
	return sessions, err
}

// DeleteStale removes finished sessions older than the retention window and
// returns the number deleted.
func (r *Repository) DeleteStale(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result := r.db.Where("finished_at IS NOT NULL AND finished_at < ?", cutoff).
		Delete(&entities.ImportSession{})
	return result.RowsAffected, result.Error
}
