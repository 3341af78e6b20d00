package entities

import (
	"time"
)

// DefaultAuthorName is the natural key of the fallback author assigned to
// books whose author cell is empty. Seeded at startup.
const DefaultAuthorName = "NA"

type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

type Author struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"index;size:100" json:"name"`
	PublisherID uint      `gorm:"index" json:"publisher_id,omitempty"` // 0 = unscoped
	CreatedAt   time.Time `json:"created_at"`
}

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"index;size:100" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Book struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"index;size:100" json:"name"`
	AuthorID    uint       `gorm:"index" json:"author_id,omitempty"`
	Author      *Author    `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	AuthorEmail string     `gorm:"size:50" json:"author_email,omitempty"`
	Imported    bool       `gorm:"default:false" json:"imported"`
	Published   *time.Time `json:"published,omitempty"`
	Price       *int64     `json:"price,omitempty"`

	// IdentityKey is the surrogate key derived from the source row (an
	// explicit unique column value or a content hash) used to match a
	// re-imported row back to this record.
	IdentityKey string `gorm:"uniqueIndex;size:64" json:"identity_key,omitempty"`

	Categories []Category `gorm:"many2many:book_categories;" json:"categories,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Snapshot returns a detached copy of the book suitable for before/after
// diffs. Pointer fields are copied so later mutations of the live record
// do not leak into the snapshot.
func (b *Book) Snapshot() *Book {
	if b == nil {
		return nil
	}
	copied := *b
	if b.Published != nil {
		published := *b.Published
		copied.Published = &published
	}
	if b.Price != nil {
		price := *b.Price
		copied.Price = &price
	}
	if b.Author != nil {
		author := *b.Author
		copied.Author = &author
	}
	if b.Categories != nil {
		copied.Categories = make([]Category, len(b.Categories))
		copy(copied.Categories, b.Categories)
	}
	return &copied
}

type ImportSession struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	Source     string       `gorm:"size:50" json:"source"` // e.g., "csv_upload", "csv_async", "cli"
	Status     ImportStatus `gorm:"size:20;default:'pending'" json:"status"`
	TotalRows  int          `json:"total_rows"`
	Created    int          `json:"created"`
	Updated    int          `json:"updated"`
	Deleted    int          `json:"deleted"`
	Skipped    int          `json:"skipped"`
	Failed     int          `json:"failed"`
	Error      string       `gorm:"type:text" json:"error,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
}
