package importer

import (
	"time"

	"bookbatch/internal/entities"
)

// RecordValidator checks a whole-record invariant on a coerced candidate
// before it is persisted. A non-nil error fails the row with no mutation.
type RecordValidator func(book *entities.Book) error

// EpochFloorValidator rejects books published before the floor date. Books
// with no publication date pass.
func EpochFloorValidator(floor time.Time) RecordValidator {
	return func(book *entities.Book) error {
		if book.Published != nil && book.Published.Before(floor) {
			return &ValidationError{Field: "published", Reason: "book is out of print"}
		}
		return nil
	}
}

// DenylistValidator rejects books whose name is on the denylist.
func DenylistValidator(names ...string) RecordValidator {
	denied := make(map[string]bool, len(names))
	for _, name := range names {
		denied[name] = true
	}
	return func(book *entities.Book) error {
		if denied[book.Name] {
			return &ValidationError{Field: "name", Reason: "book has been banned"}
		}
		return nil
	}
}
