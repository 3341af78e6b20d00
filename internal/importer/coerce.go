// Package importer is the row reconciliation core: it coerces raw tabular
// rows into typed candidate records, resolves each row against the record
// store by a deterministic identity key, and applies the resulting
// insert/update/delete with a per-row outcome.
//
// Related-entity coercion is not pure: resolving an unseen author or
// category name creates it in the store as a side effect, even if the row
// later fails validation.
package importer

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"bookbatch/internal/entities"
)

// RawRow is one parsed line of an imported file, keyed by header name.
// Immutable once read.
type RawRow map[string]string

// Get returns the trimmed value of a column, or "" when absent.
func (r RawRow) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// Has reports whether the column was present in the source file.
func (r RawRow) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// AuthorStore resolves author names to records, creating them on demand.
type AuthorStore interface {
	GetOrCreate(name string) (*entities.Author, bool, error)
}

// CategoryStore resolves category names to records, creating them on demand.
type CategoryStore interface {
	GetOrCreate(name string) (*entities.Category, bool, error)
}

// CandidateRecord holds the typed values coerced from one row, keyed by
// target attribute name. Discarded after reconciliation.
type CandidateRecord struct {
	values map[string]any
}

func NewCandidateRecord() *CandidateRecord {
	return &CandidateRecord{values: make(map[string]any)}
}

func (c *CandidateRecord) Set(attribute string, value any) {
	c.values[attribute] = value
}

func (c *CandidateRecord) String(attribute string) string {
	v, _ := c.values[attribute].(string)
	return v
}

func (c *CandidateRecord) Time(attribute string) *time.Time {
	v, _ := c.values[attribute].(*time.Time)
	return v
}

func (c *CandidateRecord) Int(attribute string) *int64 {
	v, _ := c.values[attribute].(*int64)
	return v
}

func (c *CandidateRecord) AuthorRef(attribute string) *entities.Author {
	v, _ := c.values[attribute].(*entities.Author)
	return v
}

func (c *CandidateRecord) CategoryRefs(attribute string) []entities.Category {
	v, _ := c.values[attribute].([]entities.Category)
	return v
}

// FieldSpec declares a target attribute, its source column, and the coercion
// rule applied to the raw cell value. Configured once per resource.
type FieldSpec struct {
	Attribute string
	Column    string
	clean     func(value string) (any, error)
}

// Coerce applies the field's rule to the row and stores the typed result in
// the candidate record.
func (f FieldSpec) Coerce(row RawRow, rec *CandidateRecord) error {
	value, err := f.clean(row.Get(f.Column))
	if err != nil {
		return err
	}
	rec.Set(f.Attribute, value)
	return nil
}

// StringField copies the trimmed cell value through unchanged.
func StringField(attribute, column string) FieldSpec {
	return FieldSpec{
		Attribute: attribute,
		Column:    column,
		clean: func(value string) (any, error) {
			return value, nil
		},
	}
}

// DateField parses the cell with one fixed Go layout. Empty cells coerce to
// a null date, not an error.
func DateField(attribute, column, layout string) FieldSpec {
	return FieldSpec{
		Attribute: attribute,
		Column:    column,
		clean: func(value string) (any, error) {
			if value == "" {
				return (*time.Time)(nil), nil
			}
			t, err := time.Parse(layout, value)
			if err != nil {
				return nil, &CoercionError{Field: attribute, Kind: KindInvalidFormat, Value: value, Err: err}
			}
			return &t, nil
		},
	}
}

// PositiveIntField parses the cell as an integer and rejects negatives.
// Empty cells coerce to a null value.
func PositiveIntField(attribute, column string) FieldSpec {
	return FieldSpec{
		Attribute: attribute,
		Column:    column,
		clean: func(value string) (any, error) {
			if value == "" {
				return (*int64)(nil), nil
			}
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, &CoercionError{Field: attribute, Kind: KindInvalidFormat, Value: value, Err: err}
			}
			if n < 0 {
				return nil, &CoercionError{Field: attribute, Kind: KindConstraintViolation, Value: value, Err: errors.New("value must be positive")}
			}
			return &n, nil
		},
	}
}

// AuthorField resolves the cell to an author record by natural key,
// creating it if absent. Empty cells resolve to the default author.
func AuthorField(attribute, column string, store AuthorStore) FieldSpec {
	return FieldSpec{
		Attribute: attribute,
		Column:    column,
		clean: func(value string) (any, error) {
			name := value
			if name == "" {
				name = entities.DefaultAuthorName
			}
			author, _, err := store.GetOrCreate(name)
			if err != nil {
				if errors.Is(err, ErrAmbiguous) {
					return nil, &CoercionError{Field: attribute, Kind: KindAmbiguousReference, Value: value, Err: err}
				}
				return nil, &PersistenceError{Op: "author lookup-or-create", Err: err}
			}
			return author, nil
		},
	}
}

// CategoriesField splits the cell on the separator and resolves each token
// to a category record, creating them on demand. Duplicate tokens collapse
// to one reference; an empty cell coerces to an empty set.
func CategoriesField(attribute, column, separator string, store CategoryStore) FieldSpec {
	return FieldSpec{
		Attribute: attribute,
		Column:    column,
		clean: func(value string) (any, error) {
			if value == "" {
				return []entities.Category{}, nil
			}

			seen := make(map[string]bool)
			var resolved []entities.Category
			for _, token := range strings.Split(value, separator) {
				name := strings.TrimSpace(token)
				if name == "" || seen[name] {
					continue
				}
				seen[name] = true

				category, _, err := store.GetOrCreate(name)
				if err != nil {
					if errors.Is(err, ErrAmbiguous) {
						return nil, &CoercionError{Field: attribute, Kind: KindAmbiguousReference, Value: name, Err: err}
					}
					return nil, &PersistenceError{Op: "category lookup-or-create", Err: err}
				}
				resolved = append(resolved, *category)
			}
			if resolved == nil {
				resolved = []entities.Category{}
			}
			return resolved, nil
		},
	}
}
