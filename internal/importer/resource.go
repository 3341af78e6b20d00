package importer

import (
	"time"

	"bookbatch/internal/entities"
)

// Target attribute names for the book resource.
const (
	AttrName        = "name"
	AttrAuthorEmail = "author_email"
	AttrPublished   = "published"
	AttrPrice       = "price"
	AttrAuthor      = "author"
	AttrCategories  = "categories"
)

// Source column names for the book resource.
const (
	ColName        = "name"
	ColAuthorEmail = "author_email"
	ColPublished   = "published_date"
	ColPrice       = "price"
	ColAuthor      = "author"
	ColCategories  = "categories"
)

// ResourceConfig carries the per-resource import settings.
type ResourceConfig struct {
	DateFormat        string
	CategorySeparator string
	DeleteColumn      string
	DeleteSentinel    string
	EpochFloor        time.Time
	DeniedNames       []string
}

// DefaultResourceConfig returns the settings the book resource ships with.
func DefaultResourceConfig() ResourceConfig {
	return ResourceConfig{
		DateFormat:        "2006-01-02",
		CategorySeparator: "|",
		DeleteColumn:      "delete",
		DeleteSentinel:    "1",
		EpochFloor:        time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
		DeniedNames:       []string{"Ulysses"},
	}
}

// Resource is a fully configured import target: the field specs, identity
// strategy, delete marker, validators and hooks for one record type.
type Resource struct {
	Fields         []FieldSpec
	Identity       IdentityStrategy
	DeleteColumn   string
	DeleteSentinel string
	Validators     []RecordValidator
	Hooks          Hooks
}

// ResourceOption customizes a resource at construction time.
type ResourceOption func(*Resource)

// WithIdentity replaces the identity strategy.
func WithIdentity(strategy IdentityStrategy) ResourceOption {
	return func(r *Resource) {
		r.Identity = strategy
	}
}

// WithHooks replaces the hook set.
func WithHooks(hooks Hooks) ResourceOption {
	return func(r *Resource) {
		r.Hooks = hooks
	}
}

// WithValidator appends a whole-record validator.
func WithValidator(v RecordValidator) ResourceOption {
	return func(r *Resource) {
		r.Validators = append(r.Validators, v)
	}
}

// NewBookResource assembles the book resource's field list at construction
// time. Scoping a resource to a publisher is done by passing an author store
// scoped with authors.Repository.WithPublisher; every author lookup then
// carries the scope.
func NewBookResource(authorStore AuthorStore, categoryStore CategoryStore, cfg ResourceConfig, opts ...ResourceOption) *Resource {
	resource := &Resource{
		Fields: []FieldSpec{
			StringField(AttrName, ColName),
			StringField(AttrAuthorEmail, ColAuthorEmail),
			DateField(AttrPublished, ColPublished, cfg.DateFormat),
			PositiveIntField(AttrPrice, ColPrice),
			AuthorField(AttrAuthor, ColAuthor, authorStore),
			CategoriesField(AttrCategories, ColCategories, cfg.CategorySeparator, categoryStore),
		},
		Identity:       ByHashedColumn(ColName),
		DeleteColumn:   cfg.DeleteColumn,
		DeleteSentinel: cfg.DeleteSentinel,
		Validators: []RecordValidator{
			EpochFloorValidator(cfg.EpochFloor),
			DenylistValidator(cfg.DeniedNames...),
		},
		Hooks: NewPublishHooks(ColPublished),
	}
	for _, opt := range opts {
		opt(resource)
	}
	return resource
}

// BuildCandidate coerces every field of the row. The first failure aborts
// the row: partial field application is forbidden.
func (r *Resource) BuildCandidate(row RawRow) (*CandidateRecord, error) {
	rec := NewCandidateRecord()
	for _, field := range r.Fields {
		if err := field.Coerce(row, rec); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// deleteRequested reports whether the row's delete-marker column holds the
// truthy sentinel.
func (r *Resource) deleteRequested(row RawRow) bool {
	return r.DeleteColumn != "" && row.Get(r.DeleteColumn) == r.DeleteSentinel
}

// toBook materializes a candidate record as a book entity carrying the
// given identity key.
func (r *Resource) toBook(key string, rec *CandidateRecord) *entities.Book {
	book := &entities.Book{
		Name:        rec.String(AttrName),
		AuthorEmail: rec.String(AttrAuthorEmail),
		Published:   rec.Time(AttrPublished),
		Price:       rec.Int(AttrPrice),
		Imported:    true,
		IdentityKey: key,
		Categories:  rec.CategoryRefs(AttrCategories),
	}
	if author := rec.AuthorRef(AttrAuthor); author != nil {
		book.AuthorID = author.ID
		book.Author = author
	}
	return book
}

// applyTo overwrites the mutable fields of an existing record with the
// candidate's values. Identity, surrogate ID and creation time survive.
func (r *Resource) applyTo(existing, candidate *entities.Book) {
	existing.Name = candidate.Name
	existing.AuthorEmail = candidate.AuthorEmail
	existing.Published = candidate.Published
	existing.Price = candidate.Price
	existing.AuthorID = candidate.AuthorID
	existing.Author = candidate.Author
	existing.Categories = candidate.Categories
	existing.Imported = true
}
