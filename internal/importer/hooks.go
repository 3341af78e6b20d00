package importer

import (
	"fmt"
	"log"

	"bookbatch/internal/entities"
)

// Hooks are the extension points of the reconciliation algorithm. All
// methods have no-op defaults; embed NoopHooks and override what you need.
//
// AfterRow runs after the row's mutation is committed. An error from it is
// reported to the caller but never rolls the mutation back.
type Hooks interface {
	BeforeImport(rows []RawRow) error
	ForDelete(row RawRow, existing *entities.Book) bool
	AfterRow(row RawRow, outcome Outcome) error
}

// NoopHooks implements Hooks with no behavior.
type NoopHooks struct{}

func (NoopHooks) BeforeImport(rows []RawRow) error                   { return nil }
func (NoopHooks) ForDelete(row RawRow, existing *entities.Book) bool { return false }
func (NoopHooks) AfterRow(row RawRow, outcome Outcome) error         { return nil }

// TransitionPredicate decides whether the trigger field changed in a way
// that should fire a notification.
type TransitionPredicate func(previous, current *entities.Book) bool

// PublishedSetTransition fires when the publication date went from unset to
// set: a previously unannounced book now has a release date.
func PublishedSetTransition(previous, current *entities.Book) bool {
	if current == nil || current.Published == nil {
		return false
	}
	return previous == nil || previous.Published == nil
}

// Notifier receives new-release notifications fired by PublishHooks.
type Notifier interface {
	NotifyNewRelease(book *entities.Book)
}

// LogNotifier logs notifications instead of delivering them anywhere.
type LogNotifier struct{}

func (LogNotifier) NotifyNewRelease(book *entities.Book) {
	log.Printf("Workflow triggered for book: %s", book.Name)
}

// PublishHooks fires a domain notification when a row's publication date
// transitions per the configured predicate.
//
// TriggerColumn guards against a column/attribute wiring mistake: if the
// persisted record has a publication date but the raw row has no such
// column, the configured trigger column name cannot match the import header
// and AfterRow reports the mismatch instead of firing.
type PublishHooks struct {
	NoopHooks
	TriggerColumn string
	Predicate     TransitionPredicate
	Notifier      Notifier
}

// NewPublishHooks creates hooks watching the given raw column with the
// default transition predicate and log-only notifier.
func NewPublishHooks(triggerColumn string) *PublishHooks {
	return &PublishHooks{
		TriggerColumn: triggerColumn,
		Predicate:     PublishedSetTransition,
		Notifier:      LogNotifier{},
	}
}

func (h *PublishHooks) AfterRow(row RawRow, outcome Outcome) error {
	current := outcome.Current
	if current == nil {
		return nil
	}

	if current.Published != nil && h.TriggerColumn != "" && !row.Has(h.TriggerColumn) {
		return fmt.Errorf(
			"book %q has a publication date but the row has no %q column; trigger column name does not match the import header",
			current.Name, h.TriggerColumn,
		)
	}

	if h.Predicate(outcome.Previous, current) {
		h.Notifier.NotifyNewRelease(current)
	}
	return nil
}
