package importer

import (
	"fmt"

	"bookbatch/internal/entities"
)

type OutcomeType string

const (
	OutcomeCreated OutcomeType = "created"
	OutcomeUpdated OutcomeType = "updated"
	OutcomeDeleted OutcomeType = "deleted"
	OutcomeSkipped OutcomeType = "skipped"
	OutcomeFailed  OutcomeType = "failed"
)

// Outcome is the terminal result of reconciling one row. Updated always
// carries both the pre-image and post-image snapshots.
type Outcome struct {
	Type     OutcomeType     `json:"type"`
	Previous *entities.Book  `json:"previous,omitempty"`
	Current  *entities.Book  `json:"current,omitempty"`
	Reason   string          `json:"reason,omitempty"`
	Err      error           `json:"-"`
	Error    string          `json:"error,omitempty"`
}

// Result accumulates the ordered per-row outcomes of one batch. Outcome
// order matches input row order.
type Result struct {
	Outcomes   []Outcome `json:"outcomes"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Deleted    int       `json:"deleted"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	HookErrors []string  `json:"hook_errors,omitempty"`
}

func (r *Result) add(outcome Outcome) {
	r.Outcomes = append(r.Outcomes, outcome)
	switch outcome.Type {
	case OutcomeCreated:
		r.Created++
	case OutcomeUpdated:
		r.Updated++
	case OutcomeDeleted:
		r.Deleted++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}

// BookStore is the record store the engine reconciles against. FindByIdentityKey
// returns (nil, nil) when no record matches.
type BookStore interface {
	FindByIdentityKey(key string) (*entities.Book, error)
	Insert(book *entities.Book) error
	Update(book *entities.Book) error
	Delete(id uint) error
}

// Engine applies a batch of raw rows to the record store through a
// configured resource. Rows are applied strictly sequentially: later rows
// may depend on related entities created by earlier ones, and outcome order
// must match row order.
type Engine struct {
	resource *Resource
	books    BookStore
}

// NewEngine creates a reconciliation engine. The store handle is explicit;
// there is no ambient global.
func NewEngine(resource *Resource, books BookStore) *Engine {
	return &Engine{resource: resource, books: books}
}

// ImportRows reconciles each row in order and returns one outcome per row.
// Row-level failures are captured in the outcome and never abort the batch;
// earlier rows' mutations persist even if a later row fails. The returned
// error is non-nil only when the whole batch cannot run: the store is
// unreachable or the BeforeImport hook rejected the batch.
func (e *Engine) ImportRows(rows []RawRow) (*Result, error) {
	if pinger, ok := e.books.(interface{ Ping() error }); ok {
		if err := pinger.Ping(); err != nil {
			return nil, fmt.Errorf("record store unavailable: %w", err)
		}
	}

	if err := e.resource.Hooks.BeforeImport(rows); err != nil {
		return nil, fmt.Errorf("before-import hook: %w", err)
	}

	result := &Result{}
	for _, row := range rows {
		outcome := e.reconcile(row)
		result.add(outcome)

		// Hooks run after commit; a hook failure is reported but does not
		// roll back the row's mutation.
		if err := e.resource.Hooks.AfterRow(row, outcome); err != nil {
			result.HookErrors = append(result.HookErrors, err.Error())
		}
	}
	return result, nil
}

func (e *Engine) reconcile(row RawRow) Outcome {
	key, err := e.resource.Identity.Key(row)
	if err != nil {
		return failed(err)
	}

	previous, err := e.books.FindByIdentityKey(key)
	if err != nil {
		return failed(&PersistenceError{Op: "identity lookup", Err: err})
	}
	previousSnapshot := previous.Snapshot()

	if e.resource.deleteRequested(row) || e.resource.Hooks.ForDelete(row, previous) {
		if previous == nil {
			return Outcome{Type: OutcomeSkipped, Reason: "delete requested but no record matches the identity key"}
		}
		if err := e.books.Delete(previous.ID); err != nil {
			return failed(&PersistenceError{Op: "delete", Err: err})
		}
		return Outcome{Type: OutcomeDeleted, Previous: previousSnapshot}
	}

	rec, err := e.resource.BuildCandidate(row)
	if err != nil {
		return failed(err)
	}
	candidate := e.resource.toBook(key, rec)

	for _, validate := range e.resource.Validators {
		if err := validate(candidate); err != nil {
			return failed(err)
		}
	}

	if previous == nil {
		if err := e.books.Insert(candidate); err != nil {
			return failed(&PersistenceError{Op: "insert", Err: err})
		}
		return Outcome{Type: OutcomeCreated, Current: candidate.Snapshot()}
	}

	e.resource.applyTo(previous, candidate)
	if err := e.books.Update(previous); err != nil {
		return failed(&PersistenceError{Op: "update", Err: err})
	}
	return Outcome{Type: OutcomeUpdated, Previous: previousSnapshot, Current: previous.Snapshot()}
}

func failed(err error) Outcome {
	return Outcome{Type: OutcomeFailed, Err: err, Error: err.Error()}
}
