package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookbatch/internal/entities"
)

type recordingNotifier struct {
	books []string
}

func (n *recordingNotifier) NotifyNewRelease(book *entities.Book) {
	n.books = append(n.books, book.Name)
}

func TestPublishedSetTransition(t *testing.T) {
	date := time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		previous *entities.Book
		current  *entities.Book
		want     bool
	}{
		{name: "new record with date", previous: nil, current: &entities.Book{Published: &date}, want: true},
		{name: "date appears on update", previous: &entities.Book{}, current: &entities.Book{Published: &date}, want: true},
		{name: "date already set", previous: &entities.Book{Published: &date}, current: &entities.Book{Published: &date}, want: false},
		{name: "no date at all", previous: nil, current: &entities.Book{}, want: false},
		{name: "no current record", previous: &entities.Book{}, current: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublishedSetTransition(tt.previous, tt.current))
		})
	}
}

func TestPublishHooks_FiresOnTransition(t *testing.T) {
	notifier := &recordingNotifier{}
	hooks := NewPublishHooks(ColPublished)
	hooks.Notifier = notifier

	date := time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)
	row := RawRow{ColPublished: "1965-08-01"}
	outcome := Outcome{
		Type:    OutcomeCreated,
		Current: &entities.Book{Name: "Dune", Published: &date},
	}

	err := hooks.AfterRow(row, outcome)

	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, notifier.books)
}

func TestPublishHooks_NoTransitionNoNotification(t *testing.T) {
	notifier := &recordingNotifier{}
	hooks := NewPublishHooks(ColPublished)
	hooks.Notifier = notifier

	date := time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)
	row := RawRow{ColPublished: "1965-08-01"}
	outcome := Outcome{
		Type:     OutcomeUpdated,
		Previous: &entities.Book{Name: "Dune", Published: &date},
		Current:  &entities.Book{Name: "Dune", Published: &date},
	}

	err := hooks.AfterRow(row, outcome)

	require.NoError(t, err)
	assert.Empty(t, notifier.books)
}

// A trigger column that does not match the import header can never observe
// the raw value it is supposed to watch; the hook surfaces the wiring
// mistake instead of silently firing.
func TestPublishHooks_TriggerColumnMismatch(t *testing.T) {
	notifier := &recordingNotifier{}
	hooks := NewPublishHooks("published_field")
	hooks.Notifier = notifier

	date := time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)
	row := RawRow{ColPublished: "1965-08-01"}
	outcome := Outcome{
		Type:    OutcomeCreated,
		Current: &entities.Book{Name: "Dune", Published: &date},
	}

	err := hooks.AfterRow(row, outcome)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "published_field")
	assert.Empty(t, notifier.books)
}

func TestPublishHooks_IgnoresFailedRows(t *testing.T) {
	notifier := &recordingNotifier{}
	hooks := NewPublishHooks(ColPublished)
	hooks.Notifier = notifier

	err := hooks.AfterRow(RawRow{}, Outcome{Type: OutcomeFailed})

	require.NoError(t, err)
	assert.Empty(t, notifier.books)
}
