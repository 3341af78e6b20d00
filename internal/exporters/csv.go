// Package exporters writes stored records back out as tabular files, the
// inverse of the import path.
package exporters

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bookbatch/internal/entities"
)

// BookExporter serializes books to an output stream.
type BookExporter interface {
	Export(w io.Writer, books []entities.Book) error
}

// CSVExporter writes books as CSV using the same date format and category
// separator the import side parses, so an exported file round-trips.
type CSVExporter struct {
	DateFormat        string
	CategorySeparator string
}

// NewCSVExporter creates an exporter with the given formats.
func NewCSVExporter(dateFormat, categorySeparator string) *CSVExporter {
	return &CSVExporter{
		DateFormat:        dateFormat,
		CategorySeparator: categorySeparator,
	}
}

// Columns is the fixed export column order.
var Columns = []string{"name", "author", "author_email", "price", "published_date", "categories"}

// Export writes the header row followed by one row per book.
func (e *CSVExporter) Export(w io.Writer, books []entities.Book) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, book := range books {
		if err := writer.Write(e.record(book)); err != nil {
			return fmt.Errorf("failed to write row for %q: %w", book.Name, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func (e *CSVExporter) record(book entities.Book) []string {
	var author string
	if book.Author != nil {
		author = book.Author.Name
	}

	var price string
	if book.Price != nil {
		price = strconv.FormatInt(*book.Price, 10)
	}

	var published string
	if book.Published != nil {
		published = book.Published.Format(e.DateFormat)
	}

	names := make([]string, 0, len(book.Categories))
	for _, category := range book.Categories {
		names = append(names, category.Name)
	}

	return []string{
		book.Name,
		author,
		book.AuthorEmail,
		price,
		published,
		strings.Join(names, e.CategorySeparator),
	}
}
