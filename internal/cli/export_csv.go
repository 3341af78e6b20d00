package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"bookbatch/internal/config"
	"bookbatch/internal/database"
	"bookbatch/internal/database/books"
	"bookbatch/internal/exporters"
)

// ExportCSVCommand exports the stored books to a CSV file or stdout.
type ExportCSVCommand struct {
	OutputPath   string
	DatabasePath string
}

func NewExportCSVCommand() *ExportCSVCommand {
	return &ExportCSVCommand{}
}

func (cmd *ExportCSVCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export-csv", flag.ExitOnError)

	fs.StringVar(&cmd.OutputPath, "output", "", "Output file path (default: stdout)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export-csv [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export all stored books as CSV, in a format that can be re-imported.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *ExportCSVCommand) Run() error {
	cfg := config.NewConfig()

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	allBooks, err := books.NewRepository(db.DB).GetAll()
	if err != nil {
		return fmt.Errorf("failed to load books: %w", err)
	}

	var out io.Writer = os.Stdout
	if cmd.OutputPath != "" {
		file, err := os.Create(cmd.OutputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	exporter := exporters.NewCSVExporter(cfg.Import.DateFormat, cfg.Import.CategorySeparator)
	if err := exporter.Export(out, allBooks); err != nil {
		return fmt.Errorf("failed to export books: %w", err)
	}

	if cmd.OutputPath != "" {
		fmt.Printf("Exported %d books to %s\n", len(allBooks), cmd.OutputPath)
	}
	return nil
}
