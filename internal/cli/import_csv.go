package cli

import (
	"flag"
	"fmt"
	"os"

	"bookbatch/internal/config"
	"bookbatch/internal/database"
	"bookbatch/internal/database/authors"
	"bookbatch/internal/database/books"
	"bookbatch/internal/database/categories"
	"bookbatch/internal/entrypoint"
	"bookbatch/internal/importer"
	"bookbatch/internal/parsers"
)

// ImportCSVCommand imports books from a CSV file into the local database.
type ImportCSVCommand struct {
	FilePath     string
	DatabasePath string
	PublisherID  uint
	Verbose      bool
}

func NewImportCSVCommand() *ImportCSVCommand {
	return &ImportCSVCommand{}
}

func (cmd *ImportCSVCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-csv", flag.ExitOnError)

	var publisherID uint64
	fs.StringVar(&cmd.FilePath, "file", "", "Path to the CSV file (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.Uint64Var(&publisherID, "publisher", 0, "Restrict author lookups to this publisher ID")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print the outcome of every row")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-csv -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import books from a CSV file into the local database.\n\n")
		fmt.Fprintf(os.Stderr, "Expected columns: name, author, author_email, price, published_date,\n")
		fmt.Fprintf(os.Stderr, "categories (separated by '|'), delete (set to '1' to remove a record).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	cmd.PublisherID = uint(publisherID)

	return nil
}

func (cmd *ImportCSVCommand) Run() error {
	cfg := config.NewConfig()
	resourceCfg, err := entrypoint.BuildResourceConfig(cfg.Import)
	if err != nil {
		return err
	}

	file, err := os.Open(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	rows, parseErrors, err := parsers.ParseCSV(file)
	if err != nil {
		return fmt.Errorf("failed to parse CSV: %w", err)
	}
	for _, parseError := range parseErrors {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", parseError)
	}

	var authorStore importer.AuthorStore = authors.NewRepository(db.DB)
	if cmd.PublisherID != 0 {
		authorStore = authors.NewRepository(db.DB).WithPublisher(cmd.PublisherID)
	}
	resource := importer.NewBookResource(authorStore, categories.NewRepository(db.DB), resourceCfg)
	engine := importer.NewEngine(resource, books.NewRepository(db.DB))

	result, err := engine.ImportRows(rows)
	if err != nil {
		return err
	}

	if cmd.Verbose {
		for i, outcome := range result.Outcomes {
			line := fmt.Sprintf("Row %d: %s", i+1, outcome.Type)
			if outcome.Error != "" {
				line += " (" + outcome.Error + ")"
			}
			if outcome.Reason != "" {
				line += " (" + outcome.Reason + ")"
			}
			fmt.Println(line)
		}
	}

	fmt.Printf("Imported %d rows: %d created, %d updated, %d deleted, %d skipped, %d failed\n",
		len(rows), result.Created, result.Updated, result.Deleted, result.Skipped, result.Failed)
	for _, hookError := range result.HookErrors {
		fmt.Fprintf(os.Stderr, "Hook warning: %s\n", hookError)
	}

	return nil
}
