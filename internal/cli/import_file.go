package cli

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/mvasilenko/spreadhub/internal/config"
	"github.com/mvasilenko/spreadhub/internal/database"
	"github.com/mvasilenko/spreadhub/internal/database/spreads"
	"github.com/mvasilenko/spreadhub/internal/importer"
)

// ImportFileCommand runs one import from the command line, without the HTTP
// server. Progress is logged to stderr instead of published to subscribers.
type ImportFileCommand struct {
	FilePath     string
	DatabasePath string
	BatchSize    int
	Verbose      bool
}

func NewImportFileCommand() *ImportFileCommand {
	return &ImportFileCommand{}
}

func (cmd *ImportFileCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Resource spread CSV file to import (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.IntVar(&cmd.BatchSize, "batch", importer.DefaultBatchSize, "Rows per persist cycle")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Log every progress event")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import a resource spread CSV file into the database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file ./resource_spread.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import -file ./resource_spread.csv -db ./my-spreads.db -batch 500\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		fs.Usage()
		return fmt.Errorf("file is required")
	}

	return nil
}

func (cmd *ImportFileCommand) Run() error {
	if _, err := os.Stat(cmd.FilePath); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", cmd.FilePath)
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	repo := spreads.NewRepository(db.DB)
	imp := importer.New(repo, logNotifier{verbose: cmd.Verbose}, cmd.BatchSize)

	fileKey := uuid.New().String()
	summary, err := imp.Run(context.Background(), fileKey, importer.FileSource{Path: cmd.FilePath})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("Imported %d records with %d weekly columns (revision %s)\n",
		summary.TotalRecords, summary.TotalWeekColumns, summary.Revision)
	return nil
}

// logNotifier writes import events to the process log.
type logNotifier struct {
	verbose bool
}

func (n logNotifier) ImportProgress(event importer.ProgressEvent) {
	if n.verbose {
		log.Printf("%s", event.Message)
	}
}

func (n logNotifier) ImportError(event importer.ErrorEvent) {
	log.Printf("Row %d skipped: %s", event.Row, event.Error)
}

func (n logNotifier) ImportCompleted(event importer.CompletedEvent) {
	if n.verbose {
		log.Printf("%s", event.Message)
	}
}
