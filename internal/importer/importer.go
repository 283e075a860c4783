package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/mvasilenko/spreadhub/internal/entities"
)

// DefaultBatchSize is the number of rows accumulated before a persist cycle.
const DefaultBatchSize = 2000

// ErrMissingHeader is returned when the source has no header row at all.
var ErrMissingHeader = errors.New("source has no header row")

// Sink is the persistence collaborator batches are written to. Resources are
// always persisted before the crafts derived from them. A persist failure is
// fatal to the whole run.
type Sink interface {
	PersistResources(ctx context.Context, resources []entities.ResourceSpread) error
	PersistCrafts(ctx context.Context, crafts []entities.CraftSpread) error
}

// Summary is the terminal result of one import run.
type Summary struct {
	FileKey          string `json:"fileKey"`
	Revision         string `json:"revision"`
	TotalRecords     int    `json:"totalRecords"`
	TotalWeekColumns int    `json:"totalWeekColumns"`
}

// Importer drives the streaming import pipeline: count pass, header
// classification, row loop with per-row fault isolation, batched persistence,
// progress events. One Importer may serve many runs; each run owns its own
// accumulator and counters, so concurrent runs with distinct revisions are
// independent.
type Importer struct {
	sink      Sink
	notifier  Notifier
	batchSize int
}

// New creates an importer. A nil notifier discards events; a batchSize of
// zero or less falls back to DefaultBatchSize.
func New(sink Sink, notifier Notifier, batchSize int) *Importer {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Importer{sink: sink, notifier: notifier, batchSize: batchSize}
}

// NewRevision mints the revision token stamped on every record of one run.
// Revisions sort lexicographically in time order, which is what the
// latest-revision query relies on.
func NewRevision(now time.Time) string {
	return now.UTC().Format("20060102150405")
}

// Run executes one import. Rows are processed strictly sequentially in source
// order. A failure to read a single row is reported and skipped; an
// unreadable source, a missing header, or a persist failure aborts the run
// without a completion event.
func (im *Importer) Run(ctx context.Context, fileKey string, src Source) (*Summary, error) {
	revision := NewRevision(time.Now())

	totalEstimated, err := im.countRows(src)
	if err != nil {
		return nil, err
	}
	totalBatches := (totalEstimated + im.batchSize - 1) / im.batchSize

	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer rc.Close()

	reader := newCSVReader(rc)
	headers, err := readHeader(reader)
	if err != nil {
		return nil, err
	}

	cls := Classify(headers)
	emitter := NewProgressEmitter(im.notifier, fileKey, totalEstimated, totalBatches)
	batch := NewBatch(im.batchSize)

	log.Printf("Import %s: revision %s, %d estimated rows, %d weekly columns",
		fileKey, revision, totalEstimated, cls.WeekCount())

	rowsProcessed := 0
	currentBatch := 0
	rowNum := 0 // 1-based data row ordinal, header excluded

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			// The reader recovers at the next line; only this row is lost.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				emitter.RowError(rowNum, err)
				continue
			}
			return nil, fmt.Errorf("read row %d: %w", rowNum, err)
		}

		resource, crafts := TransformRow(rawRow(headers, record), cls, revision)
		batch.Add(resource, crafts)
		rowsProcessed++

		if batch.ShouldFlush() {
			currentBatch++
			if err := im.persist(ctx, batch); err != nil {
				return nil, err
			}
			emitter.Progress(rowsProcessed, currentBatch)
		}
	}

	if batch.Rows() > 0 {
		currentBatch++
		if err := im.persist(ctx, batch); err != nil {
			return nil, err
		}
		emitter.Progress(rowsProcessed, currentBatch)
	}

	emitter.Completed(rowsProcessed, cls.WeekCount())

	return &Summary{
		FileKey:          fileKey,
		Revision:         revision,
		TotalRecords:     rowsProcessed,
		TotalWeekColumns: cls.WeekCount(),
	}, nil
}

// persist writes the drained batch to the sink, resources first, and resets
// the accumulator only after both writes succeeded.
func (im *Importer) persist(ctx context.Context, batch *Batch) error {
	resources, crafts := batch.Drain()
	if len(resources) > 0 {
		if err := im.sink.PersistResources(ctx, resources); err != nil {
			return fmt.Errorf("persist resources: %w", err)
		}
	}
	if len(crafts) > 0 {
		if err := im.sink.PersistCrafts(ctx, crafts); err != nil {
			return fmt.Errorf("persist crafts: %w", err)
		}
	}
	batch.Flush()
	return nil
}

// countRows performs the cheap first pass: read and discard the header, then
// count the remaining structurally valid lines. Nothing is persisted here.
func (im *Importer) countRows(src Source) (int, error) {
	rc, err := src.Open()
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer rc.Close()

	reader := newCSVReader(rc)
	if _, err := readHeader(reader); err != nil {
		return 0, err
	}

	count := 0
	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return 0, fmt.Errorf("count rows: %w", err)
		}
		count++
	}
	return count, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // week column counts vary between exports
	return reader
}

// readHeader reads and trims the header row. An empty source is a fatal
// missing-header condition, distinct from a header-only file.
func readHeader(reader *csv.Reader) ([]string, error) {
	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}
	// Excel exports routinely carry a UTF-8 byte order mark.
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}
	return headers, nil
}

// rawRow pairs a record's cells with their header names. Short records leave
// trailing columns absent; surplus cells beyond the header width are dropped.
func rawRow(headers, record []string) RawRow {
	row := make(RawRow, len(headers))
	for i, h := range headers {
		if i < len(record) {
			row[h] = strings.TrimSpace(record[i])
		}
	}
	return row
}
