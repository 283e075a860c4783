package importer

import (
	"fmt"
	"math"
)

// ProgressEvent reports how far an import run has advanced. It is ephemeral;
// nothing persists it.
type ProgressEvent struct {
	FileKey               string  `json:"fileKey"`
	RowsProcessed         int     `json:"rowsProcessed"`
	TotalEstimatedRecords int     `json:"totalEstimatedRecords"`
	CurrentBatch          int     `json:"currentBatch"`
	TotalBatches          int     `json:"totalBatches"`
	ProgressPercent       float64 `json:"progressPercent"`
	Message               string  `json:"message"`
}

// ErrorEvent reports a single skipped row. Row numbers are 1-based data row
// ordinals (the header row is not counted).
type ErrorEvent struct {
	FileKey string `json:"fileKey"`
	Row     int    `json:"row"`
	Error   string `json:"error"`
}

// CompletedEvent is the terminal notification of a successful run.
type CompletedEvent struct {
	FileKey          string `json:"fileKey"`
	TotalRecords     int    `json:"totalRecords"`
	TotalWeekColumns int    `json:"totalWeekColumns"`
	Message          string `json:"message"`
}

// Notifier delivers import lifecycle events to observers. Implementations
// must not block the caller; delivery failures are swallowed, never returned.
// The importer publishes, in order: zero or more progress events, zero or
// more error events interleaved, and exactly one completion event.
type Notifier interface {
	ImportProgress(event ProgressEvent)
	ImportError(event ErrorEvent)
	ImportCompleted(event CompletedEvent)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) ImportProgress(ProgressEvent)   {}
func (NopNotifier) ImportError(ErrorEvent)         {}
func (NopNotifier) ImportCompleted(CompletedEvent) {}

// ProgressEmitter builds and publishes the events of one run. The estimated
// totals come from the initial counting pass; the percentage is informational
// and may not reach 100 exactly when the two passes disagree about skipped
// rows.
type ProgressEmitter struct {
	notifier       Notifier
	fileKey        string
	totalEstimated int
	totalBatches   int
}

// NewProgressEmitter creates an emitter for one run.
func NewProgressEmitter(notifier Notifier, fileKey string, totalEstimated, totalBatches int) *ProgressEmitter {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ProgressEmitter{
		notifier:       notifier,
		fileKey:        fileKey,
		totalEstimated: totalEstimated,
		totalBatches:   totalBatches,
	}
}

// Progress publishes a progress event for the given counters.
func (e *ProgressEmitter) Progress(rowsProcessed, currentBatch int) {
	e.notifier.ImportProgress(ProgressEvent{
		FileKey:               e.fileKey,
		RowsProcessed:         rowsProcessed,
		TotalEstimatedRecords: e.totalEstimated,
		CurrentBatch:          currentBatch,
		TotalBatches:          e.totalBatches,
		ProgressPercent:       progressPercent(rowsProcessed, e.totalEstimated),
		Message: fmt.Sprintf("Processed %d of %d records (Batch %d/%d)",
			rowsProcessed, e.totalEstimated, currentBatch, e.totalBatches),
	})
}

// RowError publishes an error event for one skipped row.
func (e *ProgressEmitter) RowError(row int, err error) {
	e.notifier.ImportError(ErrorEvent{
		FileKey: e.fileKey,
		Row:     row,
		Error:   err.Error(),
	})
}

// Completed publishes the terminal completion event.
func (e *ProgressEmitter) Completed(totalRecords, totalWeekColumns int) {
	e.notifier.ImportCompleted(CompletedEvent{
		FileKey:          e.fileKey,
		TotalRecords:     totalRecords,
		TotalWeekColumns: totalWeekColumns,
		Message:          "Import completed successfully",
	})
}

// progressPercent returns rows/total*100 rounded to two decimals, or 0 when
// the estimate is unknown.
func progressPercent(rowsProcessed, totalEstimated int) float64 {
	if totalEstimated <= 0 {
		return 0
	}
	return math.Round(float64(rowsProcessed)/float64(totalEstimated)*100*100) / 100
}
