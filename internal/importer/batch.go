package importer

import "github.com/mvasilenko/spreadhub/internal/entities"

// Batch buffers transformed records until a row-count threshold is reached.
// The threshold counts rows added, not craft records: one row may contribute
// many weekly values to the same batch.
//
// The only correct usage pattern is drain-then-flush: the caller persists
// everything Drain returned and only then calls Flush. Flushing without a
// prior persist of the drained content loses data.
type Batch struct {
	threshold int
	rows      int
	resources []entities.ResourceSpread
	crafts    []entities.CraftSpread
}

// NewBatch creates an empty accumulator with the given row threshold.
func NewBatch(threshold int) *Batch {
	return &Batch{threshold: threshold}
}

// Add buffers one row's records.
func (b *Batch) Add(resource entities.ResourceSpread, crafts []entities.CraftSpread) {
	b.resources = append(b.resources, resource)
	b.crafts = append(b.crafts, crafts...)
	b.rows++
}

// Rows returns the number of rows buffered since the last flush.
func (b *Batch) Rows() int {
	return b.rows
}

// ShouldFlush reports whether the buffered row count reached the threshold.
func (b *Batch) ShouldFlush() bool {
	return b.rows >= b.threshold
}

// Drain returns all records buffered since the last flush, in insertion
// order. Ownership of the returned slices passes to the caller.
func (b *Batch) Drain() ([]entities.ResourceSpread, []entities.CraftSpread) {
	return b.resources, b.crafts
}

// Flush resets the accumulator to empty.
func (b *Batch) Flush() {
	b.resources = nil
	b.crafts = nil
	b.rows = 0
}
