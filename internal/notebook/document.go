package notebook

import (
	"fmt"
	"sync"

	"nerdbook/internal/events"
)

// DocumentMetadata is document-wide metadata shared by every cell's derived
// state. TrackExecutionOrder controls whether code cells display their
// execution counter.
type DocumentMetadata struct {
	TrackExecutionOrder bool
	Custom              map[string]string
}

// Document owns an ordered sequence of cells plus document-wide metadata.
type Document struct {
	mu       sync.Mutex
	cells    []*Cell
	metadata DocumentMetadata

	// MetadataChanged fires on document-wide metadata updates.
	MetadataChanged events.Emitter[DocumentMetadata]
	// CellsChanged fires after any insert or remove, with the new length.
	CellsChanged events.Emitter[int]
}

// NewDocument creates an empty document with execution-order tracking on.
func NewDocument() *Document {
	return &Document{
		metadata: DocumentMetadata{TrackExecutionOrder: true},
	}
}

// Metadata returns a copy of the document metadata.
func (d *Document) Metadata() DocumentMetadata {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.metadata
}

// UpdateMetadata applies fn under lock and fires MetadataChanged.
func (d *Document) UpdateMetadata(fn func(*DocumentMetadata)) {
	d.mu.Lock()
	fn(&d.metadata)
	md := d.metadata
	d.mu.Unlock()
	d.MetadataChanged.Fire(md)
}

// Len returns the number of cells.
func (d *Document) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.cells)
}

// CellAt returns the cell at index i, or nil when out of range.
func (d *Document) CellAt(i int) *Cell {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.cells) {
		return nil
	}
	return d.cells[i]
}

// Cells returns a copy of the cell slice in document order.
func (d *Document) Cells() []*Cell {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Cell, len(d.cells))
	copy(out, d.cells)
	return out
}

// IndexOf returns the position of cell, or -1 when it is not in the document.
func (d *Document) IndexOf(cell *Cell) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, c := range d.cells {
		if c == cell {
			return i
		}
	}
	return -1
}

// Append adds a cell at the end of the document.
func (d *Document) Append(cell *Cell) {
	d.mu.Lock()
	d.cells = append(d.cells, cell)
	n := len(d.cells)
	d.mu.Unlock()
	d.CellsChanged.Fire(n)
}

// InsertAfter places cell immediately after the cell at index i. An index of
// -1 inserts at the front.
func (d *Document) InsertAfter(i int, cell *Cell) error {
	d.mu.Lock()
	if i < -1 || i >= len(d.cells) {
		d.mu.Unlock()
		return fmt.Errorf("insert after %d: index out of range (len %d)", i, len(d.cells))
	}
	at := i + 1
	d.cells = append(d.cells, nil)
	copy(d.cells[at+1:], d.cells[at:])
	d.cells[at] = cell
	n := len(d.cells)
	d.mu.Unlock()
	d.CellsChanged.Fire(n)
	return nil
}

// Remove deletes cell from the document. Removing a cell that is not in the
// document is a no-op.
func (d *Document) Remove(cell *Cell) {
	d.mu.Lock()
	for i, c := range d.cells {
		if c == cell {
			d.cells = append(d.cells[:i], d.cells[i+1:]...)
			n := len(d.cells)
			d.mu.Unlock()
			d.CellsChanged.Fire(n)
			return
		}
	}
	d.mu.Unlock()
}
