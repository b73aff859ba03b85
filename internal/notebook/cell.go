// Package notebook defines the nerdbook document model: an ordered sequence
// of heterogeneous cells (Go code cells and markdown cells) plus the change
// notifications the rendering layer subscribes to. The model is passive; it
// never touches widgets or the terminal.
package notebook

import (
	"sync"

	"github.com/google/uuid"

	"nerdbook/internal/events"
)

// CellKind discriminates the two cell variants.
type CellKind int

const (
	// CodeCell holds executable Go source and execution outputs.
	CodeCell CellKind = iota
	// MarkupCell holds markdown content rendered to styled text.
	MarkupCell
)

// String returns the stable name used for template routing and context keys.
func (k CellKind) String() string {
	if k == MarkupCell {
		return "markup"
	}
	return "code"
}

// EditState applies to markup cells only.
type EditState int

const (
	// Preview shows the rendered markdown.
	Preview EditState = iota
	// Editing shows an editable text widget over the raw source.
	Editing
)

// String returns the context-key value for the edit state.
func (s EditState) String() string {
	if s == Editing {
		return "editing"
	}
	return "preview"
}

// RunState applies to code cells only.
type RunState int

const (
	RunIdle RunState = iota
	RunRunning
	RunSuccess
	RunError
)

// String returns the context-key value for the run state.
func (s RunState) String() string {
	switch s {
	case RunRunning:
		return "running"
	case RunSuccess:
		return "success"
	case RunError:
		return "error"
	}
	return "idle"
}

// CellMetadata is the per-cell metadata bag. ExecutionOrder is nil until the
// kernel assigns one.
type CellMetadata struct {
	Editable       bool
	Runnable       bool
	ExecutionOrder *int
	Custom         map[string]string
}

// Output is one unit of execution output attached to a code cell.
type Output struct {
	Text    string
	IsError bool
}

// Layout carries the geometry the renderer and the virtual list agree on.
type Layout struct {
	Height        int
	ToolbarOffset int
}

// Cell is one editable unit of a document. All mutation goes through the
// setters so that change notifications fire; the rendering layer relies on
// those notifications to keep derived state fresh.
type Cell struct {
	mu sync.Mutex

	id       string
	kind     CellKind
	viewType string
	source   string

	metadata  CellMetadata
	editState EditState
	runState  RunState
	outputs   []Output
	layout    Layout

	// Change notifications. Field names follow the event they report.
	MetadataChanged  events.Emitter[CellMetadata]
	EditStateChanged events.Emitter[EditState]
	RunStateChanged  events.Emitter[RunState]
	OutputsChanged   events.Emitter[[]Output]
	LayoutChanged    events.Emitter[Layout]
}

// NewCell creates a cell of the given kind with a fresh identity. Code cells
// default to runnable, markup cells to preview; both default to editable.
func NewCell(kind CellKind, source string) *Cell {
	return &Cell{
		id:       uuid.NewString(),
		kind:     kind,
		viewType: "nerdbook",
		source:   source,
		metadata: CellMetadata{
			Editable: true,
			Runnable: kind == CodeCell,
		},
	}
}

// ID returns the stable cell identity used for registry keys.
func (c *Cell) ID() string { return c.id }

// Kind returns the cell variant.
func (c *Cell) Kind() CellKind { return c.kind }

// ViewType identifies the hosting notebook view.
func (c *Cell) ViewType() string { return c.viewType }

// Source returns the current source buffer.
func (c *Cell) Source() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source
}

// SetSource replaces the source buffer. Source edits do not fire metadata
// notifications; the editor widget owns the buffer while a cell is bound.
func (c *Cell) SetSource(src string) {
	c.mu.Lock()
	c.source = src
	c.mu.Unlock()
}

// Metadata returns a copy of the cell metadata.
func (c *Cell) Metadata() CellMetadata {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metadata
}

// UpdateMetadata applies fn to the metadata under lock and fires
// MetadataChanged with the result.
func (c *Cell) UpdateMetadata(fn func(*CellMetadata)) {
	c.mu.Lock()
	fn(&c.metadata)
	md := c.metadata
	c.mu.Unlock()
	c.MetadataChanged.Fire(md)
}

// SetExecutionOrder records the kernel-assigned execution counter. Pass a
// negative value to clear it.
func (c *Cell) SetExecutionOrder(order int) {
	c.UpdateMetadata(func(md *CellMetadata) {
		if order < 0 {
			md.ExecutionOrder = nil
			return
		}
		o := order
		md.ExecutionOrder = &o
	})
}

// EditState returns the markup edit state.
func (c *Cell) EditState() EditState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editState
}

// SetEditState transitions between preview and editing and notifies.
func (c *Cell) SetEditState(s EditState) {
	c.mu.Lock()
	if c.editState == s {
		c.mu.Unlock()
		return
	}
	c.editState = s
	c.mu.Unlock()
	c.EditStateChanged.Fire(s)
}

// RunState returns the code run state.
func (c *Cell) RunState() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runState
}

// SetRunState transitions the run state and notifies.
func (c *Cell) SetRunState(s RunState) {
	c.mu.Lock()
	if c.runState == s {
		c.mu.Unlock()
		return
	}
	c.runState = s
	c.mu.Unlock()
	c.RunStateChanged.Fire(s)
}

// Outputs returns a copy of the current outputs.
func (c *Cell) Outputs() []Output {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Output, len(c.outputs))
	copy(out, c.outputs)
	return out
}

// AppendOutput adds one output and notifies.
func (c *Cell) AppendOutput(o Output) {
	c.mu.Lock()
	c.outputs = append(c.outputs, o)
	snapshot := make([]Output, len(c.outputs))
	copy(snapshot, c.outputs)
	c.mu.Unlock()
	c.OutputsChanged.Fire(snapshot)
}

// ClearOutputs drops all outputs and notifies.
func (c *Cell) ClearOutputs() {
	c.mu.Lock()
	c.outputs = nil
	c.mu.Unlock()
	c.OutputsChanged.Fire(nil)
}

// Layout returns the current geometry.
func (c *Cell) Layout() Layout {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layout
}

// SetLayout records new geometry and notifies.
func (c *Cell) SetLayout(l Layout) {
	c.mu.Lock()
	if c.layout == l {
		c.mu.Unlock()
		return
	}
	c.layout = l
	c.mu.Unlock()
	c.LayoutChanged.Fire(l)
}
