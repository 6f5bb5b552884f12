// Package drag turns pointer input on the grid header into column resize
// and reorder operations, keeping a transient preview until release.
package drag

import (
	"github.com/pluqqy/itemgrid/pkg/layout"
	"github.com/pluqqy/itemgrid/pkg/models"
	"github.com/pluqqy/itemgrid/pkg/throttle"
)

// State of the machine.
type State int

const (
	Idle State = iota
	Resizing
	Reordering
)

func (s State) String() string {
	switch s {
	case Resizing:
		return "resizing"
	case Reordering:
		return "reordering"
	default:
		return "idle"
	}
}

// HitKind classifies a header cell.
type HitKind int

const (
	HitNone HitKind = iota
	HitResizeHandle
	HitHeader
)

// Hit is the header element under the pointer.
type Hit struct {
	Kind HitKind
	// Column is the index among the visible columns.
	Column int
}

// HitTest locates x on a header of the visible columns laid out from left
// over width cells. The last cell of every column but the rightmost is its
// resize handle.
func HitTest(visible []models.Column, left, width, x int) Hit {
	if x < left || x >= left+width || len(visible) == 0 {
		return Hit{}
	}
	edges := layout.Edges(layout.Widths(visible, width), left)
	for i, edge := range edges {
		if x >= edge {
			continue
		}
		if x == edge-1 && i < len(edges)-1 {
			return Hit{Kind: HitResizeHandle, Column: i}
		}
		return Hit{Kind: HitHeader, Column: i}
	}
	return Hit{}
}

// CommitKind says what a release produced.
type CommitKind int

const (
	CommitNone CommitKind = iota
	CommitResize
	CommitReorder
)

// Commit is the result of a release.
type Commit struct {
	Kind CommitKind
	// Columns is the full column list to persist.
	Columns []models.Column
	// Click is true when a header press was released without moving.
	// Resize handle presses never click.
	Click bool
	// Column is the visible index the session started on.
	Column int
}

// Machine is the drag state machine. It is driven from the UI goroutine.
type Machine struct {
	state   State
	limiter *throttle.Limiter

	base    []models.Column
	visible []models.Column
	column  int
	originX int
	left    int
	width   int
	moved   bool

	preview   []models.Column
	target    layout.Target
	hasTarget bool

	settling bool
}

// New creates an idle machine. Moves are rate-limited by limiter.
func New(limiter *throttle.Limiter) *Machine {
	if limiter == nil {
		limiter = throttle.New(0, nil)
	}
	return &Machine{limiter: limiter}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Active reports whether a drag session is open.
func (m *Machine) Active() bool {
	return m.state != Idle
}

// Settling reports whether a session was released and Settle has not been
// called yet.
func (m *Machine) Settling() bool {
	return m.settling
}

// Column returns the visible index of the dragged column.
func (m *Machine) Column() int {
	return m.column
}

// Preview returns the previewed visible columns during a resize, or nil.
func (m *Machine) Preview() []models.Column {
	return m.preview
}

// Target returns the drop target during a reorder.
func (m *Machine) Target() (layout.Target, bool) {
	if m.state != Reordering {
		return layout.Target{}, false
	}
	return m.target, m.hasTarget
}

// Press starts a session when hit is a resize handle or a header cell.
// columns is the full column list; left and width describe the header.
func (m *Machine) Press(columns []models.Column, hit Hit, x, left, width int) bool {
	if m.state != Idle || width <= 0 {
		return false
	}
	visible := layout.Visible(columns)
	if hit.Column < 0 || hit.Column >= len(visible) {
		return false
	}
	switch hit.Kind {
	case HitResizeHandle:
		m.state = Resizing
	case HitHeader:
		m.state = Reordering
	default:
		return false
	}
	m.base = columns
	m.visible = visible
	m.column = hit.Column
	m.originX = x
	m.left = left
	m.width = width
	m.moved = false
	m.preview = nil
	m.hasTarget = false
	m.settling = false
	m.limiter.Reset()
	return true
}

// Move feeds a pointer position. It returns true when the preview was
// recomputed now and false when the move was throttled or ignored; a
// throttled move is kept and applied on release.
func (m *Machine) Move(x int) bool {
	if m.state == Idle {
		return false
	}
	if x != m.originX {
		m.moved = true
	}
	return m.limiter.Do(func() { m.apply(x) })
}

func (m *Machine) apply(x int) {
	switch m.state {
	case Resizing:
		m.preview = layout.PreviewResize(m.visible, m.column, float64(x-m.originX), float64(m.width))
	case Reordering:
		m.target, m.hasTarget = layout.PreviewReorder(m.visible, float64(x), float64(m.left), float64(m.width), m.column)
	}
}

// Flush applies a move suppressed by the limiter, if any.
func (m *Machine) Flush() bool {
	if m.state == Idle {
		return false
	}
	return m.limiter.Flush()
}

// Release ends the session and returns what to commit. The machine is idle
// afterwards but keeps its preview until Settle.
func (m *Machine) Release() Commit {
	if m.state == Idle {
		return Commit{}
	}
	m.limiter.Flush()
	commit := Commit{Click: m.state == Reordering && !m.moved, Column: m.column}
	switch m.state {
	case Resizing:
		if m.preview != nil && m.moved {
			commit.Kind = CommitResize
			commit.Columns = layout.CommitResize(m.base, m.preview)
		}
	case Reordering:
		if m.hasTarget && m.moved {
			commit.Kind = CommitReorder
			commit.Columns = layout.CommitReorder(m.base, m.visible[m.column].Field, m.visible[m.target.Index].Field)
		}
	}
	m.state = Idle
	m.hasTarget = false
	m.settling = true
	return commit
}

// Leave aborts the session without committing.
func (m *Machine) Leave() {
	if m.state == Idle {
		return
	}
	m.limiter.Reset()
	m.state = Idle
	m.preview = nil
	m.hasTarget = false
	m.settling = false
}

// Settle clears the preview kept after a release.
func (m *Machine) Settle() {
	m.settling = false
	if m.state == Idle {
		m.preview = nil
	}
}
