package tui

// ViewController tracks which rows of the virtual list are on screen. Only
// the visible rows are ever rendered; the offset is the index of the first.
type ViewController struct {
	offset  int
	height  int
	total   int
	counted bool
	buffer  int
	focused int
}

// NewViewController creates a controller that asks for buffer extra rows
// above and below the visible ones.
func NewViewController(buffer int) *ViewController {
	if buffer < 0 {
		buffer = 0
	}
	return &ViewController{buffer: buffer, focused: -1}
}

// SetHeight sets the number of visible rows.
func (v *ViewController) SetHeight(height int) {
	if height < 0 {
		height = 0
	}
	v.height = height
	v.clamp()
}

// Height returns the number of visible rows.
func (v *ViewController) Height() int {
	return v.height
}

// SetTotal sets the row count once it is known.
func (v *ViewController) SetTotal(total int, counted bool) {
	v.total, v.counted = total, counted
	v.clamp()
}

// Offset returns the index of the first visible row.
func (v *ViewController) Offset() int {
	return v.offset
}

// Focused returns the index focused by the last Focus call, or -1.
func (v *ViewController) Focused() int {
	return v.focused
}

// ScrollToIndex scrolls the least amount that makes index visible.
func (v *ViewController) ScrollToIndex(index int) {
	if index < 0 || v.height == 0 {
		return
	}
	if index < v.offset {
		v.offset = index
	} else if index >= v.offset+v.height {
		v.offset = index - v.height + 1
	}
	v.clamp()
}

// Reset scrolls back to the top and drops the focus.
func (v *ViewController) Reset() {
	v.offset = 0
	v.focused = -1
}

// CenterOn scrolls so that index sits in the middle of the view.
func (v *ViewController) CenterOn(index int) {
	if index < 0 {
		return
	}
	v.offset = index - v.height/2
	v.clamp()
}

// Focus marks index as the keyboard focus and scrolls it into view.
func (v *ViewController) Focus(index int) {
	v.focused = index
	v.ScrollToIndex(index)
}

// Scroll moves the view by delta rows.
func (v *ViewController) Scroll(delta int) {
	v.offset += delta
	v.clamp()
}

// RowAtLine maps a line of the row area to a row index.
func (v *ViewController) RowAtLine(line int) (int, bool) {
	if line < 0 || line >= v.height {
		return 0, false
	}
	index := v.offset + line
	if v.counted && index >= v.total {
		return 0, false
	}
	return index, true
}

// Rows returns the visible rows as [start, stop).
func (v *ViewController) Rows() (int, int) {
	stop := v.offset + v.height
	if v.counted && stop > v.total {
		stop = v.total
	}
	if stop < v.offset {
		stop = v.offset
	}
	return v.offset, stop
}

// LoadRange returns the rows that should be loaded as [start, stop): the
// visible ones widened by the buffer on both sides.
func (v *ViewController) LoadRange() (int, int) {
	start := max(v.offset-v.buffer, 0)
	stop := v.offset + v.height + v.buffer
	if v.counted {
		stop = min(stop, v.total)
	}
	return start, max(stop, start)
}

func (v *ViewController) clamp() {
	if v.counted {
		last := max(v.total-v.height, 0)
		if v.offset > last {
			v.offset = last
		}
	}
	if v.offset < 0 {
		v.offset = 0
	}
}
