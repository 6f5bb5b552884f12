// Package selection tracks the selected records and the cursor of a grid
// and turns navigation keys into cursor moves.
package selection

import (
	"slices"

	"github.com/pluqqy/itemgrid/pkg/models"
)

// NoRecord is returned by moves that did not land on a loaded record.
const NoRecord = -1

// Lookup resolves positions of the current result set. window.Manager
// implements it.
type Lookup interface {
	Len() int
	KeyAt(index int) (string, bool)
	IndexOf(key string) int
	Record(index int) (models.Record, bool)
}

type move struct {
	target int
	extend bool
}

// Controller owns the selection set and the cursor. Selected records are
// held by key so they survive re-sorts; positions are resolved through
// the Lookup on demand.
type Controller struct {
	lookup Lookup

	keys []string
	set  map[string]bool

	cursorKey   string
	cursorIndex int
	anchorKey   string
	anchorIndex int

	pending *move
}

// New creates an empty selection over lookup.
func New(lookup Lookup) *Controller {
	return &Controller{
		lookup:      lookup,
		set:         make(map[string]bool),
		cursorIndex: NoRecord,
		anchorIndex: NoRecord,
	}
}

// SetLookup swaps the lookup, e.g. after the window was replaced.
func (c *Controller) SetLookup(lookup Lookup) {
	c.lookup = lookup
}

// Keys returns the selected keys in insertion order.
func (c *Controller) Keys() []string {
	return slices.Clone(c.keys)
}

// Len returns the number of selected records.
func (c *Controller) Len() int {
	return len(c.keys)
}

// Empty reports whether nothing is selected.
func (c *Controller) Empty() bool {
	return len(c.keys) == 0
}

// Contains reports whether key is selected.
func (c *Controller) Contains(key string) bool {
	return c.set[key]
}

// Cursor returns the cursor index, or NoRecord.
func (c *Controller) Cursor() int {
	return c.resolve(c.cursorKey, c.cursorIndex)
}

// CursorKey returns the key under the cursor, if any.
func (c *Controller) CursorKey() string {
	return c.cursorKey
}

func (c *Controller) resolve(key string, fallback int) int {
	if key != "" {
		if i := c.lookup.IndexOf(key); i >= 0 {
			return i
		}
	}
	if fallback >= c.lookup.Len() {
		return NoRecord
	}
	return fallback
}

func (c *Controller) replace(keys ...string) {
	c.keys = c.keys[:0]
	clear(c.set)
	for _, k := range keys {
		c.add(k)
	}
}

func (c *Controller) add(key string) {
	if c.set[key] {
		return
	}
	c.set[key] = true
	c.keys = append(c.keys, key)
}

func (c *Controller) remove(key string) {
	if !c.set[key] {
		return
	}
	delete(c.set, key)
	c.keys = slices.DeleteFunc(c.keys, func(k string) bool { return k == key })
}

func (c *Controller) setCursor(key string, index int) {
	c.cursorKey, c.cursorIndex = key, index
}

func (c *Controller) setAnchor(key string, index int) {
	c.anchorKey, c.anchorIndex = key, index
}

// Toggle selects key. Without multi the selection becomes exactly {key};
// with multi the membership of key is flipped. The cursor and the range
// anchor move to key either way.
func (c *Controller) Toggle(key string, multi bool) {
	c.pending = nil
	index := c.lookup.IndexOf(key)
	if !multi {
		c.replace(key)
	} else if c.set[key] {
		c.remove(key)
	} else {
		c.add(key)
	}
	c.setCursor(key, index)
	c.setAnchor(key, index)
}

// Set replaces the selection with keys, placing the cursor on the first.
func (c *Controller) Set(keys []string) {
	c.pending = nil
	c.replace(keys...)
	if len(keys) == 0 {
		c.setCursor("", NoRecord)
		c.setAnchor("", NoRecord)
		return
	}
	index := c.lookup.IndexOf(keys[0])
	c.setCursor(keys[0], index)
	c.setAnchor(keys[0], index)
}

// Navigate moves the cursor by direction*magnitude rows, clamped to the
// result set. Without extend the selection collapses to the record under
// the new cursor; with extend the rows between the anchor and the new
// cursor are added. It returns the new cursor index, or NoRecord when the
// set is empty or the target row is not loaded. In the latter case the move
// is remembered and finished by Resume.
func (c *Controller) Navigate(direction, magnitude int, extend bool) int {
	n := c.lookup.Len()
	if n == 0 {
		return NoRecord
	}
	if magnitude < 1 {
		magnitude = 1
	}
	var target int
	switch cur := c.Cursor(); {
	case cur == NoRecord && direction < 0:
		target = n - magnitude
	case cur == NoRecord:
		target = magnitude - 1
	case direction < 0:
		target = cur - magnitude
	default:
		target = cur + magnitude
	}
	return c.moveTo(clamp(target, 0, n-1), extend)
}

// SelectFirst collapses the selection to the first record.
func (c *Controller) SelectFirst() int {
	if c.lookup.Len() == 0 {
		return NoRecord
	}
	return c.moveTo(0, false)
}

// SelectLast collapses the selection to the last record.
func (c *Controller) SelectLast() int {
	n := c.lookup.Len()
	if n == 0 {
		return NoRecord
	}
	return c.moveTo(n-1, false)
}

// ExtendTo adds the rows between the anchor and index, moving the cursor
// to index.
func (c *Controller) ExtendTo(index int) int {
	n := c.lookup.Len()
	if n == 0 || index < 0 {
		return NoRecord
	}
	return c.moveTo(clamp(index, 0, n-1), true)
}

func (c *Controller) moveTo(target int, extend bool) int {
	key, ok := c.lookup.KeyAt(target)
	if !ok {
		c.pending = &move{target: target, extend: extend}
		return NoRecord
	}
	c.pending = nil

	if !extend {
		c.replace(key)
		c.setCursor(key, target)
		c.setAnchor(key, target)
		return target
	}

	anchor := c.resolve(c.anchorKey, c.anchorIndex)
	if anchor == NoRecord {
		anchor = c.Cursor()
	}
	if anchor == NoRecord {
		anchor = target
		c.setAnchor(key, target)
	}
	lo, hi := min(anchor, target), max(anchor, target)
	step := 1
	from, to := lo, hi
	if target < anchor {
		// keep insertion order running away from the anchor
		step, from, to = -1, hi, lo
	}
	for i := from; ; i += step {
		if k, ok := c.lookup.KeyAt(i); ok {
			c.add(k)
		}
		if i == to {
			break
		}
	}
	c.setCursor(key, target)
	return target
}

// PendingTarget returns the index a move is waiting on.
func (c *Controller) PendingTarget() (int, bool) {
	if c.pending == nil {
		return NoRecord, false
	}
	return c.pending.target, true
}

// Resume finishes a move that was waiting for its row to load. It returns
// the resolved cursor index and true once the row is available.
func (c *Controller) Resume() (int, bool) {
	if c.pending == nil {
		return NoRecord, false
	}
	p := *c.pending
	n := c.lookup.Len()
	if n == 0 {
		return NoRecord, false
	}
	if p.target >= n {
		p.target = n - 1
	}
	if _, ok := c.lookup.KeyAt(p.target); !ok {
		return NoRecord, false
	}
	return c.moveTo(p.target, p.extend), true
}

// Prune drops selected keys for which exists returns false.
func (c *Controller) Prune(exists func(key string) bool) {
	for _, k := range slices.Clone(c.keys) {
		if !exists(k) {
			c.remove(k)
		}
	}
	if c.cursorKey != "" && !exists(c.cursorKey) {
		c.setCursor("", NoRecord)
	}
	if c.anchorKey != "" && !exists(c.anchorKey) {
		c.setAnchor("", NoRecord)
	}
}

// Clear empties the selection and drops the cursor.
func (c *Controller) Clear() {
	c.pending = nil
	c.replace()
	c.setCursor("", NoRecord)
	c.setAnchor("", NoRecord)
}

// Records returns the loaded records of the selection in selection order.
func (c *Controller) Records() []models.Record {
	out := make([]models.Record, 0, len(c.keys))
	for _, k := range c.keys {
		if i := c.lookup.IndexOf(k); i >= 0 {
			if r, ok := c.lookup.Record(i); ok {
				out = append(out, r)
			}
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
