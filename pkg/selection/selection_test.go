package selection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluqqy/itemgrid/pkg/models"
)

// fakeLookup is a result set of n records of which only loaded ones can be
// addressed.
type fakeLookup struct {
	records []models.Record
	loaded  map[int]bool
}

func newLookup(n int, loadAll bool) *fakeLookup {
	l := &fakeLookup{loaded: make(map[int]bool)}
	for i := 0; i < n; i++ {
		l.records = append(l.records, models.Record{Key: fmt.Sprintf("k%d", i)})
		if loadAll {
			l.loaded[i] = true
		}
	}
	return l
}

func (l *fakeLookup) Len() int { return len(l.records) }

func (l *fakeLookup) KeyAt(i int) (string, bool) {
	if !l.loaded[i] {
		return "", false
	}
	return l.records[i].Key, true
}

func (l *fakeLookup) IndexOf(key string) int {
	for i, r := range l.records {
		if r.Key == key && l.loaded[i] {
			return i
		}
	}
	return -1
}

func (l *fakeLookup) Record(i int) (models.Record, bool) {
	if !l.loaded[i] {
		return models.Record{}, false
	}
	return l.records[i], true
}

func validateSelection(t *testing.T, c *Controller, cursor int, keys ...string) {
	t.Helper()
	if got := c.Cursor(); got != cursor {
		t.Errorf("cursor = %d, want %d", got, cursor)
	}
	if keys == nil {
		keys = []string{}
	}
	got := c.Keys()
	if got == nil {
		got = []string{}
	}
	assert.Equal(t, keys, got)
}

func TestHomeOnEmptySelection(t *testing.T) {
	c := New(newLookup(10, true))
	require.True(t, c.Empty())

	assert.Equal(t, 0, c.SelectFirst())
	validateSelection(t, c, 0, "k0")
}

func TestSelectLast(t *testing.T) {
	c := New(newLookup(10, true))
	assert.Equal(t, 9, c.SelectLast())
	validateSelection(t, c, 9, "k9")
}

func TestEmptyResultSet(t *testing.T) {
	c := New(newLookup(0, true))
	assert.Equal(t, NoRecord, c.SelectFirst())
	assert.Equal(t, NoRecord, c.SelectLast())
	assert.Equal(t, NoRecord, c.Navigate(1, 1, false))
	_, pending := c.PendingTarget()
	assert.False(t, pending)
}

func TestNavigateDownClamps(t *testing.T) {
	for _, n := range []int{1, 2, 5, 20} {
		for i := 0; i < n; i++ {
			t.Run(fmt.Sprintf("n=%d/i=%d", n, i), func(t *testing.T) {
				c := New(newLookup(n, true))
				c.Toggle(fmt.Sprintf("k%d", i), false)
				want := min(i+1, n-1)
				assert.Equal(t, want, c.Navigate(1, 1, false))
				validateSelection(t, c, want, fmt.Sprintf("k%d", want))
			})
		}
	}
}

func TestNavigate(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		direction int
		magnitude int
		want      int
	}{
		{"up one", "k5", -1, 1, 4},
		{"up clamps at zero", "k1", -1, 5, 0},
		{"page down", "k2", 1, 5, 7},
		{"page down clamps", "k7", 1, 5, 9},
		{"zero magnitude moves one", "k3", 1, 0, 4},
		{"no cursor moving down", "", 1, 1, 0},
		{"no cursor moving up", "", -1, 1, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(newLookup(10, true))
			if tt.start != "" {
				c.Toggle(tt.start, false)
			}
			assert.Equal(t, tt.want, c.Navigate(tt.direction, tt.magnitude, false))
		})
	}
}

func TestToggleSingleton(t *testing.T) {
	c := New(newLookup(10, true))
	c.Toggle("k1", true)
	c.Toggle("k2", true)
	c.Toggle("k3", true)
	require.Equal(t, 3, c.Len())

	c.Toggle("k7", false)
	validateSelection(t, c, 7, "k7")

	c.Toggle("k7", false)
	validateSelection(t, c, 7, "k7")
}

func TestToggleMulti(t *testing.T) {
	c := New(newLookup(10, true))
	c.Toggle("k4", true)
	c.Toggle("k1", true)
	c.Toggle("k8", true)
	validateSelection(t, c, 8, "k4", "k1", "k8")

	c.Toggle("k1", true)
	validateSelection(t, c, 1, "k4", "k8")
	assert.False(t, c.Contains("k1"))
	assert.True(t, c.Contains("k8"))
}

func TestExtend(t *testing.T) {
	c := New(newLookup(10, true))
	c.Toggle("k3", false)

	assert.Equal(t, 4, c.Navigate(1, 1, true))
	assert.Equal(t, 5, c.Navigate(1, 1, true))
	validateSelection(t, c, 5, "k3", "k4", "k5")

	// moving back past the anchor keeps the rows already added
	assert.Equal(t, 1, c.Navigate(-1, 4, true))
	validateSelection(t, c, 1, "k3", "k4", "k5", "k2", "k1")
}

func TestExtendTo(t *testing.T) {
	c := New(newLookup(10, true))
	c.Toggle("k6", false)
	assert.Equal(t, 3, c.ExtendTo(3))
	validateSelection(t, c, 3, "k6", "k5", "k4", "k3")

	assert.Equal(t, NoRecord, c.ExtendTo(-1))
}

func TestNavigateToUnloadedRowWaits(t *testing.T) {
	l := newLookup(100, false)
	for i := 0; i < 10; i++ {
		l.loaded[i] = true
	}
	c := New(l)
	c.Toggle("k2", false)

	assert.Equal(t, NoRecord, c.SelectLast())
	target, ok := c.PendingTarget()
	require.True(t, ok)
	assert.Equal(t, 99, target)
	validateSelection(t, c, 2, "k2")

	_, ok = c.Resume()
	assert.False(t, ok)

	l.loaded[99] = true
	idx, ok := c.Resume()
	require.True(t, ok)
	assert.Equal(t, 99, idx)
	validateSelection(t, c, 99, "k99")
	_, ok = c.PendingTarget()
	assert.False(t, ok)
}

func TestPrune(t *testing.T) {
	c := New(newLookup(10, true))
	c.Toggle("k1", true)
	c.Toggle("k2", true)
	c.Toggle("k3", true)

	c.Prune(func(key string) bool { return key != "k3" && key != "k1" })
	assert.Equal(t, []string{"k2"}, c.Keys())
	assert.Equal(t, "", c.CursorKey())
}

func TestClearAndSet(t *testing.T) {
	c := New(newLookup(10, true))
	c.Set([]string{"k4", "k5"})
	validateSelection(t, c, 4, "k4", "k5")

	c.Clear()
	validateSelection(t, c, NoRecord)
	assert.True(t, c.Empty())

	c.Set(nil)
	validateSelection(t, c, NoRecord)
}

func TestToggleColoredTagByIndex(t *testing.T) {
	library := models.DefaultTagColors()
	l := newLookup(5, true)
	l.records[1].Tags = []string{"important"}
	l.records[2].Tags = []string{"Important"}
	c := New(l)

	_, ok := c.ToggleColoredTagByIndex(0, library)
	assert.False(t, ok, "empty selection")

	c.Toggle("k1", true)
	c.Toggle("k2", true)
	change, ok := c.ToggleColoredTagByIndex(0, library)
	require.True(t, ok)
	assert.Equal(t, TagChange{Keys: []string{"k1", "k2"}, Remove: []string{"important"}}, change)

	c.Toggle("k3", true)
	change, ok = c.ToggleColoredTagByIndex(0, library)
	require.True(t, ok)
	assert.Equal(t, []string{"important"}, change.Add)
	assert.Empty(t, change.Remove)

	_, ok = c.ToggleColoredTagByIndex(len(library), library)
	assert.False(t, ok)
	_, ok = c.ToggleColoredTagByIndex(-1, library)
	assert.False(t, ok)
}

func TestClearColoredTags(t *testing.T) {
	library := models.DefaultTagColors()
	c := New(newLookup(3, true))
	_, ok := c.ClearColoredTags(library)
	assert.False(t, ok)

	c.Toggle("k0", false)
	change, ok := c.ClearColoredTags(library)
	require.True(t, ok)
	assert.Equal(t, []string{"k0"}, change.Keys)
	assert.Len(t, change.Remove, len(library))
}

func TestTagChangeApply(t *testing.T) {
	change := TagChange{Keys: []string{"a"}, Add: []string{"cite"}, Remove: []string{"DRAFT"}}

	got := change.Apply(models.Record{Key: "a", Tags: []string{"draft", "misc"}})
	assert.Equal(t, []string{"misc", "cite"}, got.Tags)

	untouched := change.Apply(models.Record{Key: "b", Tags: []string{"draft"}})
	assert.Equal(t, []string{"draft"}, untouched.Tags)
}
