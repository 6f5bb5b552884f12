package selection

import (
	"slices"
	"strings"

	"github.com/pluqqy/itemgrid/pkg/models"
)

// TagChange is a pending edit of the tags of a set of records.
type TagChange struct {
	Keys   []string
	Add    []string
	Remove []string
}

// Apply returns r with the change applied when r is one of the keys.
func (tc TagChange) Apply(r models.Record) models.Record {
	if !slices.Contains(tc.Keys, r.Key) {
		return r
	}
	tags := make([]string, 0, len(r.Tags)+len(tc.Add))
	for _, t := range r.Tags {
		if !containsFold(tc.Remove, t) {
			tags = append(tags, t)
		}
	}
	for _, t := range tc.Add {
		if !containsFold(tags, t) {
			tags = append(tags, t)
		}
	}
	r.Tags = tags
	return r
}

// ToggleColoredTagByIndex toggles colored tag n (0-8, digit key n+1) on
// the selection: removed when every loaded selected record carries it,
// added otherwise. It reports false when n addresses no colored tag or
// nothing is selected.
func (c *Controller) ToggleColoredTagByIndex(n int, library []models.ColoredTag) (TagChange, bool) {
	if n < 0 || n >= models.MaxColoredTagShortcuts || n >= len(library) || c.Empty() {
		return TagChange{}, false
	}
	name := library[n].Name
	records := c.Records()
	all := len(records) > 0
	for _, r := range records {
		if !r.HasTag(name) {
			all = false
			break
		}
	}
	change := TagChange{Keys: c.Keys()}
	if all {
		change.Remove = []string{name}
	} else {
		change.Add = []string{name}
	}
	return change, true
}

// ClearColoredTags removes every colored tag from the selection.
func (c *Controller) ClearColoredTags(library []models.ColoredTag) (TagChange, bool) {
	if c.Empty() || len(library) == 0 {
		return TagChange{}, false
	}
	names := make([]string, len(library))
	for i, ct := range library {
		names[i] = ct.Name
	}
	return TagChange{Keys: c.Keys(), Remove: names}, true
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
