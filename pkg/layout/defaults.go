package layout

import (
	"math"

	"github.com/pluqqy/itemgrid/pkg/models"
)

type fieldDefault struct {
	field       string
	minFraction float64
	visible     bool
}

// defaultFields is the column set a fresh library starts with.
var defaultFields = []fieldDefault{
	{models.FieldTitle, 0.1, true},
	{models.FieldCreator, 0.05, true},
	{models.FieldYear, 0.05, true},
	{models.FieldItemType, 0.05, false},
	{models.FieldDateModified, 0.05, false},
}

// KnownField reports whether field is one the grid can render.
func KnownField(field string) bool {
	for _, d := range defaultFields {
		if d.field == field {
			return true
		}
	}
	return false
}

// Defaults returns the default layout: an even split across the visible
// default fields. Hidden fields get the same share so showing one later
// only needs a Normalize.
func Defaults() []models.Column {
	visible := 0
	for _, d := range defaultFields {
		if d.visible {
			visible++
		}
	}
	share := 1 / float64(visible)
	out := make([]models.Column, len(defaultFields))
	for i, d := range defaultFields {
		out[i] = models.Column{
			Field:       d.field,
			Fraction:    share,
			MinFraction: d.minFraction,
			IsVisible:   d.visible,
		}
	}
	return out
}

// FromPreferences validates a persisted layout. Missing or malformed
// preferences yield Defaults; known fields absent from an otherwise valid
// layout are appended hidden.
func FromPreferences(prefs []models.Column) []models.Column {
	if !wellFormed(prefs) {
		return Defaults()
	}
	out := clone(prefs)
	seen := make(map[string]bool, len(out))
	for _, c := range out {
		seen[c.Field] = true
	}
	defaults := Defaults()
	for _, d := range defaults {
		if !seen[d.Field] {
			d.IsVisible = false
			out = append(out, d)
		}
	}
	return out
}

func wellFormed(prefs []models.Column) bool {
	if len(prefs) == 0 {
		return false
	}
	seen := make(map[string]bool, len(prefs))
	visible := 0
	for _, c := range prefs {
		if !KnownField(c.Field) || seen[c.Field] {
			return false
		}
		seen[c.Field] = true
		if !finite(c.Fraction) || !finite(c.MinFraction) {
			return false
		}
		if c.Fraction < 0 || c.Fraction > 1 || c.MinFraction < 0 || c.MinFraction >= 1 {
			return false
		}
		if c.IsVisible {
			visible++
		}
	}
	return visible > 0
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
