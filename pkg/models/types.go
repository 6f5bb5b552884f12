package models

import (
	"strconv"
	"strings"
	"time"
)

// Record is a single library item as delivered by a data source.
// The grid only relies on Key and Tags; everything else is display data.
type Record struct {
	Key          string    `json:"key" yaml:"key"`
	Title        string    `json:"title" yaml:"title"`
	Creator      string    `json:"creator" yaml:"creator"`
	Year         int       `json:"year,omitempty" yaml:"year,omitempty"`
	ItemType     string    `json:"item_type" yaml:"item_type"`
	DateModified time.Time `json:"date_modified" yaml:"date_modified"`
	Tags         []string  `json:"tags" yaml:"tags"`
}

// HasTag reports whether the record carries the named tag.
func (r Record) HasTag(name string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	return false
}

// Row is what the renderer receives for an index. It is either a
// LoadedRow or a PlaceholderRow, never nil.
type Row interface {
	rowIndex() int
}

// LoadedRow wraps a cached record.
type LoadedRow struct {
	Index  int
	Record Record
}

// PlaceholderRow stands in for an index whose record has not arrived yet.
type PlaceholderRow struct {
	Index int
}

func (r LoadedRow) rowIndex() int      { return r.Index }
func (r PlaceholderRow) rowIndex() int { return r.Index }

// RowIndex returns the logical index a row was built for.
func RowIndex(r Row) int {
	return r.rowIndex()
}

// SortDirection orders a result set
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Toggle returns the opposite direction.
func (d SortDirection) Toggle() SortDirection {
	if d == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// Query identifies the active result set. Two queries with the same Text
// describe the same set even if they sort it differently.
type Query struct {
	Text      string        `yaml:"text,omitempty" json:"text,omitempty"`
	SortBy    string        `yaml:"sort_by" json:"sort_by"`
	Direction SortDirection `yaml:"sort_direction" json:"sort_direction"`
}

// SameSet reports whether q and other address the same records.
func (q Query) SameSet(other Query) bool {
	return strings.TrimSpace(q.Text) == strings.TrimSpace(other.Text)
}

// Column fields understood by the grid and the data sources.
const (
	FieldTitle        = "title"
	FieldCreator      = "creator"
	FieldYear         = "year"
	FieldItemType     = "itemType"
	FieldDateModified = "dateModified"
)

// Column is one entry of the persisted column layout. Order is the slice
// position the column is stored at.
type Column struct {
	Field       string  `yaml:"field" json:"field"`
	Fraction    float64 `yaml:"fraction" json:"fraction"`
	MinFraction float64 `yaml:"min_fraction" json:"min_fraction"`
	IsVisible   bool    `yaml:"is_visible" json:"is_visible"`
}

// ColumnLabel returns the header text for a field.
func ColumnLabel(field string) string {
	switch field {
	case FieldTitle:
		return "Title"
	case FieldCreator:
		return "Creator"
	case FieldYear:
		return "Year"
	case FieldItemType:
		return "Item Type"
	case FieldDateModified:
		return "Date Modified"
	default:
		return field
	}
}

// CellValue formats the value of field for display.
func (r Record) CellValue(field string) string {
	switch field {
	case FieldTitle:
		return r.Title
	case FieldCreator:
		return r.Creator
	case FieldYear:
		if r.Year == 0 {
			return ""
		}
		return strconv.Itoa(r.Year)
	case FieldItemType:
		return r.ItemType
	case FieldDateModified:
		if r.DateModified.IsZero() {
			return ""
		}
		return r.DateModified.Format("2006-01-02 15:04")
	default:
		return ""
	}
}
