// Package source provides the data sources a grid window loads pages from.
package source

import (
	"context"
	"errors"
	"strings"

	"github.com/pluqqy/itemgrid/pkg/models"
)

// ErrNotFound is returned by Locator when the key is not in the result set.
var ErrNotFound = errors.New("record not found")

// Page is one slice of an ordered result set.
type Page struct {
	Records []models.Record `json:"records"`
	// Total is the size of the complete result set, not of this page.
	Total int `json:"total"`
}

// Source serves pages of an ordered result set.
//
// Implementations must be safe for concurrent use: the grid may have
// several fetches outstanding. When ctx is cancelled FetchRange must
// return an error wrapping ctx.Err().
type Source interface {
	FetchRange(ctx context.Context, q models.Query, offset, count int) (Page, error)
}

// Tagger is implemented by sources that can edit record tags.
type Tagger interface {
	UpdateTags(ctx context.Context, keys []string, add, remove []string) error
}

// Trasher is implemented by sources that can move records to the trash.
type Trasher interface {
	Trash(ctx context.Context, keys []string) error
}

// Inserter is implemented by sources that can store new records.
type Inserter interface {
	Insert(ctx context.Context, records []models.Record) error
}

// Locator is implemented by sources that can find the position of a key
// in a result set.
type Locator interface {
	IndexOf(ctx context.Context, q models.Query, key string) (int, error)
}

// SortFields lists the fields a result set can be ordered by, in the order
// the grid cycles through them.
var SortFields = []string{
	models.FieldTitle,
	models.FieldCreator,
	models.FieldYear,
	models.FieldItemType,
	models.FieldDateModified,
}

// NextSortField returns the sort field after current.
func NextSortField(current string) string {
	for i, f := range SortFields {
		if f == current {
			return SortFields[(i+1)%len(SortFields)]
		}
	}
	return SortFields[0]
}

func matches(r models.Record, text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Title), text) ||
		strings.Contains(strings.ToLower(r.Creator), text)
}

// applyTags returns tags with add appended (case-insensitive, no
// duplicates) and remove dropped.
func applyTags(tags, add, remove []string) []string {
	out := make([]string, 0, len(tags)+len(add))
	for _, t := range tags {
		if !containsFold(remove, t) {
			out = append(out, t)
		}
	}
	for _, t := range add {
		if !containsFold(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
