package models

import (
	"errors"
	"hash/fnv"
	"strings"
)

// Tag-related errors
var (
	ErrEmptyTagName   = errors.New("tag name cannot be empty")
	ErrTagNameTooLong = errors.New("tag name cannot exceed 50 characters")
)

// MaxColoredTagShortcuts is the number of colored tags addressable by the
// digit keys 1-9.
const MaxColoredTagShortcuts = 9

// ColoredTag is a tag with an associated display color. The position in
// the library's list decides which digit toggles it.
type ColoredTag struct {
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color" json:"color"`
}

// DefaultColorPalette provides a curated set of colors for tags
var DefaultColorPalette = []string{
	"#e74c3c", // red
	"#3498db", // blue
	"#2ecc71", // green
	"#f39c12", // orange
	"#9b59b6", // purple
	"#1abc9c", // turquoise
	"#34495e", // dark gray
	"#e67e22", // dark orange
	"#f1c40f", // yellow
}

// DefaultTagColors returns the colored tags a fresh library starts with
func DefaultTagColors() []ColoredTag {
	names := []string{"important", "to-read", "reviewed", "cite", "draft"}
	tags := make([]ColoredTag, len(names))
	for i, n := range names {
		tags[i] = ColoredTag{Name: n, Color: DefaultColorPalette[i]}
	}
	return tags
}

// GetTagColor returns the configured color, or a consistent palette color
// generated from the tag name.
func GetTagColor(tagName string, registryColor string) string {
	if registryColor != "" {
		return registryColor
	}

	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(tagName)))
	hash := h.Sum32()

	return DefaultColorPalette[int(hash)%len(DefaultColorPalette)]
}

// ValidateTagName checks if a tag name is valid
func ValidateTagName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyTagName
	}
	if len(name) > 50 {
		return ErrTagNameTooLong
	}
	return nil
}

// ColoredTagsOf returns the colored tags present on a record, in library
// order.
func ColoredTagsOf(r Record, library []ColoredTag) []ColoredTag {
	var out []ColoredTag
	for _, ct := range library {
		if r.HasTag(ct.Name) {
			out = append(out, ct)
		}
	}
	return out
}
