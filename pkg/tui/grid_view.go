package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/pluqqy/itemgrid/pkg/drag"
	"github.com/pluqqy/itemgrid/pkg/layout"
	"github.com/pluqqy/itemgrid/pkg/models"
)

func (m *GridModel) View() string {
	if m.width == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	m.rows.SetContent(m.renderRows())
	b.WriteString(m.rows.View())
	b.WriteString("\n")

	if m.search.Active() {
		b.WriteString(m.search.View())
	} else {
		b.WriteString(m.renderInfo())
	}
	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	}
	return b.String()
}

// displayColumns returns the visible columns, with the resize preview
// applied while one is shown.
func (m *GridModel) displayColumns() []models.Column {
	if preview := m.drag.Preview(); preview != nil {
		return preview
	}
	return layout.Visible(m.columns)
}

func (m *GridModel) renderHeader() string {
	visible := m.displayColumns()
	_, width := m.gridBounds()
	widths := layout.Widths(visible, width)
	q := m.window.Query()
	target, hasTarget := m.drag.Target()
	reordering := m.drag.State() == drag.Reordering

	var b strings.Builder
	b.WriteString(noCursorMarker)
	for i, c := range visible {
		label := models.ColumnLabel(c.Field)
		if c.Field == q.SortBy {
			label += " " + GetSortIndicator(q.Direction == models.SortDesc)
		}
		style := HeaderStyle
		switch {
		case reordering && i == m.drag.Column():
			style = DraggedHeaderStyle
		case hasTarget && i == target.Index:
			style = DropTargetStyle
		}
		last := i == len(visible)-1
		b.WriteString(style.Render(fitCell(label, cellWidth(widths[i], last))))
		if !last {
			b.WriteString(SeparatorStyle.Render(columnSeparator))
		}
	}
	return b.String()
}

// cellWidth is the room for text in a column; every column but the last
// ends in a separator.
func cellWidth(width int, last bool) int {
	if last {
		return max(width, 0)
	}
	return max(width-1, 0)
}

// fitCell truncates or pads text to exactly width cells
func fitCell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(text) > width {
		text = truncate.StringWithTail(text, uint(width), ellipsis)
	}
	if pad := width - lipgloss.Width(text); pad > 0 {
		text += strings.Repeat(" ", pad)
	}
	return text
}

func (m *GridModel) renderRows() string {
	if total, ok := m.window.Total(); ok && total == 0 {
		text := "No items in this library"
		if m.window.Query().Text != "" {
			text = "No items match the search"
		}
		return EmptyStyle.Render(noCursorMarker + text)
	}

	visible := m.displayColumns()
	_, width := m.gridBounds()
	widths := layout.Widths(visible, width)
	cursor := m.selection.Cursor()
	highlighted := m.highlightedTags()

	start, stop := m.view.Rows()
	lines := make([]string, 0, stop-start)
	for i := start; i < stop; i++ {
		lines = append(lines, m.renderRow(m.RowAt(i), visible, widths, i == cursor, highlighted))
	}
	return strings.Join(lines, "\n")
}

func (m *GridModel) renderRow(row models.Row, visible []models.Column, widths []int, isCursor bool, highlighted map[string]bool) string {
	var b strings.Builder
	if isCursor {
		b.WriteString(CursorStyle.Render(cursorMarker))
	} else {
		b.WriteString(noCursorMarker)
	}

	loaded, isLoaded := row.(models.LoadedRow)
	style := PlaceholderStyle
	if isLoaded {
		switch {
		case m.selection.Contains(loaded.Record.Key):
			style = SelectedStyle
		case sharesTag(loaded.Record, highlighted):
			style = HighlightStyle
		default:
			style = NormalStyle
		}
	}

	for i, c := range visible {
		last := i == len(visible)-1
		w := cellWidth(widths[i], last)
		switch {
		case !isLoaded && i == 0:
			b.WriteString(style.Render(fitCell(placeholderGlyph, w)))
		case !isLoaded:
			b.WriteString(fitCell("", w))
		case c.Field == models.FieldTitle:
			b.WriteString(m.renderTitle(loaded.Record, w, style))
		default:
			b.WriteString(style.Render(fitCell(loaded.Record.CellValue(c.Field), w)))
		}
		if !last {
			b.WriteString(SeparatorStyle.Render(columnSeparator))
		}
	}
	return b.String()
}

// renderTitle prefixes the title with one emblem per colored tag: the
// first tag gets a full dot, the rest half dots.
func (m *GridModel) renderTitle(r models.Record, width int, style lipgloss.Style) string {
	colored := models.ColoredTagsOf(r, m.tags)
	emblemWidth := 0
	if len(colored) > 0 {
		emblemWidth = len(colored) + 1
	}
	if emblemWidth == 0 || emblemWidth >= width {
		return style.Render(fitCell(r.Title, width))
	}

	var b strings.Builder
	for i, ct := range colored {
		emblem := otherTagEmblem
		if i == 0 {
			emblem = firstTagEmblem
		}
		b.WriteString(GetTagEmblemStyle(models.GetTagColor(ct.Name, ct.Color)).Render(emblem))
	}
	b.WriteString(" ")
	b.WriteString(style.Render(fitCell(r.Title, width-emblemWidth)))
	return b.String()
}

// highlightedTags returns the colored tags carried by the selection while
// the highlight key is down.
func (m *GridModel) highlightedTags() map[string]bool {
	if !m.highlight {
		return nil
	}
	out := make(map[string]bool)
	for _, r := range m.selection.Records() {
		for _, ct := range models.ColoredTagsOf(r, m.tags) {
			out[strings.ToLower(ct.Name)] = true
		}
	}
	return out
}

func sharesTag(r models.Record, tags map[string]bool) bool {
	if len(tags) == 0 {
		return false
	}
	for _, t := range r.Tags {
		if tags[strings.ToLower(t)] {
			return true
		}
	}
	return false
}

func (m *GridModel) renderInfo() string {
	q := m.window.Query()
	var parts []string

	if total, ok := m.window.Total(); ok {
		parts = append(parts, pluralize(total, "item"))
	} else {
		parts = append(parts, m.spinner.View()+" Loading items...")
	}
	parts = append(parts, fmt.Sprintf("sorted by %s %s", models.ColumnLabel(q.SortBy), GetSortIndicator(q.Direction == models.SortDesc)))
	if q.Text != "" {
		parts = append(parts, fmt.Sprintf("search %q", q.Text))
	}
	if n := m.selection.Len(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	if m.drag.Active() {
		visible := layout.Visible(m.columns)
		if c := m.drag.Column(); c < len(visible) {
			parts = append(parts, fmt.Sprintf("%s %s", m.drag.State(), models.ColumnLabel(visible[c].Field)))
		}
	}

	info := DescriptionStyle.Render(strings.Join(parts, " · "))
	if m.window.Degraded() {
		info = DegradedStyle.Render("offline") + " " + info
	}
	if m.highlight {
		info += " " + HighlightStyle.Render("highlight")
	}

	helpHint := DescriptionStyle.Render("? help")
	gap := m.width - lipgloss.Width(info) - lipgloss.Width(helpHint)
	if gap < 1 {
		return info
	}
	return info + strings.Repeat(" ", gap) + helpHint
}
