// Package layout models column widths as fractions of the available width.
//
// Every function takes a column slice and returns a fresh slice; inputs are
// never mutated. Functions operating on "visible" columns expect the
// caller to pass only the visible subset (see Visible), in display order.
package layout

import (
	"math"
	"slices"
	"sort"

	"github.com/pluqqy/itemgrid/pkg/models"
)

const (
	// Epsilon is the tolerance for Σ fraction == 1.
	Epsilon = 1e-6

	// absorbThreshold is the remaining delta below which a single column
	// takes all of it instead of splitting further.
	absorbThreshold = 0.001

	// maxIterations caps the even-split passes before the remaining
	// delta is force-assigned.
	maxIterations = 10

	// residual is treated as zero when the loop subtracts floats.
	residual = 1e-12
)

// Target describes where a dragged header would land.
type Target struct {
	Index       int
	MovingRight bool
	MovingLeft  bool
}

func clone(columns []models.Column) []models.Column {
	return slices.Clone(columns)
}

// Visible returns copies of the visible columns in display order.
func Visible(columns []models.Column) []models.Column {
	out := make([]models.Column, 0, len(columns))
	for _, c := range columns {
		if c.IsVisible {
			out = append(out, c)
		}
	}
	return out
}

// Sum returns Σ fraction over columns.
func Sum(columns []models.Column) float64 {
	var total float64
	for _, c := range columns {
		total += c.Fraction
	}
	return total
}

// Valid reports whether columns sum to one and respect their minimums.
func Valid(columns []models.Column) bool {
	if len(columns) == 0 {
		return true
	}
	if math.Abs(Sum(columns)-1) >= Epsilon {
		return false
	}
	for _, c := range columns {
		if c.Fraction < c.MinFraction-Epsilon {
			return false
		}
	}
	return true
}

func clampColumn(c *models.Column) {
	if math.IsNaN(c.MinFraction) || math.IsInf(c.MinFraction, 0) || c.MinFraction < 0 {
		c.MinFraction = 0
	}
	if c.MinFraction > 1 {
		c.MinFraction = 1
	}
	if math.IsNaN(c.Fraction) || math.IsInf(c.Fraction, -1) || c.Fraction < c.MinFraction {
		c.Fraction = c.MinFraction
	}
	if c.Fraction > 1 {
		c.Fraction = 1
	}
}

func slack(columns []models.Column) float64 {
	var total float64
	for _, c := range columns {
		total += c.Fraction - c.MinFraction
	}
	return total
}

// Normalize redistributes the difference between Σ fraction and one
// evenly across the columns, never shrinking a column below its minimum.
//
// When the minimums alone exceed one the columns cannot satisfy both
// constraints; fractions are then set proportionally to the minimums so
// the sum is still exactly one.
func Normalize(columns []models.Column) []models.Column {
	out := clone(columns)
	n := len(out)
	if n == 0 {
		return out
	}
	for i := range out {
		clampColumn(&out[i])
	}

	diff := Sum(out) - 1 // overflow if positive, underflow if negative
	if math.Abs(diff) < Epsilon {
		return out
	}
	if diff > 0 && diff > slack(out)+residual {
		return scaleToMinimums(out)
	}

	adjustEachBy := diff / float64(n)
	for iteration := 1; math.Abs(diff) > residual; iteration++ {
		if iteration > maxIterations*4 {
			absorbGreedy(out, diff)
			break
		}
		for i := range out {
			available := out[i].Fraction - out[i].MinFraction
			if (math.Abs(diff) < absorbThreshold || iteration > maxIterations) && available > diff {
				out[i].Fraction -= diff
				diff = 0
				break
			}
			reduceBy := math.Min(available, adjustEachBy)
			diff -= reduceBy
			out[i].Fraction -= reduceBy
		}
		adjustEachBy = diff / float64(n)
	}
	return out
}

// absorbGreedy takes diff out of the columns left to right, each up to its
// slack.
func absorbGreedy(columns []models.Column, diff float64) {
	for i := range columns {
		if diff <= residual {
			return
		}
		take := math.Min(columns[i].Fraction-columns[i].MinFraction, diff)
		if take <= 0 {
			continue
		}
		columns[i].Fraction -= take
		diff -= take
	}
}

func scaleToMinimums(columns []models.Column) []models.Column {
	var total float64
	for _, c := range columns {
		total += c.MinFraction
	}
	for i := range columns {
		if total <= 0 {
			columns[i].Fraction = 1 / float64(len(columns))
			continue
		}
		columns[i].Fraction = columns[i].MinFraction / total
	}
	return columns
}

// PreviewResize moves the right edge of columns[index] by delta cells of a
// container that is containerWidth cells wide. The other columns absorb
// the change so Σ fraction is preserved.
func PreviewResize(columns []models.Column, index int, delta, containerWidth float64) []models.Column {
	out := clone(columns)
	if index < 0 || index >= len(out) || containerWidth <= 0 {
		return out
	}

	offset := delta / containerWidth
	before := out[index].Fraction
	out[index].Fraction = math.Max(before+offset, out[index].MinFraction)
	applied := out[index].Fraction - before

	leftover := redistribute(out, index, -applied)
	out[index].Fraction += leftover
	return out
}

// redistribute applies change to the columns other than skip and returns
// the part that could not be applied. Shrinking starts at the right-hand
// neighbour and walks away from skip; growth goes to the nearest neighbour.
func redistribute(columns []models.Column, skip int, change float64) float64 {
	order := neighbourOrder(len(columns), skip)
	if len(order) == 0 {
		return change
	}
	if change >= 0 {
		columns[order[0]].Fraction += change
		return 0
	}

	remaining := -change
	for _, i := range order {
		take := math.Min(columns[i].Fraction-columns[i].MinFraction, remaining)
		if take <= 0 {
			continue
		}
		columns[i].Fraction -= take
		remaining -= take
		if remaining <= residual {
			return 0
		}
	}
	return -remaining
}

func neighbourOrder(n, skip int) []int {
	order := make([]int, 0, n)
	for i := skip + 1; i < n; i++ {
		order = append(order, i)
	}
	for i := skip - 1; i >= 0; i-- {
		order = append(order, i)
	}
	return order
}

// PreviewReorder finds the column a header dragged from draggedIndex would
// be dropped on. The target only flips once the pointer crosses the middle
// of the neighbouring column, which keeps it from oscillating at edges.
// ok is false when the drop would be a no-op.
func PreviewReorder(columns []models.Column, pointerX, containerLeft, containerWidth float64, draggedIndex int) (Target, bool) {
	if len(columns) == 0 {
		return Target{}, false
	}

	prevColumnEdge, columnEdge := containerLeft, containerLeft
	var columnWidth float64
	targetIndex := -1

	if pointerX < containerLeft {
		targetIndex = 0
	} else {
		for i, c := range columns {
			columnWidth = c.Fraction * containerWidth
			prevColumnEdge = columnEdge
			columnEdge += columnWidth
			if pointerX < columnEdge {
				targetIndex = i
				break
			}
		}
		if targetIndex == -1 {
			targetIndex = len(columns) - 1
		}
	}

	isMovingRight := targetIndex > draggedIndex
	isMovingLeft := targetIndex < draggedIndex

	if isMovingRight && pointerX < prevColumnEdge+0.5*columnWidth {
		targetIndex--
	}
	if isMovingLeft && pointerX > columnEdge-0.5*columnWidth {
		targetIndex++
	}

	if targetIndex == draggedIndex {
		return Target{}, false
	}
	return Target{Index: targetIndex, MovingRight: isMovingRight, MovingLeft: isMovingLeft}, true
}

// CommitResize copies the fractions of the previewed visible columns into
// the full column list. Hidden columns keep their stored values.
func CommitResize(base, preview []models.Column) []models.Column {
	fractions := make(map[string]float64, len(preview))
	for _, c := range preview {
		fractions[c.Field] = c.Fraction
	}
	out := clone(base)
	for i := range out {
		if f, ok := fractions[out[i].Field]; ok {
			out[i].Fraction = f
		}
	}
	return out
}

// CommitReorder moves the column for fromField to the position currently
// held by toField. Unknown fields leave the list unchanged.
func CommitReorder(base []models.Column, fromField, toField string) []models.Column {
	out := clone(base)
	indexFrom := slices.IndexFunc(out, func(c models.Column) bool { return c.Field == fromField })
	indexTo := slices.IndexFunc(out, func(c models.Column) bool { return c.Field == toField })
	if indexFrom < 0 || indexTo < 0 || indexFrom == indexTo {
		return out
	}
	moved := out[indexFrom]
	out = slices.Delete(out, indexFrom, indexFrom+1)
	return slices.Insert(out, indexTo, moved)
}

// Widths converts fractions into integer cell widths summing to width,
// handing leftover cells to the largest remainders.
func Widths(columns []models.Column, width int) []int {
	widths := make([]int, len(columns))
	if len(columns) == 0 || width <= 0 {
		return widths
	}

	total := Sum(columns)
	if total <= 0 {
		total = 1
	}
	type remainder struct {
		index int
		frac  float64
	}
	rems := make([]remainder, len(columns))
	used := 0
	for i, c := range columns {
		exact := c.Fraction / total * float64(width)
		widths[i] = int(math.Floor(exact))
		used += widths[i]
		rems[i] = remainder{index: i, frac: exact - float64(widths[i])}
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for i := 0; used < width; i++ {
		widths[rems[i%len(rems)].index]++
		used++
	}
	return widths
}

// Edges returns the right edge (exclusive) of each column in cells,
// starting from left.
func Edges(widths []int, left int) []int {
	edges := make([]int, len(widths))
	x := left
	for i, w := range widths {
		x += w
		edges[i] = x
	}
	return edges
}
