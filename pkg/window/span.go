package window

import "fmt"

// Span is a half-open index interval [Start, Stop).
type Span struct {
	Start int
	Stop  int
}

// Len returns the number of indices in the span.
func (s Span) Len() int {
	if s.Stop <= s.Start {
		return 0
	}
	return s.Stop - s.Start
}

// Empty reports whether the span holds no index.
func (s Span) Empty() bool {
	return s.Len() == 0
}

// Contains reports whether i lies inside the span.
func (s Span) Contains(i int) bool {
	return i >= s.Start && i < s.Stop
}

// Overlaps reports whether the spans share an index.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.Stop && o.Start < s.Stop
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.Stop)
}
