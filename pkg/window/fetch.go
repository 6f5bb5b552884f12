package window

import (
	"context"
	"errors"
	"fmt"

	"github.com/pluqqy/itemgrid/pkg/models"
	"github.com/pluqqy/itemgrid/pkg/source"
)

// ErrAborted marks a fetch cancelled by a reset. It is never counted as a
// failure.
var ErrAborted = errors.New("fetch aborted")

// Fetch is one page request issued by a Manager. It is immutable and safe
// to run on any goroutine.
type Fetch struct {
	ID         uint64
	Generation uint64
	// Span is the range of visible indices the page fills.
	Span Span
	// Offset and Count address the page in the backend result set.
	Offset  int
	Count   int
	Query   models.Query
	Attempt int

	ctx context.Context
	src source.Source
}

// Run performs the request. Cancellation surfaces as an error wrapping
// ErrAborted.
func (f Fetch) Run() Result {
	if f.src == nil {
		return Result{Fetch: f, Err: errors.New("fetch has no source")}
	}
	ctx := f.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	page, err := f.src.FetchRange(ctx, f.Query, f.Offset, f.Count)
	if err != nil && (ctx.Err() != nil || errors.Is(err, context.Canceled)) {
		err = fmt.Errorf("%w: %w", ErrAborted, err)
	}
	return Result{Fetch: f, Page: page, Err: err}
}

// Result is the completion of a Fetch, handed back to Manager.Complete.
type Result struct {
	Fetch Fetch
	Page  source.Page
	Err   error
}

// Signal is a connectivity change reported by Complete and Reset.
type Signal int

const (
	SignalNone Signal = iota
	SignalDegraded
	SignalRestored
)

func (s Signal) String() string {
	switch s {
	case SignalDegraded:
		return "degraded"
	case SignalRestored:
		return "restored"
	default:
		return "none"
	}
}

// Outcome tells the caller what a completed fetch changed.
type Outcome struct {
	// Fetches are retries that must be run.
	Fetches []Fetch
	Signal  Signal
	// Applied is true when records were added to the cache.
	Applied bool
	// Stale is true when the result belonged to an earlier generation and
	// was discarded.
	Stale bool
	// Err is the transient failure, if any. Aborts are not reported.
	Err error
}
