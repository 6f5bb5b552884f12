// Package window keeps a sparse, incrementally loaded view over a remote
// ordered result set.
//
// A Manager is owned by one goroutine (the bubbletea Update loop). It
// decides which pages to fetch and hands them out as Fetch values; the
// caller runs them elsewhere and feeds each Result back through Complete.
package window

import (
	"context"
	"errors"
	"slices"
	"sort"

	"github.com/rs/zerolog"

	"github.com/pluqqy/itemgrid/pkg/models"
	"github.com/pluqqy/itemgrid/pkg/source"
)

// Options tunes retry and connectivity tracking.
type Options struct {
	// RetryLimit is how many times a failed page is retried automatically.
	RetryLimit int
	// DegradedThreshold is the number of consecutive failures tolerated
	// before connectivity is reported degraded.
	DegradedThreshold int
	Logger            zerolog.Logger
}

// DefaultOptions returns the options used when settings do not override them.
func DefaultOptions() Options {
	return Options{
		RetryLimit:        1,
		DegradedThreshold: 3,
		Logger:            zerolog.Nop(),
	}
}

type pendingSpan struct {
	id   uint64
	span Span
}

// Manager tracks the loaded window of one query.
type Manager struct {
	src   source.Source
	query models.Query
	opts  Options
	log   zerolog.Logger

	records map[int]models.Record
	keys    map[string]int
	pending []pendingSpan
	inject  []int

	backendTotal int
	counted      bool

	errorCount int
	degraded   bool

	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
	nextID     uint64
	lastIssued uint64

	aborted  map[uint64]bool
	deferred []Fetch

	last    Span
	hasLast bool
}

// New creates an empty window over src for q.
func New(src source.Source, q models.Query, opts Options) *Manager {
	if opts.RetryLimit < 0 {
		opts.RetryLimit = 0
	}
	if opts.DegradedThreshold <= 0 {
		opts.DegradedThreshold = DefaultOptions().DegradedThreshold
	}
	m := &Manager{
		src:     src,
		query:   q,
		opts:    opts,
		log:     opts.Logger.With().Str("component", "window").Logger(),
		records: make(map[int]models.Record),
		keys:    make(map[string]int),
		aborted: make(map[uint64]bool),
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// Query returns the active query.
func (m *Manager) Query() models.Query {
	return m.query
}

// Total returns the size of the logical sequence and whether it is known.
func (m *Manager) Total() (int, bool) {
	if !m.counted {
		return 0, false
	}
	return m.backendTotal + len(m.inject), true
}

// Len returns the number of addressable rows. While uncounted only
// injected rows are addressable.
func (m *Manager) Len() int {
	if total, ok := m.Total(); ok {
		return total
	}
	return len(m.inject)
}

// IsLoaded reports whether index holds a cached record.
func (m *Manager) IsLoaded(index int) bool {
	if index < 0 {
		return false
	}
	if total, ok := m.Total(); ok && index >= total {
		return false
	}
	_, ok := m.records[index]
	return ok
}

// Record returns the cached record at index.
func (m *Manager) Record(index int) (models.Record, bool) {
	if !m.IsLoaded(index) {
		return models.Record{}, false
	}
	return m.records[index], true
}

// KeyAt returns the key of the cached record at index.
func (m *Manager) KeyAt(index int) (string, bool) {
	r, ok := m.Record(index)
	if !ok {
		return "", false
	}
	return r.Key, true
}

// IndexOf returns the index of a cached key, or -1.
func (m *Manager) IndexOf(key string) int {
	if i, ok := m.keys[key]; ok {
		return i
	}
	return -1
}

// UpdateRecord replaces the cached copy of rec, matched by key.
func (m *Manager) UpdateRecord(rec models.Record) bool {
	i, ok := m.keys[rec.Key]
	if !ok {
		return false
	}
	m.records[i] = rec
	return true
}

// Pending returns the in-flight spans in index order.
func (m *Manager) Pending() []Span {
	out := make([]Span, len(m.pending))
	for i, p := range m.pending {
		out[i] = p.span
	}
	return out
}

// ErrorCount returns the number of consecutive failed fetches.
func (m *Manager) ErrorCount() int {
	return m.errorCount
}

// Degraded reports whether degraded connectivity has been signalled and
// not yet cleared.
func (m *Manager) Degraded() bool {
	return m.degraded
}

// LastRequested returns the most recent window passed to RequestRange.
func (m *Manager) LastRequested() (Span, bool) {
	return m.last, m.hasLast
}

// InjectPoints returns the indices of injected rows.
func (m *Manager) InjectPoints() []int {
	return slices.Clone(m.inject)
}

func (m *Manager) isPending(index int) bool {
	for _, p := range m.pending {
		if p.span.Contains(index) {
			return true
		}
	}
	return false
}

// RequestRange makes sure every index in [start, stop) is cached or in
// flight. It returns the fetches the caller must run; indices already
// cached or pending are never requested again.
func (m *Manager) RequestRange(start, stop int) []Fetch {
	if start < 0 {
		start = 0
	}
	if stop <= start {
		return nil
	}
	m.last, m.hasLast = Span{Start: start, Stop: stop}, true

	if total, ok := m.Total(); ok && stop > total {
		stop = total
	}

	var fetches []Fetch
	run := Span{Start: -1}
	flush := func() {
		if run.Start < 0 {
			return
		}
		fetches = append(fetches, m.issue(run))
		run = Span{Start: -1}
	}
	for i := start; i < stop; i++ {
		if _, cached := m.records[i]; cached || m.isPending(i) {
			flush()
			continue
		}
		if run.Start < 0 {
			run = Span{Start: i, Stop: i + 1}
		} else {
			run.Stop = i + 1
		}
	}
	flush()
	return fetches
}

// backendOffset maps a visible index to its backend offset by discounting
// the injected rows before it.
func (m *Manager) backendOffset(index int) int {
	n := sort.SearchInts(m.inject, index)
	return index - n
}

// visibleIndex is the inverse of backendOffset for non-injected rows.
func (m *Manager) visibleIndex(offset int) int {
	v := offset
	for _, p := range m.inject {
		if p > v {
			break
		}
		v++
	}
	return v
}

func (m *Manager) issue(span Span) Fetch {
	m.nextID++
	f := Fetch{
		ID:         m.nextID,
		Generation: m.generation,
		Span:       span,
		Offset:     m.backendOffset(span.Start),
		Count:      span.Len(),
		Query:      m.query,
		ctx:        m.ctx,
		src:        m.src,
	}
	m.lastIssued = f.ID
	m.addPending(pendingSpan{id: f.ID, span: span})
	m.log.Debug().
		Uint64("id", f.ID).
		Stringer("span", span).
		Int("offset", f.Offset).
		Msg("fetch issued")
	return f
}

// reissue repeats f under a new id. The backend page is the same; the
// pending spans are taken over as they are now, since an injection may have
// moved or split them after f was issued.
func (m *Manager) reissue(f Fetch) Fetch {
	spans := m.pendingFor(f.ID)
	m.dropPending(f.ID)

	m.nextID++
	retry := f
	retry.ID = m.nextID
	retry.Attempt = f.Attempt + 1
	retry.ctx = m.ctx
	retry.Span = Span{Start: spans[0].Start, Stop: spans[len(spans)-1].Stop}
	m.lastIssued = retry.ID
	for _, s := range spans {
		m.addPending(pendingSpan{id: retry.ID, span: s})
	}
	m.log.Debug().
		Uint64("id", retry.ID).
		Stringer("span", retry.Span).
		Int("attempt", retry.Attempt).
		Msg("fetch retried")
	return retry
}

func (m *Manager) addPending(p pendingSpan) {
	i := sort.Search(len(m.pending), func(i int) bool {
		return m.pending[i].span.Start >= p.span.Start
	})
	m.pending = slices.Insert(m.pending, i, p)
}

func (m *Manager) pendingFor(id uint64) []Span {
	var out []Span
	for _, p := range m.pending {
		if p.id == id {
			out = append(out, p.span)
		}
	}
	return out
}

func (m *Manager) dropPending(id uint64) {
	m.pending = slices.DeleteFunc(m.pending, func(p pendingSpan) bool {
		return p.id == id
	})
}

// Complete applies the result of a fetch previously returned by this
// manager.
func (m *Manager) Complete(res Result) Outcome {
	f := res.Fetch
	if f.Generation != m.generation {
		return m.settleAborted(f)
	}

	spans := m.pendingFor(f.ID)
	if len(spans) == 0 {
		// already superseded, e.g. by a retry
		return Outcome{Stale: true}
	}

	if res.Err != nil {
		if errors.Is(res.Err, ErrAborted) {
			m.dropPending(f.ID)
			return Outcome{}
		}
		return m.fail(f, res.Err)
	}

	m.dropPending(f.ID)
	m.counted = true
	m.backendTotal = res.Page.Total
	inSpans := func(i int) bool {
		for _, s := range spans {
			if s.Contains(i) {
				return true
			}
		}
		return false
	}
	applied := false
	for k, rec := range res.Page.Records {
		v := m.visibleIndex(f.Offset + k)
		if !inSpans(v) {
			continue
		}
		if _, cached := m.records[v]; cached {
			continue
		}
		m.records[v] = rec
		m.keys[rec.Key] = v
		applied = true
	}
	m.trimBeyondTotal()

	out := Outcome{Applied: applied}
	m.errorCount = 0
	if m.degraded {
		m.degraded = false
		out.Signal = SignalRestored
		m.log.Info().Msg("connectivity restored")
	}
	return out
}

func (m *Manager) fail(f Fetch, err error) Outcome {
	m.errorCount++
	out := Outcome{Err: err}
	m.log.Warn().
		Err(err).
		Uint64("id", f.ID).
		Stringer("span", f.Span).
		Int("errors", m.errorCount).
		Msg("fetch failed")

	if f.ID == m.lastIssued && f.Attempt < m.opts.RetryLimit {
		retry := m.reissue(f)
		if len(m.aborted) > 0 {
			m.deferred = append(m.deferred, retry)
		} else {
			out.Fetches = append(out.Fetches, retry)
		}
	} else {
		m.dropPending(f.ID)
	}

	if m.errorCount > m.opts.DegradedThreshold && !m.degraded {
		m.degraded = true
		out.Signal = SignalDegraded
		m.log.Warn().Int("errors", m.errorCount).Msg("connectivity degraded")
	}
	return out
}

// settleAborted handles a result from an earlier generation. Once every
// aborted fetch has settled, retries held back in the meantime are released.
func (m *Manager) settleAborted(f Fetch) Outcome {
	out := Outcome{Stale: true}
	if !m.aborted[f.ID] {
		return out
	}
	delete(m.aborted, f.ID)
	if len(m.aborted) == 0 && len(m.deferred) > 0 {
		out.Fetches = m.deferred
		m.deferred = nil
	}
	return out
}

func (m *Manager) trimBeyondTotal() {
	total, ok := m.Total()
	if !ok {
		return
	}
	for i, rec := range m.records {
		if i >= total {
			delete(m.records, i)
			delete(m.keys, rec.Key)
		}
	}
}

// Abort cancels every in-flight fetch without touching the cache. It is
// what Reset does first. Retries still held back were never handed out,
// so they are dropped instead of awaited.
func (m *Manager) Abort() {
	held := make(map[uint64]bool, len(m.deferred))
	for _, f := range m.deferred {
		held[f.ID] = true
	}
	for _, p := range m.pending {
		if !held[p.id] {
			m.aborted[p.id] = true
		}
	}
	m.pending = nil
	m.deferred = nil
	m.cancel()
	m.generation++
	m.ctx, m.cancel = context.WithCancel(context.Background())
}

// Reset discards the whole window and re-requests the last requested
// range. In-flight fetches are cancelled; their results will be stale.
// The outcome carries the new fetches and SignalRestored when the window
// was degraded.
func (m *Manager) Reset() Outcome {
	var out Outcome
	m.Abort()
	m.records = make(map[int]models.Record)
	m.keys = make(map[string]int)
	m.inject = nil
	m.backendTotal = 0
	m.counted = false
	m.errorCount = 0
	if m.degraded {
		m.degraded = false
		out.Signal = SignalRestored
		m.log.Info().Msg("connectivity restored by reset")
	}
	m.log.Debug().Uint64("generation", m.generation).Msg("window reset")
	if m.hasLast {
		out.Fetches = m.RequestRange(m.last.Start, m.last.Stop)
	}
	return out
}

// SetQuery switches the window to q. The window is reset when the sort
// or the text differs; identityChanged is true when the text differs, i.e.
// the result set itself is a different one.
func (m *Manager) SetQuery(q models.Query) (changed, identityChanged bool, out Outcome) {
	identityChanged = !q.SameSet(m.query)
	changed = identityChanged || q.SortBy != m.query.SortBy || q.Direction != m.query.Direction
	if !changed {
		return false, false, Outcome{}
	}
	m.query = q
	return true, identityChanged, m.Reset()
}

// Close cancels every in-flight fetch.
func (m *Manager) Close() {
	m.cancel()
}

// Inject splices a locally created record into the sequence at index.
// Cached rows, pending spans and later injected rows at or after index
// move down by one.
func (m *Manager) Inject(index int, rec models.Record) {
	if index < 0 {
		index = 0
	}
	if total, ok := m.Total(); ok && index > total {
		index = total
	}

	shifted := make(map[int]models.Record, len(m.records)+1)
	for i, r := range m.records {
		if i >= index {
			i++
		}
		shifted[i] = r
	}
	shifted[index] = rec
	m.records = shifted
	m.keys = make(map[string]int, len(shifted))
	for i, r := range shifted {
		m.keys[r.Key] = i
	}

	var pending []pendingSpan
	for _, p := range m.pending {
		s := p.span
		switch {
		case s.Stop <= index:
			pending = append(pending, p)
		case s.Start >= index:
			pending = append(pending, pendingSpan{id: p.id, span: Span{Start: s.Start + 1, Stop: s.Stop + 1}})
		default:
			pending = append(pending,
				pendingSpan{id: p.id, span: Span{Start: s.Start, Stop: index}},
				pendingSpan{id: p.id, span: Span{Start: index + 1, Stop: s.Stop + 1}},
			)
		}
	}
	m.pending = pending

	points := make([]int, 0, len(m.inject)+1)
	for _, p := range m.inject {
		if p >= index {
			p++
		}
		points = append(points, p)
	}
	points = append(points, index)
	sort.Ints(points)
	m.inject = points
}
