package window

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluqqy/itemgrid/pkg/models"
	"github.com/pluqqy/itemgrid/pkg/source"
)

func records(n int) []models.Record {
	out := make([]models.Record, n)
	for i := range out {
		out[i] = models.Record{
			Key:   fmt.Sprintf("k%03d", i),
			Title: fmt.Sprintf("Title %03d", i),
		}
	}
	return out
}

var titleQuery = models.Query{SortBy: models.FieldTitle, Direction: models.SortAsc}

func newManager(t *testing.T, src source.Source, retryLimit int) *Manager {
	t.Helper()
	opts := DefaultOptions()
	opts.RetryLimit = retryLimit
	m := New(src, titleQuery, opts)
	t.Cleanup(m.Close)
	return m
}

// runAll runs fetches one after another, feeding retries back in, and
// returns every outcome in completion order.
func runAll(m *Manager, fetches []Fetch) []Outcome {
	var outcomes []Outcome
	for len(fetches) > 0 {
		f := fetches[0]
		fetches = fetches[1:]
		out := m.Complete(f.Run())
		outcomes = append(outcomes, out)
		fetches = append(fetches, out.Fetches...)
	}
	return outcomes
}

// stubSource answers every fetch through fn.
type stubSource func(ctx context.Context, q models.Query, offset, count int) (source.Page, error)

func (s stubSource) FetchRange(ctx context.Context, q models.Query, offset, count int) (source.Page, error) {
	return s(ctx, q, offset, count)
}

func failing(err error) stubSource {
	return func(context.Context, models.Query, int, int) (source.Page, error) {
		return source.Page{}, err
	}
}

func TestRequestRangeDeduplicates(t *testing.T) {
	mem := source.NewMemory(records(200))
	m := newManager(t, mem, 1)

	first := m.RequestRange(0, 50)
	require.Len(t, first, 1)
	assert.Equal(t, Span{Start: 0, Stop: 50}, first[0].Span)
	assert.Equal(t, 0, first[0].Offset)
	assert.Equal(t, 50, first[0].Count)

	assert.Empty(t, m.RequestRange(0, 50))
	assert.Empty(t, m.RequestRange(10, 20))
	assert.Equal(t, []Span{{Start: 0, Stop: 50}}, m.Pending())
}

func TestOverlappingRequestWhilePending(t *testing.T) {
	mem := source.NewMemory(records(200))
	m := newManager(t, mem, 1)

	first := m.RequestRange(0, 50)
	second := m.RequestRange(40, 100)
	require.Len(t, second, 1)
	assert.Equal(t, Span{Start: 50, Stop: 100}, second[0].Span)
	assert.Equal(t, 50, second[0].Offset)
	assert.Equal(t, 50, second[0].Count)

	runAll(m, append(first, second...))
	for i := 0; i < 100; i++ {
		require.True(t, m.IsLoaded(i), "index %d", i)
	}
	assert.False(t, m.IsLoaded(100))
	assert.Empty(t, m.Pending())

	key, ok := m.KeyAt(73)
	require.True(t, ok)
	assert.Equal(t, "k073", key)
	assert.Equal(t, 73, m.IndexOf("k073"))
	assert.Equal(t, -1, m.IndexOf("k150"))

	total, counted := m.Total()
	assert.True(t, counted)
	assert.Equal(t, 200, total)
}

func TestRequestRangeSplitsAroundCachedRows(t *testing.T) {
	mem := source.NewMemory(records(100))
	m := newManager(t, mem, 1)

	runAll(m, m.RequestRange(10, 20))
	fetches := m.RequestRange(0, 30)
	require.Len(t, fetches, 2)
	assert.Equal(t, Span{Start: 0, Stop: 10}, fetches[0].Span)
	assert.Equal(t, Span{Start: 20, Stop: 30}, fetches[1].Span)
}

func TestRequestRangeClipsToTotal(t *testing.T) {
	mem := source.NewMemory(records(15))
	m := newManager(t, mem, 1)

	runAll(m, m.RequestRange(0, 10))
	fetches := m.RequestRange(10, 100)
	require.Len(t, fetches, 1)
	assert.Equal(t, Span{Start: 10, Stop: 15}, fetches[0].Span)
	assert.Empty(t, m.RequestRange(15, 40))

	assert.Empty(t, m.RequestRange(5, 5))
	assert.Empty(t, m.RequestRange(-10, 0))
}

func TestIsLoadedFalseAfterReset(t *testing.T) {
	mem := source.NewMemory(records(30))
	m := newManager(t, mem, 1)

	runAll(m, m.RequestRange(0, 20))
	require.True(t, m.IsLoaded(5))

	fetches := m.Reset().Fetches
	for i := 0; i < 30; i++ {
		assert.False(t, m.IsLoaded(i), "index %d", i)
	}
	_, counted := m.Total()
	assert.False(t, counted)

	require.Len(t, fetches, 1)
	assert.Equal(t, Span{Start: 0, Stop: 20}, fetches[0].Span)
}

func TestSortChangeAbortsPendingFetch(t *testing.T) {
	mem := source.NewMemory(records(100))
	m := newManager(t, mem, 1)

	mem.Hold()
	first := m.RequestRange(0, 50)
	require.Len(t, first, 1)
	results := make(chan Result, 1)
	go func() { results <- first[0].Run() }()

	changed, identityChanged, reset := m.SetQuery(models.Query{SortBy: models.FieldTitle, Direction: models.SortDesc})
	fetches := reset.Fetches
	assert.True(t, changed)
	assert.False(t, identityChanged)
	require.Len(t, fetches, 1)
	assert.Equal(t, Span{Start: 0, Stop: 50}, fetches[0].Span)
	assert.Equal(t, models.SortDesc, fetches[0].Query.Direction)
	assert.False(t, m.IsLoaded(0))

	var aborted Result
	select {
	case aborted = <-results:
	case <-time.After(time.Second):
		t.Fatal("aborted fetch did not return")
	}
	assert.True(t, errors.Is(aborted.Err, ErrAborted))

	out := m.Complete(aborted)
	assert.True(t, out.Stale)
	assert.NoError(t, out.Err)
	assert.Equal(t, 0, m.ErrorCount())

	mem.Release()
	runAll(m, fetches)
	key, ok := m.KeyAt(0)
	require.True(t, ok)
	assert.Equal(t, "k099", key)
}

func TestStaleSuccessIsDiscarded(t *testing.T) {
	mem := source.NewMemory(records(20))
	m := newManager(t, mem, 1)

	old := m.RequestRange(0, 10)
	m.Reset()
	oldResult := Result{Fetch: old[0], Page: source.Page{Records: records(10), Total: 20}}
	out := m.Complete(oldResult)
	assert.True(t, out.Stale)
	assert.False(t, out.Applied)
	assert.False(t, m.IsLoaded(0))
	assert.Equal(t, []Span{{Start: 0, Stop: 10}}, m.Pending())
}

func TestDegradedSignalFiresOnFourthFailure(t *testing.T) {
	mem := source.NewMemory(records(100))
	m := newManager(t, mem, 0)
	mem.FailNext(5)

	var signals []Signal
	var counts []int
	for i := 0; i < 5; i++ {
		out := runAll(m, m.RequestRange(i*10, i*10+10))
		require.Len(t, out, 1)
		assert.Error(t, out[0].Err)
		signals = append(signals, out[0].Signal)
		counts = append(counts, m.ErrorCount())
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, counts)
	assert.Equal(t, []Signal{SignalNone, SignalNone, SignalNone, SignalDegraded, SignalNone}, signals)
	assert.True(t, m.Degraded())

	out := runAll(m, m.RequestRange(0, 10))
	require.Len(t, out, 1)
	assert.Equal(t, SignalRestored, out[0].Signal)
	assert.Equal(t, 0, m.ErrorCount())
	assert.False(t, m.Degraded())
}

func TestRestoredOnlyAfterDegraded(t *testing.T) {
	mem := source.NewMemory(records(50))
	m := newManager(t, mem, 0)
	mem.FailNext(1)

	out := runAll(m, m.RequestRange(0, 10))
	assert.Equal(t, SignalNone, out[0].Signal)
	out = runAll(m, m.RequestRange(0, 10))
	assert.Equal(t, SignalNone, out[0].Signal)
	assert.Equal(t, 0, m.ErrorCount())
}

func TestFailedFetchIsRetriedOnce(t *testing.T) {
	mem := source.NewMemory(records(50))
	m := newManager(t, mem, 1)
	mem.FailNext(1)

	fetches := m.RequestRange(0, 10)
	out := m.Complete(fetches[0].Run())
	require.Error(t, out.Err)
	require.Len(t, out.Fetches, 1)
	retry := out.Fetches[0]
	assert.Equal(t, 1, retry.Attempt)
	assert.Equal(t, fetches[0].Offset, retry.Offset)
	assert.Equal(t, fetches[0].Count, retry.Count)
	assert.Equal(t, []Span{{Start: 0, Stop: 10}}, m.Pending())

	out = m.Complete(retry.Run())
	assert.NoError(t, out.Err)
	assert.True(t, out.Applied)
	assert.True(t, m.IsLoaded(9))
	assert.Equal(t, 0, m.ErrorCount())
}

func TestRetryLimitIsHonoured(t *testing.T) {
	mem := source.NewMemory(records(50))
	m := newManager(t, mem, 1)
	mem.FailNext(2)

	out := runAll(m, m.RequestRange(0, 10))
	require.Len(t, out, 2)
	assert.Empty(t, out[1].Fetches)
	assert.Empty(t, m.Pending())
	assert.Equal(t, 2, m.ErrorCount())
}

func TestOnlyMostRecentFetchIsRetried(t *testing.T) {
	mem := source.NewMemory(records(50))
	m := newManager(t, mem, 1)
	mem.FailNext(2)

	first := m.RequestRange(0, 10)
	second := m.RequestRange(10, 20)

	out := m.Complete(first[0].Run())
	assert.Empty(t, out.Fetches)
	out = m.Complete(second[0].Run())
	require.Len(t, out.Fetches, 1)
	assert.Equal(t, Span{Start: 10, Stop: 20}, out.Fetches[0].Span)
	assert.Equal(t, []Span{{Start: 10, Stop: 20}}, m.Pending())
}

func TestRetryWaitsForAbortsToSettle(t *testing.T) {
	m := newManager(t, failing(errors.New("boom")), 1)

	old := m.RequestRange(0, 10)
	fresh := m.Reset().Fetches
	require.Len(t, fresh, 1)

	out := m.Complete(fresh[0].Run())
	require.Error(t, out.Err)
	assert.Empty(t, out.Fetches)
	assert.Equal(t, []Span{{Start: 0, Stop: 10}}, m.Pending())

	out = m.Complete(Result{Fetch: old[0], Err: fmt.Errorf("%w: %w", ErrAborted, context.Canceled)})
	assert.True(t, out.Stale)
	require.Len(t, out.Fetches, 1)
	assert.Equal(t, 1, out.Fetches[0].Attempt)
	assert.Equal(t, 1, m.ErrorCount())
}

func TestResetDropsHeldBackRetry(t *testing.T) {
	mem := source.NewMemory(records(100))
	m := newManager(t, mem, 1)

	first := m.RequestRange(0, 50)
	require.Len(t, first, 1)
	second := m.Reset().Fetches
	require.Len(t, second, 1)

	out := m.Complete(Result{Fetch: second[0], Err: errors.New("boom")})
	require.Error(t, out.Err)
	assert.Empty(t, out.Fetches, "retry is held back while the first fetch settles")

	_, _, reset := m.SetQuery(models.Query{SortBy: models.FieldTitle, Direction: models.SortDesc})
	third := reset.Fetches
	require.Len(t, third, 1)

	out = m.Complete(Result{Fetch: first[0], Err: fmt.Errorf("%w: %w", ErrAborted, context.Canceled)})
	assert.True(t, out.Stale)
	assert.Empty(t, out.Fetches)

	out = m.Complete(Result{Fetch: third[0], Err: errors.New("boom")})
	require.Error(t, out.Err)
	require.Len(t, out.Fetches, 1, "nothing is left to settle, so the retry goes out")
	assert.Equal(t, models.SortDesc, out.Fetches[0].Query.Direction)
	assert.Equal(t, []Span{{Start: 0, Stop: 50}}, m.Pending())

	runAll(m, out.Fetches)
	key, ok := m.KeyAt(0)
	require.True(t, ok)
	assert.Equal(t, "k099", key)
	assert.Empty(t, m.Pending())

	more := m.RequestRange(50, 60)
	require.Len(t, more, 1)
	runAll(m, more)
	assert.True(t, m.IsLoaded(59))
}

func TestResetReportsRestored(t *testing.T) {
	mem := source.NewMemory(records(50))
	m := newManager(t, mem, 0)
	mem.FailNext(4)
	for i := 0; i < 4; i++ {
		runAll(m, m.RequestRange(i*10, i*10+10))
	}
	require.True(t, m.Degraded())

	out := m.Reset()
	assert.Equal(t, SignalRestored, out.Signal)
	assert.False(t, m.Degraded())
	assert.Equal(t, 0, m.ErrorCount())
	require.Len(t, out.Fetches, 1)

	assert.Equal(t, SignalNone, m.Reset().Signal)
}

func TestSetQuery(t *testing.T) {
	mem := source.NewMemory(records(10))
	m := newManager(t, mem, 1)
	runAll(m, m.RequestRange(0, 10))

	tests := []struct {
		name     string
		query    models.Query
		changed  bool
		identity bool
	}{
		{"same query", titleQuery, false, false},
		{"padded text is the same set", models.Query{Text: "  ", SortBy: models.FieldTitle, Direction: models.SortAsc}, false, false},
		{"sort field", models.Query{SortBy: models.FieldYear, Direction: models.SortAsc}, true, false},
		{"direction", models.Query{SortBy: models.FieldYear, Direction: models.SortDesc}, true, false},
		{"text", models.Query{Text: "title 00", SortBy: models.FieldYear, Direction: models.SortDesc}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed, identity, out := m.SetQuery(tt.query)
			fetches := out.Fetches
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.identity, identity)
			if tt.changed {
				assert.NotEmpty(t, fetches)
				assert.False(t, m.IsLoaded(0))
				runAll(m, fetches)
			} else {
				assert.Empty(t, fetches)
			}
		})
	}
}

func TestInjectShiftsCacheAndOffsets(t *testing.T) {
	mem := source.NewMemory(records(20))
	m := newManager(t, mem, 1)
	runAll(m, m.RequestRange(0, 10))

	m.Inject(3, models.Record{Key: "local", Title: "New item"})
	assert.Equal(t, []int{3}, m.InjectPoints())
	assert.Equal(t, 21, m.Len())

	key, _ := m.KeyAt(3)
	assert.Equal(t, "local", key)
	key, _ = m.KeyAt(4)
	assert.Equal(t, "k003", key)
	assert.Equal(t, 10, m.IndexOf("k009"))

	fetches := m.RequestRange(0, 21)
	require.Len(t, fetches, 1)
	assert.Equal(t, Span{Start: 11, Stop: 21}, fetches[0].Span)
	assert.Equal(t, 10, fetches[0].Offset)

	runAll(m, fetches)
	key, _ = m.KeyAt(11)
	assert.Equal(t, "k010", key)
	key, _ = m.KeyAt(20)
	assert.Equal(t, "k019", key)
}

func TestInjectSplitsPendingSpan(t *testing.T) {
	mem := source.NewMemory(records(20))
	m := newManager(t, mem, 1)

	fetches := m.RequestRange(0, 10)
	m.Inject(5, models.Record{Key: "local"})
	assert.Equal(t, []Span{{Start: 0, Stop: 5}, {Start: 6, Stop: 11}}, m.Pending())

	runAll(m, fetches)
	tests := map[int]string{0: "k000", 4: "k004", 5: "local", 6: "k005", 10: "k009"}
	for idx, want := range tests {
		key, ok := m.KeyAt(idx)
		require.True(t, ok, "index %d", idx)
		assert.Equal(t, want, key, "index %d", idx)
	}
	assert.False(t, m.IsLoaded(11))
}

func TestUpdateRecord(t *testing.T) {
	mem := source.NewMemory(records(5))
	m := newManager(t, mem, 1)
	runAll(m, m.RequestRange(0, 5))

	rec, _ := m.Record(2)
	rec.Tags = []string{"cite"}
	assert.True(t, m.UpdateRecord(rec))
	got, _ := m.Record(2)
	assert.Equal(t, []string{"cite"}, got.Tags)

	assert.False(t, m.UpdateRecord(models.Record{Key: "missing"}))
}

func TestRunWithoutSource(t *testing.T) {
	res := Fetch{}.Run()
	assert.Error(t, res.Err)
}
