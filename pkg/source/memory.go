package source

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/pluqqy/itemgrid/pkg/models"
)

// ErrUnavailable is the failure injected by Memory.FailNext.
var ErrUnavailable = errors.New("source unavailable")

// Call records one FetchRange invocation on a Memory source.
type Call struct {
	Query  models.Query
	Offset int
	Count  int
}

// Memory is an in-process source over a fixed record list. It backs the
// demo mode and the tests, and can inject failures and hold requests open.
type Memory struct {
	mu       sync.Mutex
	records  []models.Record
	calls    []Call
	failNext int
	gate     chan struct{}
}

// NewMemory creates a source over a copy of records.
func NewMemory(records []models.Record) *Memory {
	return &Memory{records: slices.Clone(records)}
}

// FailNext makes the next n fetches fail with ErrUnavailable.
func (m *Memory) FailNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = n
}

// Hold makes fetches block until Release is called or their context ends.
func (m *Memory) Hold() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gate == nil {
		m.gate = make(chan struct{})
	}
}

// Release unblocks every fetch waiting on Hold.
func (m *Memory) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gate != nil {
		close(m.gate)
		m.gate = nil
	}
}

// Calls returns the fetches issued so far.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// FetchRange implements Source.
func (m *Memory) FetchRange(ctx context.Context, q models.Query, offset, count int) (Page, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Query: q, Offset: offset, Count: count})
	gate := m.gate
	fail := m.failNext > 0
	if fail {
		m.failNext--
	}
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Page{}, fmt.Errorf("fetch %d+%d: %w", offset, count, ctx.Err())
		}
	}
	if err := ctx.Err(); err != nil {
		return Page{}, fmt.Errorf("fetch %d+%d: %w", offset, count, err)
	}
	if fail {
		return Page{}, fmt.Errorf("fetch %d+%d: %w", offset, count, ErrUnavailable)
	}

	set := m.resultSet(q)
	if offset < 0 {
		offset = 0
	}
	end := offset + count
	if end > len(set) {
		end = len(set)
	}
	page := Page{Total: len(set)}
	if offset < end {
		page.Records = set[offset:end]
	}
	return page, nil
}

func (m *Memory) resultSet(q models.Query) []models.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := make([]models.Record, 0, len(m.records))
	for _, r := range m.records {
		if matches(r, q.Text) {
			r.Tags = slices.Clone(r.Tags)
			set = append(set, r)
		}
	}
	sortRecords(set, q)
	return set
}

func sortRecords(records []models.Record, q models.Query) {
	compare := func(a, b models.Record) int {
		var c int
		switch q.SortBy {
		case models.FieldCreator:
			c = strings.Compare(strings.ToLower(a.Creator), strings.ToLower(b.Creator))
		case models.FieldYear:
			c = a.Year - b.Year
		case models.FieldItemType:
			c = strings.Compare(a.ItemType, b.ItemType)
		case models.FieldDateModified:
			c = a.DateModified.Compare(b.DateModified)
		default:
			c = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
		if c == 0 {
			c = strings.Compare(a.Key, b.Key)
		}
		return c
	}
	sort.SliceStable(records, func(i, j int) bool {
		c := compare(records[i], records[j])
		if q.Direction == models.SortDesc {
			return c > 0
		}
		return c < 0
	})
}

// UpdateTags implements Tagger.
func (m *Memory) UpdateTags(ctx context.Context, keys []string, add, remove []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if slices.Contains(keys, m.records[i].Key) {
			m.records[i].Tags = applyTags(m.records[i].Tags, add, remove)
		}
	}
	return nil
}

// Trash implements Trasher.
func (m *Memory) Trash(ctx context.Context, keys []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = slices.DeleteFunc(m.records, func(r models.Record) bool {
		return slices.Contains(keys, r.Key)
	})
	return nil
}

// Insert implements Inserter. A record replaces the one with the same key.
func (m *Memory) Insert(ctx context.Context, records []models.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		if rec.Key == "" {
			return errors.New("record key is required")
		}
		i := slices.IndexFunc(m.records, func(r models.Record) bool { return r.Key == rec.Key })
		if i >= 0 {
			m.records[i] = rec
		} else {
			m.records = append(m.records, rec)
		}
	}
	return nil
}

// IndexOf implements Locator.
func (m *Memory) IndexOf(ctx context.Context, q models.Query, key string) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	set := m.resultSet(q)
	i := slices.IndexFunc(set, func(r models.Record) bool { return r.Key == key })
	if i < 0 {
		return -1, ErrNotFound
	}
	return i, nil
}
