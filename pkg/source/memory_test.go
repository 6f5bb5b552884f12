package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluqqy/itemgrid/pkg/models"
)

func TestMemoryFetchRange(t *testing.T) {
	m := NewMemory(sampleRecords(10))
	ctx := context.Background()

	page, err := m.FetchRange(ctx, models.Query{SortBy: models.FieldTitle}, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 10, page.Total)
	require.Len(t, page.Records, 3)
	assert.Equal(t, "k002", page.Records[0].Key)
	assert.Equal(t, "k004", page.Records[2].Key)

	page, err = m.FetchRange(ctx, models.Query{SortBy: models.FieldTitle, Direction: models.SortDesc}, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "k009", page.Records[0].Key)

	page, err = m.FetchRange(ctx, models.Query{}, 8, 10)
	require.NoError(t, err)
	assert.Len(t, page.Records, 2)

	page, err = m.FetchRange(ctx, models.Query{}, 20, 5)
	require.NoError(t, err)
	assert.Empty(t, page.Records)
	assert.Equal(t, 10, page.Total)

	page, err = m.FetchRange(ctx, models.Query{Text: "title 00"}, 0, 50)
	require.NoError(t, err)
	assert.Equal(t, 10, page.Total)

	page, err = m.FetchRange(ctx, models.Query{Text: "title 005"}, 0, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	assert.Len(t, m.Calls(), 6)
}

func TestMemoryFailNext(t *testing.T) {
	m := NewMemory(sampleRecords(3))
	m.FailNext(1)

	_, err := m.FetchRange(context.Background(), models.Query{}, 0, 3)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = m.FetchRange(context.Background(), models.Query{}, 0, 3)
	assert.NoError(t, err)
}

func TestMemoryHoldHonoursCancel(t *testing.T) {
	m := NewMemory(sampleRecords(3))
	m.Hold()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := m.FetchRange(ctx, models.Query{}, 0, 3)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("fetch did not observe cancellation")
	}
	m.Release()
}

func TestMemoryHoldRelease(t *testing.T) {
	m := NewMemory(sampleRecords(3))
	m.Hold()

	done := make(chan error, 1)
	go func() {
		_, err := m.FetchRange(context.Background(), models.Query{}, 0, 3)
		done <- err
	}()
	m.Release()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("fetch was not released")
	}
}

func TestMemoryTagsTrashLocate(t *testing.T) {
	m := NewMemory(sampleRecords(5))
	ctx := context.Background()
	q := models.Query{SortBy: models.FieldTitle}

	require.NoError(t, m.UpdateTags(ctx, []string{"k001", "k003"}, []string{"cite"}, nil))
	page, err := m.FetchRange(ctx, q, 0, 5)
	require.NoError(t, err)
	assert.True(t, page.Records[1].HasTag("cite"))
	assert.False(t, page.Records[2].HasTag("cite"))

	idx, err := m.IndexOf(ctx, q, "k003")
	require.NoError(t, err)
	assert.Equal(t, 3, idx)

	require.NoError(t, m.Trash(ctx, []string{"k001"}))
	idx, err = m.IndexOf(ctx, q, "k003")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = m.IndexOf(ctx, q, "k001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryInsert(t *testing.T) {
	m := NewMemory(sampleRecords(3))
	ctx := context.Background()
	q := models.Query{SortBy: models.FieldTitle}

	require.NoError(t, m.Insert(ctx, []models.Record{{Key: "new", Title: "Aardvark"}}))
	idx, err := m.IndexOf(ctx, q, "new")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	require.NoError(t, m.Insert(ctx, []models.Record{{Key: "new", Title: "Zebra"}}))
	page, err := m.FetchRange(ctx, q, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, "new", page.Records[3].Key)

	assert.Error(t, m.Insert(ctx, []models.Record{{Title: "no key"}}))
}

var (
	_ Inserter = (*Memory)(nil)
	_ Inserter = (*SQLiteSource)(nil)
)
