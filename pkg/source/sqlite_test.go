package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluqqy/itemgrid/pkg/models"
)

func newSQLiteSource(t *testing.T, records []models.Record) *SQLiteSource {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	src, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := src.Init(context.Background()); err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	t.Cleanup(func() { _ = src.Close() })
	if err := src.Insert(context.Background(), records); err != nil {
		t.Fatalf("insert records: %v", err)
	}
	return src
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite("")
	assert.Error(t, err)
}

func TestSQLiteFetchRange(t *testing.T) {
	src := newSQLiteSource(t, sampleRecords(25))
	ctx := context.Background()

	page, err := src.FetchRange(ctx, models.Query{SortBy: models.FieldTitle}, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	require.Len(t, page.Records, 5)
	assert.Equal(t, "k010", page.Records[0].Key)
	assert.Equal(t, "Title 010", page.Records[0].Title)
	assert.Equal(t, 2000, page.Records[0].Year)
	assert.False(t, page.Records[0].DateModified.IsZero())

	page, err = src.FetchRange(ctx, models.Query{SortBy: models.FieldDateModified, Direction: models.SortDesc}, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, "k024", page.Records[0].Key)
	assert.Equal(t, "k023", page.Records[1].Key)

	page, err = src.FetchRange(ctx, models.Query{}, 20, 50)
	require.NoError(t, err)
	assert.Len(t, page.Records, 5)

	page, err = src.FetchRange(ctx, models.Query{Text: "title 01"}, 0, 50)
	require.NoError(t, err)
	assert.Equal(t, 10, page.Total)

	page, err = src.FetchRange(ctx, models.Query{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Empty(t, page.Records)
}

func TestSQLiteUnknownSortFallsBackToTitle(t *testing.T) {
	src := newSQLiteSource(t, sampleRecords(3))
	page, err := src.FetchRange(context.Background(), models.Query{SortBy: "1; DROP TABLE items"}, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, "k000", page.Records[0].Key)
}

func TestSQLiteUpdateTags(t *testing.T) {
	src := newSQLiteSource(t, sampleRecords(3))
	ctx := context.Background()

	require.NoError(t, src.UpdateTags(ctx, []string{"k000", "k002", "missing"}, []string{"cite"}, nil))
	page, err := src.FetchRange(ctx, models.Query{}, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"cite"}, page.Records[0].Tags)
	assert.Empty(t, page.Records[1].Tags)

	require.NoError(t, src.UpdateTags(ctx, []string{"k000"}, nil, []string{"CITE"}))
	page, err = src.FetchRange(ctx, models.Query{SortBy: models.FieldTitle}, 0, 1)
	require.NoError(t, err)
	assert.Empty(t, page.Records[0].Tags)
}

func TestSQLiteTrashAndIndexOf(t *testing.T) {
	src := newSQLiteSource(t, sampleRecords(6))
	ctx := context.Background()
	q := models.Query{SortBy: models.FieldTitle}

	idx, err := src.IndexOf(ctx, q, "k004")
	require.NoError(t, err)
	assert.Equal(t, 4, idx)

	require.NoError(t, src.Trash(ctx, []string{"k000", "k001"}))
	idx, err = src.IndexOf(ctx, q, "k004")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = src.IndexOf(ctx, q, "k000")
	assert.ErrorIs(t, err, ErrNotFound)

	page, err := src.FetchRange(ctx, q, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
}
