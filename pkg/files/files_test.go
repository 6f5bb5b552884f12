package files

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluqqy/itemgrid/pkg/models"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir())
}

func TestInitProjectStructure(t *testing.T) {
	store := newStore(t)
	require.False(t, store.Exists())

	require.NoError(t, store.InitProjectStructure())
	assert.True(t, store.Exists())

	settings, err := store.ReadSettings()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), settings)

	// a second init keeps existing settings
	settings.Grid.ScrollBuffer = 7
	require.NoError(t, store.WriteSettings(settings))
	require.NoError(t, store.InitProjectStructure())
	settings, err = store.ReadSettings()
	require.NoError(t, err)
	assert.Equal(t, 7, settings.Grid.ScrollBuffer)
}

func TestReadSettingsFillsDefaults(t *testing.T) {
	store := newStore(t)
	require.NoError(t, os.MkdirAll(store.Dir(), 0755))
	partial := []byte("grid:\n  retry_limit: 2\n")
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), SettingsFile), partial, 0644))

	settings, err := store.ReadSettings()
	require.NoError(t, err)
	assert.Equal(t, 2, settings.Grid.RetryLimit)
	assert.Equal(t, 20, settings.Grid.ScrollBuffer)
	assert.Equal(t, models.FieldTitle, settings.Grid.SortBy)
	assert.NotEmpty(t, settings.TagColors)
}

func TestReadSettingsErrors(t *testing.T) {
	store := newStore(t)
	_, err := store.ReadSettings()
	assert.True(t, errors.Is(err, os.ErrNotExist))

	require.NoError(t, os.MkdirAll(store.Dir(), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), SettingsFile), []byte("grid: [unclosed"), 0644))
	_, err = store.ReadSettings()
	assert.Error(t, err)
	assert.Equal(t, models.DefaultSettings(), store.LoadSettingsWithDefault())
}

func TestColumnsRoundTrip(t *testing.T) {
	store := newStore(t)

	columns, err := store.LoadColumns()
	require.NoError(t, err)
	assert.Nil(t, columns)

	want := []models.Column{
		{Field: models.FieldCreator, Fraction: 0.4, MinFraction: 0.05, IsVisible: true},
		{Field: models.FieldTitle, Fraction: 0.6, MinFraction: 0.1, IsVisible: true},
		{Field: models.FieldYear, Fraction: 0.2, MinFraction: 0.05, IsVisible: false},
	}
	require.NoError(t, store.SaveColumns(want))

	got, err := store.LoadColumns()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	settings, err := store.ReadSettings()
	require.NoError(t, err)
	assert.Equal(t, 20, settings.Grid.ScrollBuffer, "saving columns keeps the other settings")
}

func TestSaveColumnsPersistFailure(t *testing.T) {
	root := t.TempDir()
	// a regular file where the directory should be
	require.NoError(t, os.WriteFile(filepath.Join(root, ItemgridDir), []byte("x"), 0644))
	store := NewStore(root)

	err := store.SaveColumns([]models.Column{{Field: models.FieldTitle, Fraction: 1, IsVisible: true}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersist))
}

func TestDatabasePath(t *testing.T) {
	store := NewStore("/srv/lib")
	settings := models.DefaultSettings()
	assert.Equal(t, filepath.Join("/srv/lib", ".itemgrid", "library.db"), store.DatabasePath(settings))

	settings.Data.Database = "/var/db/items.db"
	assert.Equal(t, "/var/db/items.db", store.DatabasePath(settings))

	settings.Data.Database = ""
	assert.Equal(t, filepath.Join("/srv/lib", ItemgridDir, DatabaseFile), store.DatabasePath(settings))
}
