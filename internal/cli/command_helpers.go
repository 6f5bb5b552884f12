package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pluqqy/itemgrid/pkg/files"
	"github.com/pluqqy/itemgrid/pkg/models"
	"github.com/pluqqy/itemgrid/pkg/source"
)

// CommandContext manages project validation and common command context
type CommandContext struct {
	Store     *files.Store
	Settings  *models.Settings
	validated bool
}

// NewCommandContext creates a command context for the project at root.
// An empty root is the current directory.
func NewCommandContext(root string) *CommandContext {
	return &CommandContext{
		Store: files.NewStore(root),
	}
}

// ValidateProject ensures the project is initialized
func (c *CommandContext) ValidateProject() error {
	if c.validated {
		return nil
	}

	if !c.Store.Exists() {
		return fmt.Errorf("no %s directory found. Run 'itemgrid init' first", files.ItemgridDir)
	}

	c.validated = true
	return nil
}

// LoadSettingsWithDefault loads settings or returns default if error
func (c *CommandContext) LoadSettingsWithDefault() *models.Settings {
	if c.Settings != nil {
		return c.Settings
	}
	c.Settings = c.Store.LoadSettingsWithDefault()
	return c.Settings
}

// Library is an opened data source together with the function that
// releases it.
type Library struct {
	source.Source
	// SQLite is set when the library is the local database
	SQLite *source.SQLiteSource
	close  func() error
}

// Close releases the library
func (l *Library) Close() error {
	if l.close == nil {
		return nil
	}
	return l.close()
}

// OpenLibrary opens the library the settings point at: the remote server
// when one is configured, the SQLite database otherwise.
func (c *CommandContext) OpenLibrary(ctx context.Context, log zerolog.Logger) (*Library, error) {
	settings := c.LoadSettingsWithDefault()

	if settings.Data.Remote != "" {
		src, err := source.NewHTTPSource(settings.Data.Remote, source.HTTPOptions{
			Timeout: time.Duration(settings.Data.TimeoutSeconds) * time.Second,
			Retries: settings.Data.RemoteRetries,
			Logger:  log,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to configure remote library: %w", err)
		}
		return &Library{Source: src}, nil
	}

	return c.OpenDatabase(ctx)
}

// OpenDatabase opens and migrates the local SQLite library
func (c *CommandContext) OpenDatabase(ctx context.Context) (*Library, error) {
	settings := c.LoadSettingsWithDefault()
	db, err := source.OpenSQLite(c.Store.DatabasePath(settings))
	if err != nil {
		return nil, err
	}
	if err := db.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &Library{Source: db, SQLite: db, close: db.Close}, nil
}
