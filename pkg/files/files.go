package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pluqqy/itemgrid/pkg/models"
)

const (
	ItemgridDir  = ".itemgrid"
	SettingsFile = "settings.yaml"
	DatabaseFile = "library.db"
	LogFile      = "itemgrid.log"
)

// ErrPersist is wrapped by every failed preference write.
var ErrPersist = errors.New("failed to persist preferences")

// ColumnStore reads and writes the persisted column layout.
type ColumnStore interface {
	LoadColumns() ([]models.Column, error)
	SaveColumns(columns []models.Column) error
}

// Store keeps preferences under a project directory.
type Store struct {
	Root string
}

// NewStore returns a store rooted at root. An empty root means the
// current directory.
func NewStore(root string) *Store {
	return &Store{Root: root}
}

// Dir returns the .itemgrid directory of the store.
func (s *Store) Dir() string {
	return filepath.Join(s.Root, ItemgridDir)
}

func (s *Store) settingsPath() string {
	return filepath.Join(s.Dir(), SettingsFile)
}

// Exists reports whether the project has been initialized.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.Dir())
	return err == nil && info.IsDir()
}

// InitProjectStructure creates the .itemgrid directory and a default
// settings file if none exists yet.
func (s *Store) InitProjectStructure() error {
	if err := os.MkdirAll(s.Dir(), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", s.Dir(), err)
	}
	if _, err := os.Stat(s.settingsPath()); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat settings: %w", err)
	}
	return s.WriteSettings(models.DefaultSettings())
}

// ReadSettings loads settings.yaml, filling unset values with defaults.
func (s *Store) ReadSettings() (*models.Settings, error) {
	content, err := os.ReadFile(s.settingsPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	var settings models.Settings
	if err := yaml.Unmarshal(content, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
	}
	settings.ApplyDefaults()
	return &settings, nil
}

// WriteSettings stores settings atomically.
func (s *Store) WriteSettings(settings *models.Settings) error {
	if err := os.MkdirAll(s.Dir(), 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %w", ErrPersist, err)
	}

	content, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal settings to YAML: %w", ErrPersist, err)
	}

	tmp, err := os.CreateTemp(s.Dir(), SettingsFile+".*")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %w", ErrPersist, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to write settings: %w", ErrPersist, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to write settings: %w", ErrPersist, err)
	}
	if err := os.Rename(tmpName, s.settingsPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to replace settings: %w", ErrPersist, err)
	}
	return nil
}

// LoadSettingsWithDefault reads the settings, falling back to defaults
// when the file is missing or unreadable.
func (s *Store) LoadSettingsWithDefault() *models.Settings {
	settings, err := s.ReadSettings()
	if err != nil {
		return models.DefaultSettings()
	}
	return settings
}

// LoadColumns implements ColumnStore. A missing settings file yields no
// columns and no error.
func (s *Store) LoadColumns() ([]models.Column, error) {
	settings, err := s.ReadSettings()
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return settings.Columns, nil
}

// SaveColumns implements ColumnStore.
func (s *Store) SaveColumns(columns []models.Column) error {
	settings, err := s.ReadSettings()
	if errors.Is(err, os.ErrNotExist) {
		settings = models.DefaultSettings()
	} else if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	settings.Columns = columns
	return s.WriteSettings(settings)
}

// DatabasePath resolves the configured database path against the root.
func (s *Store) DatabasePath(settings *models.Settings) string {
	path := settings.Data.Database
	if path == "" {
		path = filepath.Join(ItemgridDir, DatabaseFile)
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.Root, path)
}

// LogPath returns the TUI log file location.
func (s *Store) LogPath() string {
	return filepath.Join(s.Dir(), LogFile)
}

var defaultStore = NewStore("")

// InitProjectStructure initializes the project in the current directory.
func InitProjectStructure() error {
	return defaultStore.InitProjectStructure()
}

// ReadSettings reads the settings of the project in the current directory.
func ReadSettings() (*models.Settings, error) {
	return defaultStore.ReadSettings()
}

// WriteSettings writes the settings of the project in the current directory.
func WriteSettings(settings *models.Settings) error {
	return defaultStore.WriteSettings(settings)
}
