package models

// Settings represents the application configuration
type Settings struct {
	Data      DataSettings `yaml:"data"`
	Grid      GridSettings `yaml:"grid"`
	Columns   []Column     `yaml:"columns,omitempty"`
	TagColors []ColoredTag `yaml:"tag_colors,omitempty"`
}

// DataSettings controls where records come from
type DataSettings struct {
	Database string `yaml:"database"`
	Remote   string `yaml:"remote,omitempty"` // base URL of an itemgrid server; overrides Database
	// TimeoutSeconds bounds a single remote page request
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// RemoteRetries is the transport-level retry count for the remote source
	RemoteRetries int `yaml:"remote_retries"`
}

// GridSettings controls window loading and interaction
type GridSettings struct {
	ScrollBuffer      int           `yaml:"scroll_buffer"`
	RetryLimit        int           `yaml:"retry_limit"`
	DegradedThreshold int           `yaml:"degraded_threshold"`
	ThrottleMillis    int           `yaml:"throttle_ms"`
	HighlightKey      string        `yaml:"highlight_key"`
	SortBy            string        `yaml:"sort_by"`
	SortDirection     SortDirection `yaml:"sort_direction"`
}

// DefaultSettings returns the default configuration
func DefaultSettings() *Settings {
	return &Settings{
		Data: DataSettings{
			Database:       ".itemgrid/library.db",
			TimeoutSeconds: 30,
			RemoteRetries:  0,
		},
		Grid: GridSettings{
			ScrollBuffer:      20,
			RetryLimit:        1,
			DegradedThreshold: 3,
			ThrottleMillis:    10,
			HighlightKey:      "h",
			SortBy:            FieldTitle,
			SortDirection:     SortAsc,
		},
		TagColors: DefaultTagColors(),
	}
}

// ApplyDefaults fills zero values with their defaults so a partially
// written settings file still yields a usable configuration.
func (s *Settings) ApplyDefaults() {
	d := DefaultSettings()
	if s.Data.Database == "" {
		s.Data.Database = d.Data.Database
	}
	if s.Data.TimeoutSeconds <= 0 {
		s.Data.TimeoutSeconds = d.Data.TimeoutSeconds
	}
	if s.Data.RemoteRetries < 0 {
		s.Data.RemoteRetries = 0
	}
	if s.Grid.ScrollBuffer <= 0 {
		s.Grid.ScrollBuffer = d.Grid.ScrollBuffer
	}
	if s.Grid.RetryLimit < 0 {
		s.Grid.RetryLimit = 0
	}
	if s.Grid.DegradedThreshold <= 0 {
		s.Grid.DegradedThreshold = d.Grid.DegradedThreshold
	}
	if s.Grid.ThrottleMillis <= 0 {
		s.Grid.ThrottleMillis = d.Grid.ThrottleMillis
	}
	if s.Grid.HighlightKey == "" {
		s.Grid.HighlightKey = d.Grid.HighlightKey
	}
	if s.Grid.SortBy == "" {
		s.Grid.SortBy = d.Grid.SortBy
	}
	if s.Grid.SortDirection != SortAsc && s.Grid.SortDirection != SortDesc {
		s.Grid.SortDirection = d.Grid.SortDirection
	}
	if s.TagColors == nil {
		s.TagColors = d.TagColors
	}
}

// Query returns the initial query described by the grid settings.
func (s *Settings) Query() Query {
	return Query{SortBy: s.Grid.SortBy, Direction: s.Grid.SortDirection}
}
