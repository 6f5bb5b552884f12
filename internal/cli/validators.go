package cli

import (
	"fmt"
	"net"
	"slices"
	"strings"

	"github.com/pluqqy/itemgrid/pkg/source"
)

// ValidateOutputFormat validates the output format flag
func ValidateOutputFormat(format string) error {
	validFormats := []string{"text", "json", "yaml"}
	if slices.Contains(validFormats, format) {
		return nil
	}
	return fmt.Errorf("invalid output format: %s (must be: text, json, or yaml)", format)
}

// ValidateSortField validates a --sort flag
func ValidateSortField(field string) error {
	if slices.Contains(source.SortFields, field) {
		return nil
	}
	return fmt.Errorf("invalid sort field: %s (must be one of: %s)", field, strings.Join(source.SortFields, ", "))
}

// ValidateRange validates an --offset/--count pair
func ValidateRange(offset, count int) error {
	if offset < 0 {
		return fmt.Errorf("offset cannot be negative: %d", offset)
	}
	if count <= 0 {
		return fmt.Errorf("count must be positive: %d", count)
	}
	return nil
}

// ValidateListenAddr validates a host:port listen address
func ValidateListenAddr(addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	return nil
}

// ValidateKeys validates item keys given on the command line
func ValidateKeys(keys []string) error {
	if len(keys) == 0 {
		return fmt.Errorf("at least one item key is required")
	}
	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("item key cannot be empty")
		}
	}
	return nil
}
