package parsers

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ParsedRun is one schedule row before members are resolved.
type ParsedRun struct {
	Game     string
	Category string
	Platform string
	Estimate string
	Year     string
	Runners  []string
}

// Parser defines the interface for schedule parsers
type Parser interface {
	Parse(data []byte) ([]ParsedRun, error)
}

// ParserFactory defines the interface for creating parsers
type ParserFactory interface {
	GetParser(filename string) (Parser, error)
}

// Factory creates the appropriate parser based on file extension
type Factory struct{}

// NewFactory creates a new parser factory
func NewFactory() *Factory {
	return &Factory{}
}

// GetParser returns the appropriate parser for the given filename
func (f *Factory) GetParser(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".csv":
		return NewCSVParser(), nil
	case ".xlsx":
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("unsupported file type: %q", ext)
	}
}
