// Package ingest reads bank statements from spreadsheet, CSV and OFX files into tables.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Veraticus/the-spice-must-tally/internal/common"
	"github.com/Veraticus/the-spice-must-tally/internal/model"
)

// ErrSheetNotFound is returned when the requested worksheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// Options control how a statement is read.
type Options struct {
	// Sheet selects the worksheet of a workbook. Empty means the first sheet.
	Sheet string
	// HeaderRow is the 1-based row holding the column names. Zero means 1.
	HeaderRow int
}

// headerRow returns the effective 1-based header row.
func (o Options) headerRow() (int, error) {
	switch {
	case o.HeaderRow == 0:
		return 1, nil
	case o.HeaderRow < 0:
		return 0, fmt.Errorf("%w: %d", common.ErrInvalidHeaderRow, o.HeaderRow)
	default:
		return o.HeaderRow, nil
	}
}

// Reader converts one statement format into a table.
type Reader interface {
	Read(ctx context.Context, r io.Reader, opts Options) (model.Table, error)
	Format() string
	Extensions() []string
}

// Registry holds readers by format name and file extension.
type Registry struct {
	readers    map[string]Reader
	extensions map[string]Reader
}

// NewRegistry creates an empty reader registry.
func NewRegistry() *Registry {
	return &Registry{
		readers:    make(map[string]Reader),
		extensions: make(map[string]Reader),
	}
}

// Register adds a reader. Panics on a duplicate format or extension.
func (r *Registry) Register(reader Reader) {
	key := strings.ToLower(reader.Format())
	if _, ok := r.readers[key]; ok {
		panic("duplicate reader format: " + key)
	}
	r.readers[key] = reader

	for _, ext := range reader.Extensions() {
		ext = strings.ToLower(ext)
		if _, ok := r.extensions[ext]; ok {
			panic("duplicate reader extension: " + ext)
		}
		r.extensions[ext] = reader
	}
}

// Get returns the reader for format, or nil.
func (r *Registry) Get(format string) Reader {
	return r.readers[strings.ToLower(format)]
}

// ForPath selects a reader by the file extension of path.
func (r *Registry) ForPath(path string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if reader, ok := r.extensions[ext]; ok {
		return reader, nil
	}
	return nil, fmt.Errorf("%w: %q (supported: %s)",
		common.ErrUnsupportedFormat, filepath.Base(path), strings.Join(r.Formats(), ", "))
}

// Supports reports whether a reader is registered for the extension of path.
func (r *Registry) Supports(path string) bool {
	_, ok := r.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Formats returns the registered format names, sorted.
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.readers))
	for name := range r.readers {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}

// DefaultRegistry returns a registry with all built-in readers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&XLSXReader{})
	r.Register(&CSVReader{})
	r.Register(NewOFXReader())
	return r
}

// ReadFile opens path and reads it with the reader registered for its extension.
func (r *Registry) ReadFile(ctx context.Context, path string, opts Options) (model.Table, error) {
	reader, err := r.ForPath(path)
	if err != nil {
		return model.Table{}, err
	}

	f, err := os.Open(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return model.Table{}, fmt.Errorf("failed to open statement: %w", err)
	}
	defer func() { _ = f.Close() }()

	table, err := reader.Read(ctx, f, opts)
	if err != nil {
		return model.Table{}, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return table, nil
}
