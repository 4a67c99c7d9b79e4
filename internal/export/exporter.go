package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spec-kit/employee-service/internal/domain"
	apperrors "github.com/spec-kit/employee-service/pkg/util/errorutil"
)

// Format names a supported export file type.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// DefaultDir is used when an Exporter is built with an empty directory.
const DefaultDir = "exports"

// Options controls a single export.
type Options struct {
	Format       Format
	Filename     string
	DepartmentID *int64
}

// ParseFormat normalizes a user supplied format name.
func ParseFormat(raw string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(raw)))
	if !f.Valid() {
		return "", apperrors.NewUnsupportedFormat(raw)
	}
	return f, nil
}

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	return f == FormatCSV || f == FormatPDF
}

// ContentType returns the MIME type served for f.
func ContentType(f Format) string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Exporter renders employee lists into files under dir.
type Exporter struct {
	dir string
	now func() time.Time
}

// New builds an exporter writing into dir.
func New(dir string) *Exporter {
	if dir == "" {
		dir = DefaultDir
	}
	return &Exporter{dir: dir, now: time.Now}
}

// Dir returns the export directory.
func (e *Exporter) Dir() string {
	return e.dir
}

// ExportEmployees writes employees in opts.Format and returns the file path.
// An unsupported format is rejected before anything touches the filesystem.
func (e *Exporter) ExportEmployees(employees []domain.Employee, opts Options) (string, error) {
	if !opts.Format.Valid() {
		return "", apperrors.NewUnsupportedFormat(string(opts.Format))
	}

	name := opts.Filename
	if name == "" {
		name = e.defaultFilename()
	}
	name = filepath.Base(name)

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(e.dir, name+"."+string(opts.Format))

	var err error
	switch opts.Format {
	case FormatCSV:
		err = writeCSV(path, employees)
	case FormatPDF:
		err = writePDF(path, employees, e.now())
	}
	if err != nil {
		return "", fmt.Errorf("export %s: %w", opts.Format, err)
	}
	return path, nil
}

// DeleteExportFile removes a previously generated file. A missing file is not an error.
func (e *Exporter) DeleteExportFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// defaultFilename is employees-export- followed by the UTC timestamp with ':' and '.' replaced by '-'.
func (e *Exporter) defaultFilename() string {
	stamp := e.now().UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return "employees-export-" + stamp
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format("2006-01-02")
}

func formatSalary(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func departmentName(e domain.Employee) string {
	if name := e.DepartmentName(); name != "" {
		return name
	}
	return "N/A"
}
