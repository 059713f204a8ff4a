package actionservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	actiondomain "github.com/Black-And-White-Club/marathon-manager/app/modules/action/domain"
	"github.com/Black-And-White-Club/marathon-manager/pkg/textgen"
)

// FileWriteError is one export file that could not be written.
type FileWriteError struct {
	Name string
	Path string
	Err  error
}

func (e *FileWriteError) Error() string {
	return fmt.Sprintf("failed to write export file %q to %s: %v", e.Name, e.Path, e.Err)
}

func (e *FileWriteError) Unwrap() error { return e.Err }

var (
	ErrDestinationRequired = errors.New("export destination is required")
	ErrPathEscapes         = errors.New("export file name leaves the destination directory")
)

// Exporter renders export files and writes them to disk.
type Exporter struct {
	engine *textgen.Engine
}

func NewExporter(engine *textgen.Engine) *Exporter {
	if engine == nil {
		engine = textgen.New()
	}
	return &Exporter{engine: engine}
}

// Export writes every file under destination, overwriting existing files.
// All files are attempted; failures come back joined as *FileWriteError.
func (e *Exporter) Export(ctx context.Context, files []actiondomain.ExportFile, destination string, run textgen.Source) error {
	if destination == "" {
		return ErrDestinationRequired
	}
	if err := os.MkdirAll(destination, 0o755); err != nil {
		return &FileWriteError{Path: destination, Err: err}
	}

	var errs []error
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		path, err := exportPath(destination, f.Name)
		if err != nil {
			errs = append(errs, &FileWriteError{Name: f.Name, Path: path, Err: err})
			continue
		}

		content := e.engine.Generate(f.Template, run, f.MaxCharsPerLine)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			errs = append(errs, &FileWriteError{Name: f.Name, Path: path, Err: err})
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			errs = append(errs, &FileWriteError{Name: f.Name, Path: path, Err: err})
		}
	}
	return errors.Join(errs...)
}

// exportPath joins name onto destination and rejects names that would land
// outside it.
func exportPath(destination, name string) (string, error) {
	if name == "" {
		return destination, actiondomain.ErrExportFileNameRequired
	}
	root := filepath.Clean(destination)
	path := filepath.Join(root, name)
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(name) {
		return path, ErrPathEscapes
	}
	return path, nil
}
