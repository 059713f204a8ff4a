package actionservice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	actiondomain "github.com/Black-And-White-Club/marathon-manager/app/modules/action/domain"
	"github.com/Black-And-White-Club/marathon-manager/pkg/textgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExporterWritesEveryFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "game.txt"), []byte("stale"), 0o644))

	exp := NewExporter(textgen.New(textgen.WithLineSeparator("\n")))
	files := []actiondomain.ExportFile{
		{Name: "game.txt", Template: "{game}"},
		{Name: "runners/names.txt", Template: "<loop property='runners' separator=', ' prefix=''>{runners[name]}</loop>"},
		{Name: "wrapped.txt", Template: "Celeste Any% glitchless", MaxCharsPerLine: 10},
	}

	require.NoError(t, exp.Export(context.Background(), files, dir, testRun()))

	read := func(name string) string {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		return string(raw)
	}
	assert.Equal(t, "Celeste", read("game.txt"))
	assert.Equal(t, "Ana, Ben", read("runners/names.txt"))
	assert.Equal(t, "Celeste\nAny%\nglitchless", read("wrapped.txt"))
}

func TestExporterCollectsFailures(t *testing.T) {
	dir := t.TempDir()
	// A directory where a file should go makes that one write fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "blocked.txt"), 0o755))

	files := []actiondomain.ExportFile{
		{Name: "blocked.txt", Template: "x"},
		{Name: "../escape.txt", Template: "x"},
		{Name: "", Template: "x"},
		{Name: "ok.txt", Template: "{category}"},
	}

	err := NewExporter(nil).Export(context.Background(), files, dir, testRun())

	var fwErr *FileWriteError
	require.ErrorAs(t, err, &fwErr)
	assert.Equal(t, "blocked.txt", fwErr.Name)
	assert.ErrorIs(t, err, ErrPathEscapes)
	assert.ErrorIs(t, err, actiondomain.ErrExportFileNameRequired)

	raw, readErr := os.ReadFile(filepath.Join(dir, "ok.txt"))
	require.NoError(t, readErr)
	assert.Equal(t, "Any%", string(raw))

	_, statErr := os.Stat(filepath.Join(filepath.Dir(dir), "escape.txt"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestExporterRequiresDestination(t *testing.T) {
	err := NewExporter(nil).Export(context.Background(), nil, "", testRun())
	assert.ErrorIs(t, err, ErrDestinationRequired)
}
