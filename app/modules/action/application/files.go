package actionservice

import (
	"context"

	actiondomain "github.com/Black-And-White-Club/marathon-manager/app/modules/action/domain"
	actiondb "github.com/Black-And-White-Club/marathon-manager/app/modules/action/infrastructure/repositories"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/results"
)

// ExportFiles returns a copy of the export file list.
func (s *ActionService) ExportFiles() []actiondomain.ExportFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]actiondomain.ExportFile{}, s.state.Files...)
}

// SaveExportFile replaces the file with the same name or appends it.
func (s *ActionService) SaveExportFile(ctx context.Context, file actiondomain.ExportFile) (*actiondomain.ExportFile, error) {
	type fileResult = results.OperationResult[*actiondomain.ExportFile, error]

	result, err := withTelemetry(s, ctx, "SaveExportFile", file.Name, func(ctx context.Context) (fileResult, error) {
		if err := file.Validate(); err != nil {
			return results.FailureResult[*actiondomain.ExportFile, error](err), nil
		}
		return mutate(s, ctx, func(next *actiondb.Snapshot) (fileResult, bool) {
			replaced := false
			for i, f := range next.Files {
				if f.Name == file.Name {
					next.Files[i] = file
					replaced = true
					break
				}
			}
			if !replaced {
				next.Files = append(next.Files, file)
			}
			out := file
			return results.SuccessResult[*actiondomain.ExportFile, error](&out), true
		})
	})
	return unwrap(result, err)
}

func (s *ActionService) DeleteExportFile(ctx context.Context, name string) error {
	result, err := withTelemetry(s, ctx, "DeleteExportFile", name, func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		return mutate(s, ctx, func(next *actiondb.Snapshot) (results.OperationResult[struct{}, error], bool) {
			for i, f := range next.Files {
				if f.Name == name {
					next.Files = append(next.Files[:i], next.Files[i+1:]...)
					return results.SuccessResult[struct{}, error](struct{}{}), true
				}
			}
			return results.FailureResult[struct{}, error](ErrExportFileNotFound), false
		})
	})
	_, err = unwrap(result, err)
	return err
}
