package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/alexanderramin/taskseq/internal/importer"
)

type importService struct {
	sequences SequenceService
	observer  UseCaseObserver
}

func NewImportService(sequences SequenceService, observers ...UseCaseObserver) ImportService {
	return &importService{sequences: sequences, observer: useCaseObserverOrNoop(observers)}
}

func (s *importService) ImportFile(ctx context.Context, path, familyID, creatorID string) (*app.ImportResult, error) {
	file, err := importer.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return s.Import(ctx, file, familyID, creatorID)
}

// Import validates file in full and creates the sequence. Validation
// failures are joined into one error wrapping domain.ErrValidation.
func (s *importService) Import(ctx context.Context, file *importer.SequenceFile, familyID, creatorID string) (result *app.ImportResult, err error) {
	uc := startUseCase(s.observer, "import-sequence", map[string]any{"family_id": familyID, "task_count": len(file.Tasks)})
	defer func() { uc.end(ctx, err) }()

	if errs := importer.ValidateSequenceFile(file); len(errs) > 0 {
		uc.fields["validation_errors"] = len(errs)
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, errors.Join(errs...))
	}

	req, err := importer.ToRequest(file)
	if err != nil {
		return nil, err
	}
	id, err := s.sequences.CreateSequence(ctx, familyID, creatorID, req)
	if err != nil {
		return nil, err
	}

	return &app.ImportResult{
		SequenceID:      id,
		Title:           cmp.Or(file.Title, domain.DefaultSequenceTitle),
		TaskCount:       len(file.Tasks),
		DependencyCount: importer.DependencyCount(file),
	}, nil
}
