package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/itshmoh/exambot/internal/core/domain"
	"github.com/itshmoh/exambot/internal/core/ports"
)

// LoadDatasetUseCase reads one dataset file and loads its records into the
// corpus. The reader is chosen by file extension.
type LoadDatasetUseCase struct {
	writer  ports.CorpusWriter
	readers map[string]ports.DatasetReader
}

func NewLoadDatasetUseCase(writer ports.CorpusWriter, readers map[string]ports.DatasetReader) *LoadDatasetUseCase {
	return &LoadDatasetUseCase{
		writer:  writer,
		readers: readers,
	}
}

func (uc *LoadDatasetUseCase) LoadFile(ctx context.Context, path string) (int, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return 0, domain.WrapError(domain.ErrInvalidInput, "load dataset", errors.New("dataset path is required"))
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	reader, ok := uc.readers[ext]
	if !ok {
		return 0, domain.WrapError(domain.ErrInvalidInput, "load dataset", fmt.Errorf("unsupported dataset format: %q", ext))
	}

	records, err := reader.Read(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("read dataset %s: %w", path, err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	normalizeRecords(records)

	if err := uc.writer.BulkInsert(ctx, records); err != nil {
		return 0, fmt.Errorf("insert dataset records: %w", err)
	}
	return len(records), nil
}

// normalizeRecords lower-cases difficulty labels so the case-insensitive
// retrieval filter matches what ingestion stored.
func normalizeRecords(records []domain.QARecord) {
	for i := range records {
		records[i].Difficulty = strings.ToLower(strings.TrimSpace(records[i].Difficulty))
		records[i].Topic = strings.TrimSpace(records[i].Topic)
	}
}
