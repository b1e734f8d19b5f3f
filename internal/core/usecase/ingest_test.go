package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/itshmoh/exambot/internal/core/domain"
	"github.com/itshmoh/exambot/internal/core/ports"
)

type corpusWriterFake struct {
	inserted []domain.QARecord
	err      error
}

func (f *corpusWriterFake) BulkInsert(_ context.Context, records []domain.QARecord) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, records...)
	return nil
}

type datasetReaderFake struct {
	records []domain.QARecord
	err     error
	path    string
}

func (f *datasetReaderFake) Read(_ context.Context, path string) ([]domain.QARecord, error) {
	f.path = path
	return f.records, f.err
}

func TestLoadFileNormalizesDifficulty(t *testing.T) {
	writer := &corpusWriterFake{}
	reader := &datasetReaderFake{records: []domain.QARecord{
		{ID: "1", Question: "q", Answer: "a", Difficulty: " Beginner ", Topic: " pods "},
	}}
	uc := NewLoadDatasetUseCase(writer, map[string]ports.DatasetReader{"csv": reader})

	count, err := uc.LoadFile(context.Background(), "/data/kubernetes_qa.csv")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record loaded, got %d", count)
	}
	if writer.inserted[0].Difficulty != "beginner" {
		t.Fatalf("expected lowercased difficulty, got %q", writer.inserted[0].Difficulty)
	}
	if writer.inserted[0].Topic != "pods" {
		t.Fatalf("expected trimmed topic, got %q", writer.inserted[0].Topic)
	}
}

func TestLoadFileUnsupportedFormat(t *testing.T) {
	uc := NewLoadDatasetUseCase(&corpusWriterFake{}, map[string]ports.DatasetReader{"csv": &datasetReaderFake{}})
	_, err := uc.LoadFile(context.Background(), "/data/questions.docx")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLoadFileEmptyDatasetSkipsInsert(t *testing.T) {
	writer := &corpusWriterFake{}
	uc := NewLoadDatasetUseCase(writer, map[string]ports.DatasetReader{"csv": &datasetReaderFake{}})
	count, err := uc.LoadFile(context.Background(), "/data/empty.csv")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if count != 0 || len(writer.inserted) != 0 {
		t.Fatalf("expected no inserts for empty dataset")
	}
}

func TestLoadFileReaderError(t *testing.T) {
	reader := &datasetReaderFake{err: errors.New("bad header")}
	uc := NewLoadDatasetUseCase(&corpusWriterFake{}, map[string]ports.DatasetReader{"csv": reader})
	if _, err := uc.LoadFile(context.Background(), "/data/kubernetes_qa.csv"); err == nil {
		t.Fatalf("expected reader error to surface")
	}
}
