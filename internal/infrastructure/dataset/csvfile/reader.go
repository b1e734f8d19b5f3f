package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/itshmoh/exambot/internal/core/domain"
)

// Reader parses Q&A datasets from CSV files. The first row is a header;
// question and answer columns are required, topic, type, difficulty and
// explanation are optional.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

func (r *Reader) Read(ctx context.Context, path string) ([]domain.QARecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv dataset: %w", err)
	}
	defer file.Close()

	parser := csv.NewReader(file)
	parser.FieldsPerRecord = -1

	header, err := parser.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var records []domain.QARecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := parser.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		record, ok := rowToRecord(columns, row)
		if !ok {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

type columnIndex struct {
	question    int
	answer      int
	explanation int
	topic       int
	qtype       int
	difficulty  int
}

func mapColumns(header []string) (columnIndex, error) {
	idx := columnIndex{question: -1, answer: -1, explanation: -1, topic: -1, qtype: -1, difficulty: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "question":
			idx.question = i
		case "answer":
			idx.answer = i
		case "explanation":
			idx.explanation = i
		case "topic":
			idx.topic = i
		case "type":
			idx.qtype = i
		case "difficulty":
			idx.difficulty = i
		}
	}
	if idx.question < 0 || idx.answer < 0 {
		return idx, fmt.Errorf("csv header must contain question and answer columns, got %v", header)
	}
	return idx, nil
}

func rowToRecord(idx columnIndex, row []string) (domain.QARecord, bool) {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	question := cell(idx.question)
	answer := cell(idx.answer)
	if question == "" || answer == "" {
		return domain.QARecord{}, false
	}

	return domain.QARecord{
		ID:          RecordID(question),
		Question:    question,
		Answer:      answer,
		Explanation: cell(idx.explanation),
		Topic:       cell(idx.topic),
		Type:        cell(idx.qtype),
		Difficulty:  cell(idx.difficulty),
	}, true
}

// RecordID derives a stable identifier from the question text so reloading
// the same dataset updates rows instead of duplicating them.
func RecordID(question string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(question)).String()
}
