package excel

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/itshmoh/exambot/internal/core/domain"
	"github.com/itshmoh/exambot/internal/infrastructure/dataset/csvfile"
)

// Reader parses Q&A datasets from XLSX workbooks. The first row of the
// first sheet is the header, with the same columns the CSV reader accepts.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

func (r *Reader) Read(ctx context.Context, path string) ([]domain.QARecord, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx dataset: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["question"]; !ok {
		return nil, fmt.Errorf("xlsx header must contain question and answer columns, got %v", rows[0])
	}
	if _, ok := columns["answer"]; !ok {
		return nil, fmt.Errorf("xlsx header must contain question and answer columns, got %v", rows[0])
	}

	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []domain.QARecord
	for _, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		question := cell(row, "question")
		answer := cell(row, "answer")
		if question == "" || answer == "" {
			continue
		}
		records = append(records, domain.QARecord{
			ID:          csvfile.RecordID(question),
			Question:    question,
			Answer:      answer,
			Explanation: cell(row, "explanation"),
			Topic:       cell(row, "topic"),
			Type:        cell(row, "type"),
			Difficulty:  cell(row, "difficulty"),
		})
	}
	return records, nil
}
