package pdffile

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/itshmoh/exambot/internal/core/domain"
	"github.com/itshmoh/exambot/internal/infrastructure/dataset/csvfile"
)

// Reader extracts Q&A pairs from PDF study sheets. It expects alternating
// blocks introduced by "Q:"/"Question:" and "A:"/"Answer:" markers; text
// outside such blocks is ignored.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

func (r *Reader) Read(ctx context.Context, path string) ([]domain.QARecord, error) {
	file, doc, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf dataset: %w", err)
	}
	defer file.Close()

	text, err := doc.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	var builder strings.Builder
	scanner := bufio.NewScanner(text)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		builder.WriteString(scanner.Text())
		builder.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan pdf text: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParsePairs(builder.String()), nil
}

// ParsePairs splits marker-delimited text into Q&A records.
func ParsePairs(text string) []domain.QARecord {
	var (
		records  []domain.QARecord
		question []string
		answer   []string
		section  string
	)

	flush := func() {
		q := strings.TrimSpace(strings.Join(question, " "))
		a := strings.TrimSpace(strings.Join(answer, " "))
		if q != "" && a != "" {
			records = append(records, domain.QARecord{
				ID:       csvfile.RecordID(q),
				Question: q,
				Answer:   a,
			})
		}
		question = question[:0]
		answer = answer[:0]
		section = ""
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case hasMarker(line, "Q:", "Question:"):
			// a question marker always starts a new pair; an unanswered
			// previous question is discarded by flush
			flush()
			section = "question"
			question = append(question, stripMarker(line, "Q:", "Question:"))
		case hasMarker(line, "A:", "Answer:"):
			section = "answer"
			answer = append(answer, stripMarker(line, "A:", "Answer:"))
		case line == "":
			// blank lines separate pairs once an answer started
			if section == "answer" {
				flush()
			}
		default:
			switch section {
			case "question":
				question = append(question, line)
			case "answer":
				answer = append(answer, line)
			}
		}
	}
	flush()
	return records
}

func hasMarker(line string, markers ...string) bool {
	for _, marker := range markers {
		if len(line) >= len(marker) && strings.EqualFold(line[:len(marker)], marker) {
			return true
		}
	}
	return false
}

func stripMarker(line string, markers ...string) string {
	for _, marker := range markers {
		if len(line) >= len(marker) && strings.EqualFold(line[:len(marker)], marker) {
			return strings.TrimSpace(line[len(marker):])
		}
	}
	return line
}
