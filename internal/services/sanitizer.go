package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"alfredoptarigan/nps-analyzer/internal/logger"
	"alfredoptarigan/nps-analyzer/internal/models"
)

var (
	ErrEmptyFile   = errors.New("the uploaded file is empty")
	ErrInvalidCSV  = errors.New("failed to parse CSV file")
	ErrNoValidRows = errors.New("no valid records found in file")
	ErrRowRejected = errors.New("row rejected")
)

// Canonical column names. The CSV header may use either the Portuguese or
// the English spelling, in any case and any order.
const (
	colDate    = "data"
	colClient  = "cliente"
	colUser    = "usuario"
	colScore   = "nota"
	colComment = "comentario"
	colPlan    = "plano"
)

var headerAliases = map[string]string{
	"data":       colDate,
	"date":       colDate,
	"cliente":    colClient,
	"client":     colClient,
	"client_id":  colClient,
	"usuario":    colUser,
	"usuário":    colUser,
	"user":       colUser,
	"nota":       colScore,
	"score":      colScore,
	"comentario": colComment,
	"comentário": colComment,
	"comment":    colComment,
	"plano":      colPlan,
	"plan":       colPlan,
}

// ParseResult holds the rows that survived sanitization plus what was lost.
type ParseResult struct {
	Evaluations []models.Evaluation
	Rejected    int
	Warnings    []models.RowWarning
}

type CSVParser interface {
	Parse(r io.Reader) (*ParseResult, error)
}

type csvParser struct {
	now func() time.Time
	log *logger.Logger
}

func NewCSVParser(now func() time.Time, log *logger.Logger) CSVParser {
	return &csvParser{
		now: now,
		log: log.With("component", "csv_parser"),
	}
}

// Parse reads a comma separated file with a header row. Malformed rows are
// logged and skipped; only unreadable input or a header without the score
// and plan columns fails the whole file.
func (p *csvParser) Parse(r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.Comma = ','
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rawHeader, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("%w: unable to read header: %v", ErrInvalidCSV, err)
	}

	header := NormalizeHeader(rawHeader)
	if !hasColumn(header, colScore) || !hasColumn(header, colPlan) {
		return nil, fmt.Errorf("%w: header must contain the %q and %q columns", ErrInvalidCSV, colScore, colPlan)
	}

	now := p.now()
	result := &ParseResult{}

	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Rejected++
				p.log.Warn("skipping unreadable CSV row", "line", parseErr.Line, "error", parseErr.Err)
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}
		line, _ := reader.FieldPos(0)

		evaluation, warning, err := SanitizeRow(header, record, now)
		if err != nil {
			result.Rejected++
			p.log.Warn("skipping invalid row", "line", line, "reason", err)
			continue
		}
		if warning != nil {
			warning.Line = line
			result.Warnings = append(result.Warnings, *warning)
			p.log.Warn("row date fell back to ingestion date", "line", line, "value", warning.Value)
		}
		result.Evaluations = append(result.Evaluations, evaluation)
	}

	p.log.Info("CSV parsed",
		"valid_rows", len(result.Evaluations),
		"rejected_rows", result.Rejected,
		"date_warnings", len(result.Warnings),
	)

	return result, nil
}

// NormalizeHeader lower-cases and trims every header cell and maps known
// aliases onto the canonical column names.
func NormalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canonical, ok := headerAliases[key]; ok {
			key = canonical
		}
		out[i] = key
	}
	return out
}

// SanitizeRow turns one CSV record into an Evaluation. header must already be
// normalized. A non-nil warning means the row is kept but its date fell back
// to now.
func SanitizeRow(header, record []string, now time.Time) (models.Evaluation, *models.RowWarning, error) {
	fields := mapFields(header, record)

	score, err := parseScore(fields[colScore])
	if err != nil {
		return models.Evaluation{}, nil, err
	}

	plan, ok := models.ParsePlan(fields[colPlan])
	if !ok {
		return models.Evaluation{}, nil, fmt.Errorf("%w: invalid plan %q", ErrRowRejected, fields[colPlan])
	}

	rawDate := fields[colDate]
	date, parsed := NormalizeDate(rawDate, now)

	evaluation := models.Evaluation{
		Date:     date,
		RawDate:  rawDate,
		ClientID: optional(fields[colClient]),
		UserName: optional(fields[colUser]),
		Score:    score,
		Plan:     plan,
		Comment:  optional(fields[colComment]),
		Category: models.CategoryFor(score),
	}

	var warning *models.RowWarning
	if !parsed {
		warning = &models.RowWarning{
			Field:   colDate,
			Value:   rawDate,
			Message: "unrecognized date, ingestion date used instead",
		}
	}

	return evaluation, warning, nil
}

// mapFields pairs header names with record values. When the record carries
// more values than the header, the comment column most likely contained
// unquoted commas: values before the comment column are matched from the
// start, values after it from the end, and the overflow is joined back into
// the comment.
func mapFields(header, record []string) map[string]string {
	fields := make(map[string]string, len(header))

	commentIdx := indexOf(header, colComment)
	if len(record) <= len(header) || commentIdx < 0 {
		for i, name := range header {
			if i < len(record) {
				fields[name] = strings.TrimSpace(record[i])
			}
		}
		return fields
	}

	for i := 0; i < commentIdx; i++ {
		fields[header[i]] = strings.TrimSpace(record[i])
	}

	trailing := len(header) - 1 - commentIdx
	for j := 0; j < trailing; j++ {
		fields[header[len(header)-1-j]] = strings.TrimSpace(record[len(record)-1-j])
	}

	overflow := record[commentIdx : len(record)-trailing]
	fields[colComment] = strings.TrimSpace(strings.Join(overflow, ","))

	return fields
}

func parseScore(value string) (int, error) {
	if value == "" {
		return 0, fmt.Errorf("%w: missing score", ErrRowRejected)
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: score %q is not a number", ErrRowRejected, value)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: score %q is not a whole number", ErrRowRejected, value)
	}
	if f < models.MinScore || f > models.MaxScore {
		return 0, fmt.Errorf("%w: score %q out of range", ErrRowRejected, value)
	}
	return int(f), nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func hasColumn(header []string, name string) bool {
	return indexOf(header, name) >= 0
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
