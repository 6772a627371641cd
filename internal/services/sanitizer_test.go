package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"alfredoptarigan/nps-analyzer/internal/logger"
	"alfredoptarigan/nps-analyzer/internal/models"
)

func newTestParser() CSVParser {
	return NewCSVParser(func() time.Time { return fixedNow }, logger.NewNop())
}

func TestSanitizeRow_RejectsInvalidScoreAndPlan(t *testing.T) {
	header := NormalizeHeader([]string{"nota", "plano"})

	cases := []struct {
		name   string
		record []string
	}{
		{"score above range", []string{"11", "PRO"}},
		{"negative score", []string{"-1", "PRO"}},
		{"fractional score", []string{"7.5", "PRO"}},
		{"missing score", []string{"", "PRO"}},
		{"non numeric score", []string{"dez", "PRO"}},
		{"unknown plan", []string{"7", "ENTERPRISE"}},
		{"missing plan", []string{"7"}},
	}

	for _, tc := range cases {
		_, _, err := SanitizeRow(header, tc.record, fixedNow)
		if !errors.Is(err, ErrRowRejected) {
			t.Fatalf("%s: expected ErrRowRejected, got %v", tc.name, err)
		}
	}
}

func TestSanitizeRow_NormalizesFields(t *testing.T) {
	header := NormalizeHeader([]string{" Data ", "CLIENTE", "Usuario", "Nota", "Comentario", "Plano"})
	record := []string{" 05/03/2024 ", " c-1 ", "Ana", " 9 ", " ótimo ", " pro "}

	ev, warning, err := SanitizeRow(header, record, fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if warning != nil {
		t.Fatalf("unexpected warning: %+v", warning)
	}
	if ev.Date != "2024-03-05" || ev.RawDate != "05/03/2024" {
		t.Fatalf("unexpected dates: %q / %q", ev.Date, ev.RawDate)
	}
	if ev.Plan != models.PlanPro || ev.Score != 9 || ev.Category != models.CategoryPromoter {
		t.Fatalf("unexpected evaluation: %+v", ev)
	}
	if ev.ClientID == nil || *ev.ClientID != "c-1" {
		t.Fatalf("client not trimmed: %v", ev.ClientID)
	}
	if ev.Comment == nil || *ev.Comment != "ótimo" {
		t.Fatalf("comment not trimmed: %v", ev.Comment)
	}
}

func TestSanitizeRow_EnglishHeaderAliases(t *testing.T) {
	header := NormalizeHeader([]string{"plan", "score", "date", "client", "user", "comment"})
	ev, _, err := SanitizeRow(header, []string{"lite", "6", "2024-01-10", "", "", ""}, fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Plan != models.PlanLite || ev.Score != 6 || ev.Date != "2024-01-10" {
		t.Fatalf("unexpected evaluation: %+v", ev)
	}
	if ev.ClientID != nil || ev.UserName != nil || ev.Comment != nil {
		t.Fatalf("empty optional fields must be nil: %+v", ev)
	}
}

func TestSanitizeRow_DateFallbackProducesWarning(t *testing.T) {
	header := NormalizeHeader([]string{"data", "nota", "plano"})
	ev, warning, err := SanitizeRow(header, []string{"ontem", "10", "FREE"}, fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Date != "2025-06-15" {
		t.Fatalf("expected fallback date, got %q", ev.Date)
	}
	if warning == nil || warning.Value != "ontem" || warning.Field != "data" {
		t.Fatalf("expected date warning, got %+v", warning)
	}
}

func TestSanitizeRow_ReconstructsCommentWithCommas(t *testing.T) {
	header := NormalizeHeader([]string{"data", "cliente", "usuario", "nota", "comentario", "plano"})
	record := []string{"2024-03-05", "c1", "Ana", "4", "lento", " caro", " confuso", "FREE"}

	ev, _, err := SanitizeRow(header, record, fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Comment == nil || *ev.Comment != "lento, caro, confuso" {
		t.Fatalf("unexpected comment: %v", ev.Comment)
	}
	if ev.Plan != models.PlanFree {
		t.Fatalf("plan should be read from last field, got %q", ev.Plan)
	}
}

func TestSanitizeRow_ReconstructsCommentWhenNotBeforeLastColumn(t *testing.T) {
	header := NormalizeHeader([]string{"comentario", "nota", "plano"})
	record := []string{"bom", "mas caro", "8", "pro"}

	ev, _, err := SanitizeRow(header, record, fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Comment == nil || *ev.Comment != "bom,mas caro" || ev.Score != 8 || ev.Plan != models.PlanPro {
		t.Fatalf("unexpected evaluation: %+v comment=%v", ev, ev.Comment)
	}
}

func TestCSVParser_Parse(t *testing.T) {
	input := strings.Join([]string{
		"data,cliente,usuario,nota,comentario,plano",
		"2024-03-05,c1,Ana,10,\"ótimo, recomendo\",FREE",
		"2024-03-05,c2,Bruno,8,,free",
		"05/03/2024,c3,Carla,3,ruim,PRO",
		"2024-03-06,c4,Davi,11,fora,PRO",
		"2024-03-06,c5,Eva,7,,ENTERPRISE",
		"sem data,c6,Fabi,9,,LITE",
		"",
	}, "\n")

	result, err := newTestParser().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Evaluations) != 4 {
		t.Fatalf("expected 4 valid rows, got %d", len(result.Evaluations))
	}
	if result.Rejected != 2 {
		t.Fatalf("expected 2 rejected rows, got %d", result.Rejected)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Line != 7 {
		t.Fatalf("expected one warning on line 7, got %+v", result.Warnings)
	}
	if c := result.Evaluations[0].Comment; c == nil || *c != "ótimo, recomendo" {
		t.Fatalf("quoted comment not preserved: %v", c)
	}
}

func TestCSVParser_EmptyFile(t *testing.T) {
	_, err := newTestParser().Parse(strings.NewReader(""))
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestCSVParser_MissingRequiredColumns(t *testing.T) {
	_, err := newTestParser().Parse(strings.NewReader("data,cliente\n2024-01-01,c1\n"))
	if !errors.Is(err, ErrInvalidCSV) {
		t.Fatalf("expected ErrInvalidCSV, got %v", err)
	}
}

func TestCSVParser_StripsByteOrderMark(t *testing.T) {
	result, err := newTestParser().Parse(strings.NewReader("\ufeffnota,plano\n9,PRO\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Evaluations) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Evaluations))
	}
}
