package services

import (
	"strings"
	"testing"

	"alfredoptarigan/nps-analyzer/internal/models"
)

func TestGenerateInsights_NoPlans(t *testing.T) {
	got := GenerateInsights(models.NPSResult{DetractorPercentage: 90, AverageScore: "9.9"}, nil)
	if len(got) != 0 {
		t.Fatalf("expected no insights, got %+v", got)
	}
}

func TestGenerateInsights_AllRulesFire(t *testing.T) {
	overall := models.NPSResult{
		PromoterPercentage:  61,
		DetractorPercentage: 31,
		AverageScore:        "8.6",
	}
	byPlan := map[models.Plan]models.NPSResult{
		models.PlanFree: {NPS: 10, Total: 4},
		models.PlanPro:  {NPS: 70, Total: 6},
	}

	got := GenerateInsights(overall, byPlan)
	if len(got) != 5 {
		t.Fatalf("expected 5 insights, got %d: %+v", len(got), got)
	}

	wantTypes := []models.InsightType{
		models.InsightSuccess,
		models.InsightWarning,
		models.InsightError,
		models.InsightSuccess,
		models.InsightSuccess,
	}
	for i, want := range wantTypes {
		if got[i].Type != want {
			t.Fatalf("insight %d: got type %q, want %q", i, got[i].Type, want)
		}
	}
	if !strings.Contains(got[0].Message, "PRO") || !strings.Contains(got[0].Message, "6 users") {
		t.Fatalf("best plan message: %q", got[0].Message)
	}
	if !strings.Contains(got[1].Message, "FREE") {
		t.Fatalf("worst plan message: %q", got[1].Message)
	}
}

func TestGenerateInsights_ThresholdsAreStrict(t *testing.T) {
	overall := models.NPSResult{
		PromoterPercentage:  60,
		DetractorPercentage: 30,
		AverageScore:        "8.5",
	}
	byPlan := map[models.Plan]models.NPSResult{
		models.PlanLite: {NPS: 30, Total: 2},
	}

	got := GenerateInsights(overall, byPlan)
	if len(got) != 1 || got[0].Type != models.InsightSuccess {
		t.Fatalf("only the best plan insight should fire, got %+v", got)
	}
}

func TestGenerateInsights_TieBreakFollowsPlanOrder(t *testing.T) {
	byPlan := map[models.Plan]models.NPSResult{
		models.PlanPro:  {NPS: 5},
		models.PlanLite: {NPS: 5},
		models.PlanFree: {NPS: 5},
	}

	got := GenerateInsights(models.NPSResult{AverageScore: "0.0"}, byPlan)
	if len(got) != 2 {
		t.Fatalf("expected best and worst insights, got %+v", got)
	}
	if !strings.Contains(got[0].Message, "FREE") || !strings.Contains(got[1].Message, "FREE") {
		t.Fatalf("ties must resolve to FREE: %+v", got)
	}
}
