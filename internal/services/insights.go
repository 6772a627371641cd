package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"alfredoptarigan/nps-analyzer/internal/models"
)

const (
	attentionNPSThreshold       = 30
	detractorAlertPercentage    = 30
	promoterHighlightPercentage = 60
)

var excellentAverage = decimal.RequireFromString("8.5")

// GenerateInsights turns computed results into short observations. Rules are
// independent and emitted in a fixed order. Best and worst plan ties go to
// the plan listed first in models.Plans.
func GenerateInsights(overall models.NPSResult, byPlan map[models.Plan]models.NPSResult) []models.Insight {
	insights := []models.Insight{}

	var (
		best, worst       models.Plan
		bestNPS, worstNPS int
		found             bool
	)
	for _, plan := range models.Plans {
		result, ok := byPlan[plan]
		if !ok {
			continue
		}
		if !found {
			best, worst = plan, plan
			bestNPS, worstNPS = result.NPS, result.NPS
			found = true
			continue
		}
		if result.NPS > bestNPS {
			best, bestNPS = plan, result.NPS
		}
		if result.NPS < worstNPS {
			worst, worstNPS = plan, result.NPS
		}
	}

	if !found {
		return insights
	}

	insights = append(insights, models.Insight{
		Type:    models.InsightSuccess,
		Icon:    "🚀",
		Message: fmt.Sprintf("Plan %s leads with NPS %d (%d users)", best, bestNPS, byPlan[best].Total),
	})

	if worstNPS < attentionNPSThreshold {
		insights = append(insights, models.Insight{
			Type:    models.InsightWarning,
			Icon:    "⚠️",
			Message: fmt.Sprintf("Plan %s needs attention: NPS %d", worst, worstNPS),
		})
	}

	if overall.DetractorPercentage > detractorAlertPercentage {
		insights = append(insights, models.Insight{
			Type:    models.InsightError,
			Icon:    "🔴",
			Message: fmt.Sprintf("%d%% detractors - immediate action required", overall.DetractorPercentage),
		})
	}

	if overall.PromoterPercentage > promoterHighlightPercentage {
		insights = append(insights, models.Insight{
			Type:    models.InsightSuccess,
			Icon:    "✨",
			Message: fmt.Sprintf("%d%% promoters - great for organic growth", overall.PromoterPercentage),
		})
	}

	if avg, err := decimal.NewFromString(overall.AverageScore); err == nil && avg.GreaterThan(excellentAverage) {
		insights = append(insights, models.Insight{
			Type:    models.InsightSuccess,
			Icon:    "⭐",
			Message: fmt.Sprintf("Excellent average: %s/10", overall.AverageScore),
		})
	}

	return insights
}
