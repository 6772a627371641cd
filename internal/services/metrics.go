package services

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"alfredoptarigan/nps-analyzer/internal/models"
)

// ComputeNPS aggregates a set of evaluations. Each percentage is rounded
// half away from zero on its own and the NPS is the difference of the two
// rounded values, so it can differ by one from rounding the raw difference.
func ComputeNPS(evaluations []models.Evaluation) models.NPSResult {
	return computeNPS(evaluations, true)
}

// ComputeNPSByPlan applies ComputeNPS to each plan's share of the input.
// Plans without evaluations are left out and the median is not reported.
func ComputeNPSByPlan(evaluations []models.Evaluation) map[models.Plan]models.NPSResult {
	byPlan := groupByPlan(evaluations)

	results := make(map[models.Plan]models.NPSResult, len(byPlan))
	for _, plan := range models.Plans {
		group, ok := byPlan[plan]
		if !ok {
			continue
		}
		results[plan] = computeNPS(group, false)
	}
	return results
}

// NPSScoresByPlan reduces ComputeNPSByPlan to the NPS figure per plan, which
// is what the history table stores.
func NPSScoresByPlan(evaluations []models.Evaluation) models.PlanScores {
	scores := models.PlanScores{}
	for plan, result := range ComputeNPSByPlan(evaluations) {
		scores[plan] = result.NPS
	}
	return scores
}

func computeNPS(evaluations []models.Evaluation, withMedian bool) models.NPSResult {
	scores := make([]int, 0, len(evaluations))
	for _, e := range evaluations {
		if e.Score >= models.MinScore && e.Score <= models.MaxScore {
			scores = append(scores, e.Score)
		}
	}

	result := models.NPSResult{AverageScore: "0.0"}
	if withMedian {
		result.Median = "0.0"
	}

	total := len(scores)
	if total == 0 {
		return result
	}

	sum := 0
	for _, s := range scores {
		switch models.CategoryFor(s) {
		case models.CategoryPromoter:
			result.Promoters++
		case models.CategoryPassive:
			result.Passives++
		default:
			result.Detractors++
		}
		sum += s
	}

	result.Total = total
	result.PromoterPercentage = percent(result.Promoters, total)
	result.PassivePercentage = percent(result.Passives, total)
	result.DetractorPercentage = percent(result.Detractors, total)
	result.NPS = result.PromoterPercentage - result.DetractorPercentage

	result.AverageScore = decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(total))).
		StringFixed(1)

	if withMedian {
		result.Median = median(scores).StringFixed(1)
	}

	return result
}

// ScoreHistogram always returns eleven buckets, one per score 0..10.
// Percentages are relative to the whole input.
func ScoreHistogram(evaluations []models.Evaluation) []models.ScoreBucket {
	buckets := make([]models.ScoreBucket, models.MaxScore-models.MinScore+1)
	for i := range buckets {
		score := models.MinScore + i
		buckets[i] = models.ScoreBucket{
			Score:    score,
			Category: models.CategoryFor(score),
		}
	}

	total := 0
	for _, e := range evaluations {
		if e.Score < models.MinScore || e.Score > models.MaxScore {
			continue
		}
		buckets[e.Score-models.MinScore].Count++
		total++
	}

	if total == 0 {
		return buckets
	}
	for i := range buckets {
		buckets[i].Percentage = round1(float64(buckets[i].Count) / float64(total) * 100)
	}
	return buckets
}

// PlanDistribution reports each plan's share of the input. Only plans that
// appear are included.
func PlanDistribution(evaluations []models.Evaluation) map[models.Plan]models.PlanShare {
	distribution := make(map[models.Plan]models.PlanShare)
	if len(evaluations) == 0 {
		return distribution
	}

	total := float64(len(evaluations))
	for plan, group := range groupByPlan(evaluations) {
		distribution[plan] = models.PlanShare{
			Count:      len(group),
			Percentage: round1(float64(len(group)) / total * 100),
		}
	}
	return distribution
}

// UniqueDates counts the distinct normalized dates in the input.
func UniqueDates(evaluations []models.Evaluation) int {
	seen := make(map[string]struct{})
	for _, e := range evaluations {
		seen[e.Date] = struct{}{}
	}
	return len(seen)
}

// GroupByDate splits evaluations by normalized date and returns the dates in
// ascending order.
func GroupByDate(evaluations []models.Evaluation) (map[string][]models.Evaluation, []string) {
	groups := make(map[string][]models.Evaluation)
	for _, e := range evaluations {
		groups[e.Date] = append(groups[e.Date], e)
	}

	dates := make([]string, 0, len(groups))
	for d := range groups {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	return groups, dates
}

func groupByPlan(evaluations []models.Evaluation) map[models.Plan][]models.Evaluation {
	groups := make(map[models.Plan][]models.Evaluation)
	for _, e := range evaluations {
		groups[e.Plan] = append(groups[e.Plan], e)
	}
	return groups
}

func median(scores []int) decimal.Decimal {
	sorted := append([]int(nil), scores...)
	sort.Ints(sorted)

	n := len(sorted)
	mid := n / 2
	if n%2 == 1 {
		return decimal.NewFromInt(int64(sorted[mid]))
	}
	return decimal.NewFromInt(int64(sorted[mid-1] + sorted[mid])).Div(decimal.NewFromInt(2))
}

func percent(count, total int) int {
	return int(math.Round(float64(count) / float64(total) * 100))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
