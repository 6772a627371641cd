package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Plan string

const (
	PlanFree Plan = "FREE"
	PlanLite Plan = "LITE"
	PlanPro  Plan = "PRO"
)

// Plans lists every subscription tier in the order used for reports and tie-breaks.
var Plans = []Plan{PlanFree, PlanLite, PlanPro}

// ParsePlan accepts a plan name in any case.
func ParsePlan(value string) (Plan, bool) {
	p := Plan(strings.ToUpper(strings.TrimSpace(value)))
	switch p {
	case PlanFree, PlanLite, PlanPro:
		return p, true
	}
	return "", false
}

type Category string

const (
	CategoryPromoter  Category = "Promotor"
	CategoryPassive   Category = "Neutro"
	CategoryDetractor Category = "Detrator"
)

// CategoryFor classifies a 0..10 score: 9-10 promoter, 7-8 passive, 0-6 detractor.
func CategoryFor(score int) Category {
	switch {
	case score >= 9:
		return CategoryPromoter
	case score >= 7:
		return CategoryPassive
	default:
		return CategoryDetractor
	}
}

const (
	MinScore = 0
	MaxScore = 10
)

type Evaluation struct {
	ID        uint       `gorm:"primaryKey" json:"-"`
	Date      string     `gorm:"type:varchar(10);not null;index" json:"date"`
	RawDate   string     `gorm:"type:varchar(64)" json:"raw_date"`
	ClientID  *string    `gorm:"type:varchar(255);index" json:"client_id,omitempty"`
	UserName  *string    `gorm:"type:varchar(255)" json:"user_name,omitempty"`
	Score     int        `gorm:"not null;index" json:"score"`
	Plan      Plan       `gorm:"type:varchar(8);not null;index" json:"plan"`
	Comment   *string    `gorm:"type:text" json:"comment,omitempty"`
	Category  Category   `gorm:"type:varchar(16);not null" json:"category"`
	UploadID  *uuid.UUID `gorm:"type:varchar(36);index" json:"upload_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}

// Valid reports whether the evaluation can be stored.
func (e Evaluation) Valid() bool {
	if e.Score < MinScore || e.Score > MaxScore {
		return false
	}
	_, ok := ParsePlan(string(e.Plan))
	return ok
}

// EvaluationStats is the read-only rollup over every stored evaluation.
type EvaluationStats struct {
	TotalEvaluations int64    `json:"total_evaluations"`
	UniqueDates      int64    `json:"unique_dates"`
	UniqueClients    int64    `json:"unique_clients"`
	AverageScore     *float64 `json:"average_score"`
	FirstDate        *string  `json:"first_date"`
	LastDate         *string  `json:"last_date"`
}
