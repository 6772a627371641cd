package models

import (
	"time"

	"gorm.io/datatypes"
)

// PlanScores maps a plan to its NPS. Plans without data are absent.
type PlanScores map[Plan]int

type HistoryEntry struct {
	ID           uint                           `gorm:"primaryKey" json:"-"`
	Date         string                         `gorm:"type:varchar(10);not null;uniqueIndex" json:"date"`
	Timestamp    time.Time                      `gorm:"not null" json:"timestamp"`
	NPSByPlan    datatypes.JSONType[PlanScores] `gorm:"column:nps_by_plan" json:"nps_by_plan"`
	TotalRecords int                            `gorm:"not null;default:0" json:"total_records"`
	CreatedAt    time.Time                      `json:"created_at"`
	UpdatedAt    time.Time                      `json:"updated_at"`
}

func (HistoryEntry) TableName() string {
	return "nps_history"
}

func (h HistoryEntry) Scores() PlanScores {
	scores := h.NPSByPlan.Data()
	if scores == nil {
		return PlanScores{}
	}
	return scores
}

// HistoryPoint is the API view of a history entry or of a quarter.
type HistoryPoint struct {
	Date         string     `json:"date"`
	DisplayDate  string     `json:"display_date"`
	NPSByPlan    PlanScores `json:"nps_by_plan"`
	TotalRecords int        `json:"total_records"`
	Timestamp    string     `json:"timestamp"`
}

type Period string

const (
	PeriodAll Period = "all"
	Period7d  Period = "7d"
	Period30d Period = "30d"
	Period90d Period = "90d"
)

// Days returns the look-back window, 0 meaning no limit.
func (p Period) Days() int {
	switch p {
	case Period7d:
		return 7
	case Period30d:
		return 30
	case Period90d:
		return 90
	default:
		return 0
	}
}
