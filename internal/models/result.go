package models

import "time"

// NPSResult aggregates a set of evaluations. Percentages are rounded
// independently and need not sum to 100.
type NPSResult struct {
	NPS                 int    `json:"nps"`
	Total               int    `json:"total"`
	Promoters           int    `json:"promoters"`
	Passives            int    `json:"passives"`
	Detractors          int    `json:"detractors"`
	PromoterPercentage  int    `json:"promoter_percentage"`
	PassivePercentage   int    `json:"passive_percentage"`
	DetractorPercentage int    `json:"detractor_percentage"`
	AverageScore        string `json:"average_score"`
	Median              string `json:"median,omitempty"`
}

type InsightType string

const (
	InsightSuccess InsightType = "success"
	InsightWarning InsightType = "warning"
	InsightError   InsightType = "error"
)

type Insight struct {
	Type    InsightType `json:"type"`
	Icon    string      `json:"icon"`
	Message string      `json:"message"`
}

type ScoreBucket struct {
	Score      int      `json:"score"`
	Count      int      `json:"count"`
	Percentage float64  `json:"percentage"`
	Category   Category `json:"category"`
}

type PlanShare struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// RowWarning flags a row that was kept but needed a fallback, e.g. an
// unparseable date that was replaced by the ingestion date.
type RowWarning struct {
	Line    int    `json:"line"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type UploadResult struct {
	UploadID          string             `json:"upload_id"`
	FileName          string             `json:"file_name"`
	UploadDate        time.Time          `json:"upload_date"`
	TotalRecords      int                `json:"total_records"`
	RejectedRows      int                `json:"rejected_rows"`
	UniqueDates       int                `json:"unique_dates"`
	NPSResults        NPSResult          `json:"nps_results"`
	NPSResultsByPlan  map[Plan]NPSResult `json:"nps_results_by_plan"`
	Insights          []Insight          `json:"insights"`
	ScoreDistribution []ScoreBucket      `json:"score_distribution"`
	PlanPercentages   map[Plan]PlanShare `json:"plan_percentages"`
	Warnings          []RowWarning       `json:"warnings"`
	Evaluations       []Evaluation       `json:"csv_data"`
}

type StatsResponse struct {
	Stats         EvaluationStats `json:"stats"`
	RecentUploads []UploadRecord  `json:"recent_uploads"`
}

type HistoryResponse struct {
	Entries      []HistoryPoint `json:"entries"`
	TotalEntries int            `json:"total_entries"`
	Period       Period         `json:"period"`
	Aggregated   bool           `json:"aggregated"`
}

type BackupInfo struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentSummary struct {
	Period       Period   `json:"period"`
	CommentsUsed int      `json:"comments_used"`
	Summary      string   `json:"summary"`
	Themes       []string `json:"themes"`
}

// ClearResult reports what a history clear removed and where the data went.
type ClearResult struct {
	Backup             *BackupInfo `json:"backup"`
	HistoryDeleted     int64       `json:"history_deleted"`
	EvaluationsDeleted int64       `json:"evaluations_deleted"`
}

type StoreCounts struct {
	HistoryEntries int64 `json:"history_entries"`
	Evaluations    int64 `json:"evaluations"`
	Uploads        int64 `json:"uploads"`
}

// Snapshot is the content of a backup file.
type Snapshot struct {
	CreatedAt   time.Time      `json:"created_at"`
	History     []HistoryEntry `json:"history"`
	Uploads     []UploadRecord `json:"uploads"`
	Evaluations []Evaluation   `json:"evaluations"`
}
