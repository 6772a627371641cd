package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadRecord is the append-only audit entry written for every accepted file.
type UploadRecord struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"id"`
	Filename     string    `gorm:"type:text;not null" json:"filename"`
	TotalRecords int       `gorm:"not null" json:"total_records"`
	UniqueDates  int       `gorm:"not null" json:"unique_dates"`
	UploadDate   time.Time `gorm:"not null;index" json:"upload_date"`
	CreatedAt    time.Time `json:"created_at"`
}

func (UploadRecord) TableName() string {
	return "uploads"
}

func (u *UploadRecord) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
