package models

import (
	"time"
)

// DoctorSuggestion is the doctor's verdict after reviewing the lab result
type DoctorSuggestion string

const (
	SuggestionHomeQuarantine DoctorSuggestion = "HOME_QUARANTINE"
	SuggestionNoIssues       DoctorSuggestion = "NO_ISSUES"
)

// Consultation is the doctor's remark on a completed lab test.
type Consultation struct {
	ID            uint             `gorm:"primaryKey;autoIncrement" json:"consultationId"`
	TestRequestID uint             `gorm:"uniqueIndex;not null" json:"-"`
	DoctorID      string           `gorm:"size:36;index" json:"doctorId"`
	Suggestion    DoctorSuggestion `gorm:"size:20;not null" json:"suggestion"`
	Comments      string           `gorm:"type:text" json:"comments"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedOn"`
}
