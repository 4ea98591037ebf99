package models

import (
	"time"
)

// TestStatus is the outcome of a lab test
type TestStatus string

const (
	TestPositive TestStatus = "POSITIVE"
	TestNegative TestStatus = "NEGATIVE"
)

// LabResult holds the vitals and outcome recorded by the tester.
type LabResult struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"resultId"`
	TestRequestID uint       `gorm:"uniqueIndex;not null" json:"-"`
	TesterID      string     `gorm:"size:36;index" json:"testerId"`
	BloodPressure string     `gorm:"size:20" json:"bloodPressure"`
	HeartBeat     string     `gorm:"size:20" json:"heartBeat"`
	Temperature   string     `gorm:"size:20" json:"temperature"`
	OxygenLevel   string     `gorm:"size:20" json:"oxygenLevel"`
	Comments      string     `gorm:"type:text" json:"comments"`
	Result        TestStatus `gorm:"size:10" json:"result"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedOn"`
}
