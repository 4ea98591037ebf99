package models

import (
	"time"
)

// TestRequestFlow is one recorded status change. Rows are append-only.
type TestRequestFlow struct {
	ID            uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	TestRequestID uint          `gorm:"index;not null" json:"requestId"`
	FromStatus    RequestStatus `gorm:"size:30" json:"fromStatus"`
	ToStatus      RequestStatus `gorm:"size:30;not null" json:"toStatus"`
	ChangedBy     string        `gorm:"size:36" json:"changedBy"`
	CreatedAt     time.Time     `json:"happenedOn"`
}
