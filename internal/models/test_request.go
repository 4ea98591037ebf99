package models

import (
	"time"
)

// RequestStatus is the lifecycle state of a TestRequest.
type RequestStatus string

const (
	StatusInitiated          RequestStatus = "INITIATED"
	StatusLabTestInProgress  RequestStatus = "LAB_TEST_IN_PROGRESS"
	StatusLabTestCompleted   RequestStatus = "LAB_TEST_COMPLETED"
	StatusDiagnosisInProcess RequestStatus = "DIAGNOSIS_IN_PROCESS"
	StatusCompleted          RequestStatus = "COMPLETED"
)

// statusOrder is the only path a request may take.
var statusOrder = []RequestStatus{
	StatusInitiated,
	StatusLabTestInProgress,
	StatusLabTestCompleted,
	StatusDiagnosisInProcess,
	StatusCompleted,
}

// Next returns the status that follows s. ok is false for COMPLETED and
// for unknown values.
func (s RequestStatus) Next() (next RequestStatus, ok bool) {
	i := s.rank()
	if i < 0 || i == len(statusOrder)-1 {
		return "", false
	}
	return statusOrder[i+1], true
}

// CanTransitionTo reports whether to is exactly one step after s.
func (s RequestStatus) CanTransitionTo(to RequestStatus) bool {
	next, ok := s.Next()
	return ok && next == to
}

func (s RequestStatus) rank() int {
	for i, st := range statusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Gender of the patient
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// TestRequest tracks one patient's test from registration to consultation.
type TestRequest struct {
	ID          uint          `gorm:"primaryKey;autoIncrement" json:"requestId"`
	Name        string        `gorm:"size:100;not null" json:"name"`
	Age         int           `json:"age"`
	Gender      Gender        `gorm:"size:10" json:"gender"`
	PhoneNumber string        `gorm:"size:20;index" json:"phoneNumber"`
	Email       string        `gorm:"size:255;index" json:"email"`
	PinCode     int           `json:"pinCode"`
	Address     string        `gorm:"size:255" json:"address,omitempty"`
	CreatedBy   string        `gorm:"size:36;index" json:"createdBy"`
	Status      RequestStatus `gorm:"size:30;index;not null;default:'INITIATED'" json:"status"`
	TesterID    *string       `gorm:"size:36;index" json:"testerId,omitempty"`
	DoctorID    *string       `gorm:"size:36;index" json:"doctorId,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	// Relations
	LabResult    *LabResult    `gorm:"foreignKey:TestRequestID" json:"labResult,omitempty"`
	Consultation *Consultation `gorm:"foreignKey:TestRequestID" json:"consultation,omitempty"`
}
