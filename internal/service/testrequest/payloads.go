package testrequest

import "covid-testing-server/internal/models"

// Actor is the authenticated caller performing an operation.
type Actor struct {
	ID   string
	Role models.Role
}

// CreateTestRequest is the patient's registration payload.
type CreateTestRequest struct {
	Name        string        `json:"name" validate:"required,max=100"`
	Age         int           `json:"age" validate:"required,min=1,max=150"`
	Gender      models.Gender `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	PhoneNumber string        `json:"phoneNumber" validate:"required,max=20"`
	Email       string        `json:"email" validate:"required,email"`
	PinCode     int           `json:"pinCode" validate:"required,min=1"`
	Address     string        `json:"address" validate:"max=255"`
}

// CreateLabResult is the tester's result payload.
type CreateLabResult struct {
	BloodPressure string            `json:"bloodPressure" validate:"required"`
	HeartBeat     string            `json:"heartBeat" validate:"required"`
	Temperature   string            `json:"temperature" validate:"required"`
	OxygenLevel   string            `json:"oxygenLevel" validate:"required"`
	Comments      string            `json:"comments"`
	Result        models.TestStatus `json:"result" validate:"required,oneof=POSITIVE NEGATIVE"`
}

// CreateConsultationRequest is the doctor's consultation payload.
type CreateConsultationRequest struct {
	Suggestion models.DoctorSuggestion `json:"suggestion" validate:"required,oneof=HOME_QUARANTINE NO_ISSUES"`
	Comments   string                  `json:"comments"`
}
