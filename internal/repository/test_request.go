package repository

import (
	"context"
	"errors"

	"covid-testing-server/internal/models"
)

var (
	// ErrNotFound is returned when no test request has the given ID.
	ErrNotFound = errors.New("test request not found")
	// ErrStaleStatus is returned by Transition when the stored status no
	// longer matches the expected prior status.
	ErrStaleStatus = errors.New("test request status changed concurrently")
)

// TestRequestRepository persists test requests together with their owned
// lab result, consultation and flow history.
type TestRequestRepository interface {
	// Create stores a new request and its first flow entry.
	Create(ctx context.Context, req *models.TestRequest, flow *models.TestRequestFlow) error
	FindByID(ctx context.Context, id uint) (*models.TestRequest, error)
	FindByStatus(ctx context.Context, status models.RequestStatus) ([]models.TestRequest, error)
	FindByTester(ctx context.Context, testerID string) ([]models.TestRequest, error)
	FindByDoctor(ctx context.Context, doctorID string) ([]models.TestRequest, error)
	FindByCreator(ctx context.Context, userID string) ([]models.TestRequest, error)
	// HasActiveRequest reports whether a request that is not yet COMPLETED
	// exists for the email or the phone number.
	HasActiveRequest(ctx context.Context, email, phone string) (bool, error)
	// Transition writes req only if its stored status is still from, along
	// with any owned sub-record set on req and the flow entry.
	Transition(ctx context.Context, req *models.TestRequest, from models.RequestStatus, flow *models.TestRequestFlow) error
	ListFlow(ctx context.Context, requestID uint) ([]models.TestRequestFlow, error)
}
