package testrequest

import (
	"context"

	"covid-testing-server/internal/models"
)

// FindBy lists every request currently in status.
func (s *Service) FindBy(ctx context.Context, status models.RequestStatus) ([]models.TestRequest, error) {
	return s.repo.FindByStatus(ctx, status)
}

// FindByTester lists the requests assigned to the tester.
func (s *Service) FindByTester(ctx context.Context, tester Actor) ([]models.TestRequest, error) {
	return s.repo.FindByTester(ctx, tester.ID)
}

// FindByDoctor lists the requests assigned to the doctor.
func (s *Service) FindByDoctor(ctx context.Context, doctor Actor) ([]models.TestRequest, error) {
	return s.repo.FindByDoctor(ctx, doctor.ID)
}

// FindByCreator lists the requests raised by the patient.
func (s *Service) FindByCreator(ctx context.Context, patient Actor) ([]models.TestRequest, error) {
	return s.repo.FindByCreator(ctx, patient.ID)
}

// Flow returns the status history of a request. Patients may only read
// the history of their own requests.
func (s *Service) Flow(ctx context.Context, id uint, actor Actor) ([]models.TestRequestFlow, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleUser && req.CreatedBy != actor.ID {
		return nil, ErrForbidden
	}
	return s.repo.ListFlow(ctx, id)
}
