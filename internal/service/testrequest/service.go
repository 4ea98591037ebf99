package testrequest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"covid-testing-server/internal/events"
	"covid-testing-server/internal/metrics"
	"covid-testing-server/internal/models"
	"covid-testing-server/internal/repository"
)

// Service owns the test request lifecycle. It is the only code that
// changes a request's status.
type Service struct {
	repo      repository.TestRequestRepository
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a Service. A nil publisher disables status events.
func NewService(repo repository.TestRequestRepository, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, publisher: publisher, logger: logger, now: time.Now}
}

// CreateTestRequest registers a new request in status INITIATED on behalf
// of a patient.
func (s *Service) CreateTestRequest(ctx context.Context, in CreateTestRequest, patient Actor) (*models.TestRequest, error) {
	if patient.Role != models.RoleUser {
		return nil, s.reject("create", "forbidden", ErrForbidden)
	}
	if err := validatePayload(in); err != nil {
		return nil, s.reject("create", "validation", err)
	}

	active, err := s.repo.HasActiveRequest(ctx, in.Email, in.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("check active requests: %w", err)
	}
	if active {
		return nil, s.reject("create", "duplicate", ErrDuplicateRequest)
	}

	req := &models.TestRequest{
		Name:        in.Name,
		Age:         in.Age,
		Gender:      in.Gender,
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
		PinCode:     in.PinCode,
		Address:     in.Address,
		CreatedBy:   patient.ID,
		Status:      models.StatusInitiated,
	}
	flow := &models.TestRequestFlow{
		ToStatus:  models.StatusInitiated,
		ChangedBy: patient.ID,
	}
	if err := s.repo.Create(ctx, req, flow); err != nil {
		return nil, err
	}

	s.announce(ctx, req.ID, "", models.StatusInitiated, patient.ID)
	return req, nil
}

// AssignForLabTest moves an INITIATED request to LAB_TEST_IN_PROGRESS and
// assigns it to the tester.
func (s *Service) AssignForLabTest(ctx context.Context, id uint, tester Actor) (*models.TestRequest, error) {
	return s.advance(ctx, "assign_lab_test", id, tester, models.RoleTester,
		models.StatusInitiated,
		func(req *models.TestRequest) error {
			req.TesterID = &tester.ID
			return nil
		})
}

// UpdateLabTest records the lab result and moves the request to
// LAB_TEST_COMPLETED.
func (s *Service) UpdateLabTest(ctx context.Context, id uint, in CreateLabResult, tester Actor) (*models.TestRequest, error) {
	return s.advance(ctx, "update_lab_test", id, tester, models.RoleTester,
		models.StatusLabTestInProgress,
		func(req *models.TestRequest) error {
			if err := validatePayload(in); err != nil {
				return err
			}
			result := req.LabResult
			if result == nil {
				result = &models.LabResult{}
			}
			result.TesterID = tester.ID
			result.BloodPressure = in.BloodPressure
			result.HeartBeat = in.HeartBeat
			result.Temperature = in.Temperature
			result.OxygenLevel = in.OxygenLevel
			result.Comments = in.Comments
			result.Result = in.Result
			req.LabResult = result
			return nil
		})
}

// AssignForConsultation moves a LAB_TEST_COMPLETED request to
// DIAGNOSIS_IN_PROCESS and assigns it to the doctor.
func (s *Service) AssignForConsultation(ctx context.Context, id uint, doctor Actor) (*models.TestRequest, error) {
	return s.advance(ctx, "assign_consultation", id, doctor, models.RoleDoctor,
		models.StatusLabTestCompleted,
		func(req *models.TestRequest) error {
			req.DoctorID = &doctor.ID
			return nil
		})
}

// UpdateConsultation records the doctor's suggestion and completes the
// request.
func (s *Service) UpdateConsultation(ctx context.Context, id uint, in CreateConsultationRequest, doctor Actor) (*models.TestRequest, error) {
	return s.advance(ctx, "update_consultation", id, doctor, models.RoleDoctor,
		models.StatusDiagnosisInProcess,
		func(req *models.TestRequest) error {
			if err := validatePayload(in); err != nil {
				return err
			}
			consultation := req.Consultation
			if consultation == nil {
				consultation = &models.Consultation{}
			}
			consultation.DoctorID = doctor.ID
			consultation.Suggestion = in.Suggestion
			consultation.Comments = in.Comments
			req.Consultation = consultation
			return nil
		})
}

// advance runs one lifecycle step from status from to the status that
// follows it: lookup, status check, mutate, then a conditional write of the
// next status together with a flow entry.
func (s *Service) advance(
	ctx context.Context,
	action string,
	id uint,
	actor Actor,
	role models.Role,
	from models.RequestStatus,
	mutate func(*models.TestRequest) error,
) (*models.TestRequest, error) {
	to, ok := from.Next()
	if !ok {
		return nil, fmt.Errorf("%s: no status follows %s", action, from)
	}
	if actor.Role != role {
		return nil, s.reject(action, "forbidden", ErrForbidden)
	}

	req, err := s.load(ctx, id)
	if errors.Is(err, ErrInvalidID) {
		return nil, s.reject(action, "invalid_id", err)
	}
	if err != nil {
		return nil, fmt.Errorf("load test request %d: %w", id, err)
	}

	if req.Status != from {
		return nil, s.reject(action, "invalid_state", &StateError{RequestID: id, Current: req.Status, Expected: from})
	}

	if err := mutate(req); err != nil {
		return nil, s.reject(action, "validation", err)
	}
	req.Status = to

	flow := &models.TestRequestFlow{
		FromStatus: from,
		ToStatus:   to,
		ChangedBy:  actor.ID,
	}
	if err := s.repo.Transition(ctx, req, from, flow); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, s.reject(action, "invalid_state", fmt.Errorf("%w: %v", ErrInvalidState, err))
		}
		s.logger.Error("failed to persist transition",
			zap.String("action", action),
			zap.Uint("request_id", id),
			zap.Error(err))
		return nil, err
	}

	s.announce(ctx, id, from, to, actor.ID)
	return req, nil
}

func (s *Service) load(ctx context.Context, id uint) (*models.TestRequest, error) {
	if id == 0 {
		return nil, ErrInvalidID
	}
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidID
		}
		return nil, err
	}
	return req, nil
}

// announce records a completed transition in logs, metrics and the event stream.
func (s *Service) announce(ctx context.Context, id uint, from, to models.RequestStatus, actorID string) {
	metrics.Transitions.WithLabelValues(string(from), string(to)).Inc()
	s.logger.Info("test request status changed",
		zap.Uint("request_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("changed_by", actorID))

	change := events.StatusChange{
		RequestID: id,
		From:      from,
		To:        to,
		ChangedBy: actorID,
		At:        s.now(),
	}
	if err := s.publisher.Publish(ctx, change); err != nil {
		s.logger.Warn("failed to publish status change",
			zap.Uint("request_id", id),
			zap.Error(err))
	}
}

func (s *Service) reject(action, reason string, err error) error {
	metrics.TransitionRejections.WithLabelValues(action, reason).Inc()
	return err
}
