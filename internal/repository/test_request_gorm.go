package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"covid-testing-server/internal/models"
)

type testRequestRepoGorm struct {
	db *gorm.DB
}

// NewTestRequestRepository returns a GORM backed TestRequestRepository.
func NewTestRequestRepository(db *gorm.DB) TestRequestRepository {
	return &testRequestRepoGorm{db: db}
}

func (r *testRequestRepoGorm) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("LabResult").Preload("Consultation")
}

func (r *testRequestRepoGorm) Create(ctx context.Context, req *models.TestRequest, flow *models.TestRequestFlow) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(req).Error; err != nil {
			return fmt.Errorf("create test request: %w", err)
		}
		flow.TestRequestID = req.ID
		if err := tx.Create(flow).Error; err != nil {
			return fmt.Errorf("create flow entry: %w", err)
		}
		return nil
	})
}

func (r *testRequestRepoGorm) FindByID(ctx context.Context, id uint) (*models.TestRequest, error) {
	var req models.TestRequest
	if err := r.withRelations(ctx).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *testRequestRepoGorm) FindByStatus(ctx context.Context, status models.RequestStatus) ([]models.TestRequest, error) {
	return r.list(ctx, "status = ?", status)
}

func (r *testRequestRepoGorm) FindByTester(ctx context.Context, testerID string) ([]models.TestRequest, error) {
	return r.list(ctx, "tester_id = ?", testerID)
}

func (r *testRequestRepoGorm) FindByDoctor(ctx context.Context, doctorID string) ([]models.TestRequest, error) {
	return r.list(ctx, "doctor_id = ?", doctorID)
}

func (r *testRequestRepoGorm) FindByCreator(ctx context.Context, userID string) ([]models.TestRequest, error) {
	return r.list(ctx, "created_by = ?", userID)
}

func (r *testRequestRepoGorm) list(ctx context.Context, query string, args ...interface{}) ([]models.TestRequest, error) {
	var reqs []models.TestRequest
	if err := r.withRelations(ctx).Where(query, args...).Order("id").Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *testRequestRepoGorm) HasActiveRequest(ctx context.Context, email, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TestRequest{}).
		Where("(email = ? OR phone_number = ?) AND status <> ?", email, phone, models.StatusCompleted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *testRequestRepoGorm) Transition(ctx context.Context, req *models.TestRequest, from models.RequestStatus, flow *models.TestRequestFlow) error {
	if !from.CanTransitionTo(req.Status) {
		return fmt.Errorf("test request %d: %s cannot move to %s", req.ID, from, req.Status)
	}

	updatedAt := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.TestRequest{}).
			Where("id = ? AND status = ?", req.ID, from).
			Updates(map[string]interface{}{
				"status":     req.Status,
				"tester_id":  req.TesterID,
				"doctor_id":  req.DoctorID,
				"updated_at": updatedAt,
			})
		if res.Error != nil {
			return fmt.Errorf("update test request %d: %w", req.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}

		if req.LabResult != nil {
			req.LabResult.TestRequestID = req.ID
			if err := tx.Save(req.LabResult).Error; err != nil {
				return fmt.Errorf("save lab result: %w", err)
			}
		}
		if req.Consultation != nil {
			req.Consultation.TestRequestID = req.ID
			if err := tx.Save(req.Consultation).Error; err != nil {
				return fmt.Errorf("save consultation: %w", err)
			}
		}

		flow.TestRequestID = req.ID
		if err := tx.Create(flow).Error; err != nil {
			return fmt.Errorf("create flow entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	req.UpdatedAt = updatedAt
	return nil
}

func (r *testRequestRepoGorm) ListFlow(ctx context.Context, requestID uint) ([]models.TestRequestFlow, error) {
	var flows []models.TestRequestFlow
	err := r.db.WithContext(ctx).
		Where("test_request_id = ?", requestID).
		Order("id").
		Find(&flows).Error
	if err != nil {
		return nil, err
	}
	return flows, nil
}
