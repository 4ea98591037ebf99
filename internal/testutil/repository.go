// Package testutil provides in-memory fakes shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"covid-testing-server/internal/events"
	"covid-testing-server/internal/models"
	"covid-testing-server/internal/repository"
)

// TestRequestRepo is an in-memory repository.TestRequestRepository.
// Reads return copies so callers can mutate them freely.
type TestRequestRepo struct {
	mu     sync.Mutex
	nextID uint
	reqs   map[uint]*models.TestRequest
	flows  []models.TestRequestFlow

	// Err, when set, is returned by every method.
	Err error
}

var _ repository.TestRequestRepository = (*TestRequestRepo)(nil)

// NewTestRequestRepo returns an empty repository.
func NewTestRequestRepo() *TestRequestRepo {
	return &TestRequestRepo{nextID: 1, reqs: make(map[uint]*models.TestRequest)}
}

// Seed stores req as-is, keeping its ID when set, and returns the stored ID.
func (m *TestRequestRepo) Seed(req models.TestRequest) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.ID == 0 {
		req.ID = m.nextID
	}
	if req.ID >= m.nextID {
		m.nextID = req.ID + 1
	}
	m.reqs[req.ID] = clone(&req)
	return req.ID
}

// Get returns a copy of the stored request, or nil.
func (m *TestRequestRepo) Get(id uint) *models.TestRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req, ok := m.reqs[id]; ok {
		return clone(req)
	}
	return nil
}

func (m *TestRequestRepo) Create(_ context.Context, req *models.TestRequest, flow *models.TestRequestFlow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	req.ID = m.nextID
	m.nextID++
	now := time.Now()
	req.CreatedAt, req.UpdatedAt = now, now
	m.reqs[req.ID] = clone(req)
	m.appendFlow(req.ID, flow)
	return nil
}

func (m *TestRequestRepo) FindByID(_ context.Context, id uint) (*models.TestRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	req, ok := m.reqs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(req), nil
}

func (m *TestRequestRepo) FindByStatus(_ context.Context, status models.RequestStatus) ([]models.TestRequest, error) {
	return m.filter(func(r *models.TestRequest) bool { return r.Status == status })
}

func (m *TestRequestRepo) FindByTester(_ context.Context, testerID string) ([]models.TestRequest, error) {
	return m.filter(func(r *models.TestRequest) bool { return r.TesterID != nil && *r.TesterID == testerID })
}

func (m *TestRequestRepo) FindByDoctor(_ context.Context, doctorID string) ([]models.TestRequest, error) {
	return m.filter(func(r *models.TestRequest) bool { return r.DoctorID != nil && *r.DoctorID == doctorID })
}

func (m *TestRequestRepo) FindByCreator(_ context.Context, userID string) ([]models.TestRequest, error) {
	return m.filter(func(r *models.TestRequest) bool { return r.CreatedBy == userID })
}

func (m *TestRequestRepo) HasActiveRequest(_ context.Context, email, phone string) (bool, error) {
	reqs, err := m.filter(func(r *models.TestRequest) bool {
		return (r.Email == email || r.PhoneNumber == phone) && r.Status != models.StatusCompleted
	})
	return len(reqs) > 0, err
}

func (m *TestRequestRepo) Transition(_ context.Context, req *models.TestRequest, from models.RequestStatus, flow *models.TestRequestFlow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if !from.CanTransitionTo(req.Status) {
		return fmt.Errorf("test request %d: %s cannot move to %s", req.ID, from, req.Status)
	}
	stored, ok := m.reqs[req.ID]
	if !ok || stored.Status != from {
		return repository.ErrStaleStatus
	}
	req.UpdatedAt = time.Now()
	if req.LabResult != nil {
		req.LabResult.TestRequestID = req.ID
		if req.LabResult.ID == 0 {
			req.LabResult.ID = req.ID
		}
	}
	if req.Consultation != nil {
		req.Consultation.TestRequestID = req.ID
		if req.Consultation.ID == 0 {
			req.Consultation.ID = req.ID
		}
	}
	m.reqs[req.ID] = clone(req)
	m.appendFlow(req.ID, flow)
	return nil
}

func (m *TestRequestRepo) ListFlow(_ context.Context, requestID uint) ([]models.TestRequestFlow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.TestRequestFlow
	for _, f := range m.flows {
		if f.TestRequestID == requestID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *TestRequestRepo) appendFlow(id uint, flow *models.TestRequestFlow) {
	flow.ID = uint(len(m.flows) + 1)
	flow.TestRequestID = id
	flow.CreatedAt = time.Now()
	m.flows = append(m.flows, *flow)
}

func (m *TestRequestRepo) filter(keep func(*models.TestRequest) bool) ([]models.TestRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.TestRequest{}
	for _, r := range m.reqs {
		if keep(r) {
			out = append(out, *clone(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func clone(req *models.TestRequest) *models.TestRequest {
	c := *req
	if req.TesterID != nil {
		v := *req.TesterID
		c.TesterID = &v
	}
	if req.DoctorID != nil {
		v := *req.DoctorID
		c.DoctorID = &v
	}
	if req.LabResult != nil {
		v := *req.LabResult
		c.LabResult = &v
	}
	if req.Consultation != nil {
		v := *req.Consultation
		c.Consultation = &v
	}
	return &c
}

// RecordingPublisher keeps every published status change.
type RecordingPublisher struct {
	mu      sync.Mutex
	changes []events.StatusChange
	// Err, when set, is returned by Publish after recording.
	Err error
}

func (p *RecordingPublisher) Publish(_ context.Context, change events.StatusChange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, change)
	return p.Err
}

// Changes returns a copy of the recorded changes.
func (p *RecordingPublisher) Changes() []events.StatusChange {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.StatusChange(nil), p.changes...)
}
