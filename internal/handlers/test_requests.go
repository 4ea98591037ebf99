package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"covid-testing-server/internal/service/testrequest"
	"covid-testing-server/internal/utils"
)

// TestRequestHandler serves patient registration and request history.
type TestRequestHandler struct {
	Service *testrequest.Service
	Logger  *zap.Logger
}

// NewTestRequestHandler creates a new TestRequestHandler.
func NewTestRequestHandler(svc *testrequest.Service, logger *zap.Logger) *TestRequestHandler {
	return &TestRequestHandler{Service: svc, Logger: logger}
}

// CreateTestRequest raises a new test request for the logged-in patient.
func (h *TestRequestHandler) CreateTestRequest(c *gin.Context) {
	patient, ok := actorFromContext(c)
	if !ok {
		return
	}
	var body testrequest.CreateTestRequest
	if !utils.BindJSON(c, &body) {
		return
	}

	req, err := h.Service.CreateTestRequest(c.Request.Context(), body, patient)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.Created(c, "Test request created", req)
}

// GetMyTestRequests lists the patient's own requests.
func (h *TestRequestHandler) GetMyTestRequests(c *gin.Context) {
	patient, ok := actorFromContext(c)
	if !ok {
		return
	}
	reqs, err := h.Service.FindByCreator(c.Request.Context(), patient)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.List(c, "Test requests fetched", reqs)
}

// GetFlow returns the status history of a request.
func (h *TestRequestHandler) GetFlow(c *gin.Context) {
	id, ok := parseRequestID(c)
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	flow, err := h.Service.Flow(c.Request.Context(), id, actor)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.List(c, "Test request flow fetched", flow)
}
