package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"covid-testing-server/internal/models"
	"covid-testing-server/internal/service/testrequest"
	"covid-testing-server/internal/utils"
)

// LabRequestHandler serves the tester's side of the lifecycle.
type LabRequestHandler struct {
	Service *testrequest.Service
	Logger  *zap.Logger
}

// NewLabRequestHandler creates a new LabRequestHandler.
func NewLabRequestHandler(svc *testrequest.Service, logger *zap.Logger) *LabRequestHandler {
	return &LabRequestHandler{Service: svc, Logger: logger}
}

// GetForTests lists the requests waiting for a tester.
func (h *LabRequestHandler) GetForTests(c *gin.Context) {
	reqs, err := h.Service.FindBy(c.Request.Context(), models.StatusInitiated)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.List(c, "Test requests waiting for lab test", reqs)
}

// GetForTester lists the requests assigned to the logged-in tester.
func (h *LabRequestHandler) GetForTester(c *gin.Context) {
	tester, ok := actorFromContext(c)
	if !ok {
		return
	}
	reqs, err := h.Service.FindByTester(c.Request.Context(), tester)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.List(c, "Test requests assigned to tester", reqs)
}

// AssignForLabTest assigns the request to the logged-in tester.
func (h *LabRequestHandler) AssignForLabTest(c *gin.Context) {
	id, ok := parseRequestID(c)
	if !ok {
		return
	}
	tester, ok := actorFromContext(c)
	if !ok {
		return
	}

	req, err := h.Service.AssignForLabTest(c.Request.Context(), id, tester)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.Success(c, "Test request assigned for lab test", req)
}

// UpdateLabTest records the lab result for a request.
func (h *LabRequestHandler) UpdateLabTest(c *gin.Context) {
	id, ok := parseRequestID(c)
	if !ok {
		return
	}
	tester, ok := actorFromContext(c)
	if !ok {
		return
	}
	var body testrequest.CreateLabResult
	if !utils.BindJSON(c, &body) {
		return
	}

	req, err := h.Service.UpdateLabTest(c.Request.Context(), id, body, tester)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.Success(c, "Lab result recorded", req)
}
