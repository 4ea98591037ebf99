package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"covid-testing-server/internal/models"
	"covid-testing-server/internal/service/testrequest"
	"covid-testing-server/internal/utils"
)

// ConsultationHandler serves the doctor's side of the lifecycle.
type ConsultationHandler struct {
	Service *testrequest.Service
	Logger  *zap.Logger
}

// NewConsultationHandler creates a new ConsultationHandler.
func NewConsultationHandler(svc *testrequest.Service, logger *zap.Logger) *ConsultationHandler {
	return &ConsultationHandler{Service: svc, Logger: logger}
}

// GetForConsultations lists the requests whose lab test is done.
func (h *ConsultationHandler) GetForConsultations(c *gin.Context) {
	reqs, err := h.Service.FindBy(c.Request.Context(), models.StatusLabTestCompleted)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.List(c, "Test requests waiting for consultation", reqs)
}

// GetForDoctor lists the requests assigned to the logged-in doctor.
func (h *ConsultationHandler) GetForDoctor(c *gin.Context) {
	doctor, ok := actorFromContext(c)
	if !ok {
		return
	}
	reqs, err := h.Service.FindByDoctor(c.Request.Context(), doctor)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.List(c, "Test requests assigned to doctor", reqs)
}

// AssignForConsultation assigns the request to the logged-in doctor.
func (h *ConsultationHandler) AssignForConsultation(c *gin.Context) {
	id, ok := parseRequestID(c)
	if !ok {
		return
	}
	doctor, ok := actorFromContext(c)
	if !ok {
		return
	}

	req, err := h.Service.AssignForConsultation(c.Request.Context(), id, doctor)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.Success(c, "Test request assigned for consultation", req)
}

// UpdateConsultation records the doctor's suggestion and completes the request.
func (h *ConsultationHandler) UpdateConsultation(c *gin.Context) {
	id, ok := parseRequestID(c)
	if !ok {
		return
	}
	doctor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var body testrequest.CreateConsultationRequest
	if !utils.BindJSON(c, &body) {
		return
	}

	req, err := h.Service.UpdateConsultation(c.Request.Context(), id, body, doctor)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.Success(c, "Consultation recorded", req)
}
