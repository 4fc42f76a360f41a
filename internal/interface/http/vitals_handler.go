package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pulsecare/pulsecare-api/internal/application"
	"github.com/pulsecare/pulsecare-api/pkg/response"
	"github.com/pulsecare/pulsecare-api/pkg/validation"
)

type VitalsHandler struct {
	Svc    *application.VitalsService
	Logger *logrus.Logger
}

func NewVitalsHandler(svc *application.VitalsService, logger *logrus.Logger) *VitalsHandler {
	return &VitalsHandler{Svc: svc, Logger: logger}
}

type pulseResponse struct {
	ID          int64     `json:"id"`
	PatientName string    `json:"patient_name"`
	Rate        int       `json:"rate"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// List GET /api/vitals — newest readings first.
func (h *VitalsHandler) List(c *gin.Context) {
	pulses, err := h.Svc.Latest(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("vitals listing failed")
		response.Error[any](c, http.StatusInternalServerError, "vitals unavailable", nil)
		return
	}
	out := make([]pulseResponse, 0, len(pulses))
	for _, p := range pulses {
		out = append(out, pulseResponse{ID: p.ID, PatientName: p.PatientName, Rate: p.Rate, RecordedAt: p.RecordedAt})
	}
	response.Success(c, http.StatusOK, out, "vitals", map[string]any{"count": len(out)})
}

type recordPulseRequest struct {
	PatientName string    `json:"patient_name" binding:"required"`
	Rate        int       `json:"rate" binding:"required,gt=0"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Record POST /api/vitals
func (h *VitalsHandler) Record(c *gin.Context) {
	var req recordPulseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	p, err := h.Svc.Record(c.Request.Context(), req.PatientName, req.Rate, req.RecordedAt)
	if err != nil {
		h.Logger.WithError(err).Error("pulse record failed")
		response.Error[any](c, http.StatusInternalServerError, "could not record pulse", nil)
		return
	}
	response.Success(c, http.StatusCreated, pulseResponse{ID: p.ID, PatientName: p.PatientName, Rate: p.Rate, RecordedAt: p.RecordedAt}, "pulse recorded", nil)
}
