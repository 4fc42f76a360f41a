package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pulsecare/pulsecare-api/internal/application"
	"github.com/pulsecare/pulsecare-api/pkg/response"
)

type DoctorHandler struct {
	Svc    *application.DoctorService
	Logger *logrus.Logger
}

func NewDoctorHandler(svc *application.DoctorService, logger *logrus.Logger) *DoctorHandler {
	return &DoctorHandler{Svc: svc, Logger: logger}
}

// Search GET /api/doctors/search?q=...&size=...
func (h *DoctorHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Error("doctor search failed")
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "doctors", map[string]any{"count": len(hits)})
}
