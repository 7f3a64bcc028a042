package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"greenhouse/internal/pump"
	"greenhouse/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK      = "ok"
	statusWatered = "watered"

	errGetState        = "failed to load state"
	errWaterPump       = "failed to run pump"
	errInvalidBodyPref = "invalid body: "
	errInvalidPumpID   = "invalid pump id"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// WaterRequest is the manual watering payload. A zero or missing amount
// uses the pump's configured amount.
type WaterRequest struct {
	AmountML float64 `json:"amount_ml" example:"150"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get greenhouse state
// @Description  Latest reading per kind, last watering per pump, actuator state and pump status
// @Tags         greenhouse
// @Produce      json
// @Success      200  {object}  models.GreenhouseState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Water now
// @Description  Runs the pump regardless of soil moisture and sleep windows. Blocks until the pump is off.
// @Tags         pumps
// @Accept       json
// @Produce      json
// @Param        id    path   int           true   "Pump ID"
// @Param        body  body   WaterRequest  false  "Amount in mL"
// @Success      200   {object}  map[string]interface{}  "status, event"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/pumps/{id}/water [post]
// @Security     BearerAuth
func (h *Handler) waterPump(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidPumpID})
		return
	}
	var req WaterRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
			return
		}
	}

	ev, err := h.services.Watering.WaterNow(c.Request.Context(), id, req.AmountML)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": statusWatered, "event": ev})
	case errors.Is(err, service.ErrUnknownPump):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, pump.ErrInvalidAmount), errors.Is(err, service.ErrAmountTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPumpBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errWaterPump, "water_pump_failed", err, "pump_id", id)
	}
}
