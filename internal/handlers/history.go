package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"greenhouse/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid  = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid    = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errLimitInvalid = "invalid 'limit'; use a positive integer"
	errPumpInvalid  = "invalid 'pump_id'"
	errKindMissing  = "missing 'kind'"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// parseHistoryFilter reads from, to and limit. It writes a 400 and returns
// false when any of them is malformed.
func parseHistoryFilter(c *gin.Context) (service.HistoryFilter, bool) {
	var (
		f   service.HistoryFilter
		err error
	)
	if qs := c.Query("from"); qs != "" {
		f.From, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return f, false
		}
	}
	// A date-only 'to' covers the whole day.
	if qs := c.Query("to"); qs != "" {
		f.To, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return f, false
		}
		if isDateOnly(qs) {
			f.To = f.To.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return f, false
	}
	if qs := c.Query("limit"); qs != "" {
		n, err := strconv.Atoi(qs)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errLimitInvalid})
			return f, false
		}
		f.Limit = n
	}
	return f, true
}

// @Summary      List readings
// @Description  Stored sensor readings of one kind, newest first. A date-only 'to' is treated as end of day.
// @Tags         history
// @Produce      json
// @Param        kind   query   string  true   "Reading kind"  Enums(soil_moisture,temperature,humidity,light,soil_temperature,battery)
// @Param        from   query   string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2026-06-01)
// @Param        to     query   string  false  "End of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2026-06-30)
// @Param        limit  query   int     false  "Maximum rows"  example(100)
// @Success      200    {object}  map[string]interface{}  "count, readings"
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/readings [get]
// @Security     BearerAuth
func (h *Handler) getReadings(c *gin.Context) {
	kind := c.Query("kind")
	if strings.TrimSpace(kind) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errKindMissing})
		return
	}
	f, ok := parseHistoryFilter(c)
	if !ok {
		return
	}
	readings, err := h.services.History.Readings(c.Request.Context(), kind, f)
	if err != nil {
		if errors.Is(err, service.ErrUnknownKind) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load readings", "readings_list_failed", err, "kind", kind)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(readings),
		"readings": readings,
	})
}

// @Summary      List waterings
// @Tags         history
// @Produce      json
// @Param        pump_id  query   int     false  "Only this pump"
// @Param        from     query   string  false  "Start of range"
// @Param        to       query   string  false  "End of range"
// @Param        limit    query   int     false  "Maximum rows"
// @Success      200      {object}  map[string]interface{}  "count, waterings"
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /api/v1/waterings [get]
// @Security     BearerAuth
func (h *Handler) getWaterings(c *gin.Context) {
	var pumpID *int
	if qs := c.Query("pump_id"); qs != "" {
		id, err := strconv.Atoi(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errPumpInvalid})
			return
		}
		pumpID = &id
	}
	f, ok := parseHistoryFilter(c)
	if !ok {
		return
	}
	events, err := h.services.History.Waterings(c.Request.Context(), pumpID, f)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load waterings", "waterings_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     len(events),
		"waterings": events,
	})
}

// @Summary      List actuator states
// @Tags         history
// @Produce      json
// @Param        from   query   string  false  "Start of range"
// @Param        to     query   string  false  "End of range"
// @Param        limit  query   int     false  "Maximum rows"
// @Success      200    {object}  map[string]interface{}  "count, actuators"
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/actuators [get]
// @Security     BearerAuth
func (h *Handler) getActuators(c *gin.Context) {
	f, ok := parseHistoryFilter(c)
	if !ok {
		return
	}
	states, err := h.services.History.Actuators(c.Request.Context(), f)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load actuator states", "actuators_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     len(states),
		"actuators": states,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2026-06-01T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
