package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/MK023/TorinoParking/internal/repository"
	"github.com/MK023/TorinoParking/internal/service"

	"github.com/gin-gonic/gin"
)

type ParkingHandler struct {
	parkingService *service.ParkingService
}

func NewParkingHandler(ps *service.ParkingService) *ParkingHandler {
	return &ParkingHandler{parkingService: ps}
}

// GET /parkings
func (h *ParkingHandler) GetParkings(c *gin.Context) {
	// Conditional fetch: a matching fingerprint short-circuits before any
	// payload work.
	if inm := c.GetHeader("If-None-Match"); inm != "" {
		if etag := h.parkingService.CurrentETag(c.Request.Context()); etag != "" && strings.Trim(inm, `"`) == etag {
			c.Header("ETag", `"`+etag+`"`)
			c.Status(http.StatusNotModified)
			return
		}
	}

	var available *bool
	if raw := c.Query("available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'available' parameter"})
			return
		}
		available = &v
	}

	var minSpots *int
	if raw := c.Query("min_spots"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'min_spots' parameter"})
			return
		}
		minSpots = &v
	}

	data, etag, err := h.parkingService.GetParkings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Upstream parking feed unavailable"})
		return
	}

	result := h.parkingService.FilterParkings(data, available, minSpots)
	if etag != "" {
		c.Header("ETag", `"`+etag+`"`)
	}
	c.JSON(http.StatusOK, result)
}

// GET /parkings/:id
func (h *ParkingHandler) GetParkingByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parking ID"})
		return
	}

	parking, err := h.parkingService.GetParkingByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Parking not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Upstream parking feed unavailable"})
		return
	}
	c.JSON(http.StatusOK, parking)
}

// GET /parkings/:id/history
func (h *ParkingHandler) GetHistory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parking ID"})
		return
	}

	hours, err := strconv.Atoi(c.DefaultQuery("hours", "24"))
	if err != nil || hours < 1 || hours > 720 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'hours' parameter (1-720)"})
		return
	}

	history, err := h.parkingService.GetHistory(c.Request.Context(), id, hours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load parking history"})
		return
	}
	c.JSON(http.StatusOK, history)
}

// GET /parkings/nearby
func (h *ParkingHandler) GetNearby(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'lat' parameter"})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'lng' parameter"})
		return
	}
	radius, err := strconv.Atoi(c.DefaultQuery("radius", "1000"))
	if err != nil || radius < 100 || radius > 5000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'radius' parameter (100-5000)"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter (1-50)"})
		return
	}

	result, err := h.parkingService.GetNearby(c.Request.Context(), lat, lng, radius, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not run spatial query"})
		return
	}
	c.JSON(http.StatusOK, result)
}
