package handlers

import (
	"context"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/logan-wrld/austin-port-to-rail/models"
	"github.com/logan-wrld/austin-port-to-rail/services"
)

// VesselChannel is the redis pub/sub channel carrying tracker updates
// to live subscribers.
const VesselChannel = "portrail:vessels"

var (
	trackerUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portrail_tracker_updates_total",
		Help: "Total number of tracker updates persisted.",
	})
	trackerUpdateFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portrail_tracker_update_failures_total",
		Help: "Total number of tracker updates that failed to persist.",
	})
)

type TrackerHandler struct {
	store *services.TrackerService
	cache *services.CacheService
}

func NewTrackerHandler(store *services.TrackerService, cache *services.CacheService) *TrackerHandler {
	return &TrackerHandler{store: store, cache: cache}
}

func (h *TrackerHandler) GetTracker(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Load())
}

// UpdateTracker applies a replace or merge update. A failed write
// leaves the prior on-disk state untouched and reports the failure.
func (h *TrackerHandler) UpdateTracker(c *gin.Context) {
	var update models.TrackerUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data provided"})
		return
	}

	state, err := h.store.Update(update)
	if err != nil {
		trackerUpdateFailures.Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save data"})
		return
	}
	trackerUpdates.Inc()

	go h.cache.Publish(context.Background(), VesselChannel, update)

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"vessels_count": len(state.Vessels),
	})
}

func (h *TrackerHandler) GetVessels(c *gin.Context) {
	vessels := h.store.ListVessels(c.Query("status"))
	c.JSON(http.StatusOK, gin.H{"vessels": vessels, "count": len(vessels)})
}

func (h *TrackerHandler) GetDocked(c *gin.Context) {
	byTerminal := h.store.DockedVessels()

	var docked []models.Vessel
	for _, vessels := range byTerminal {
		docked = append(docked, vessels...)
	}
	sort.Slice(docked, func(i, j int) bool { return docked[i].MMSI < docked[j].MMSI })

	c.JSON(http.StatusOK, gin.H{
		"docked":      docked,
		"count":       len(docked),
		"by_terminal": byTerminal,
	})
}

func (h *TrackerHandler) GetHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter, must be a positive integer"})
		return
	}

	history := h.store.History(limit)
	c.JSON(http.StatusOK, gin.H{"history": history, "count": len(history)})
}

func (h *TrackerHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Stats())
}
