package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jirapat-s/ticketline/internal/domain"
	"github.com/jirapat-s/ticketline/internal/dto"
	"github.com/jirapat-s/ticketline/internal/middleware"
	"github.com/jirapat-s/ticketline/internal/service"
	"github.com/jirapat-s/ticketline/pkg/response"
)

// EventHandler handles catalog HTTP requests
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// Create handles event creation
// POST /events
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	username, _ := middleware.GetUsername(c)

	event, err := h.eventService.CreateEvent(c.Request.Context(), &req, username)
	if err != nil {
		if domain.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
			return
		}
		internalError(c, "create event failed", err)
		return
	}

	c.JSON(http.StatusOK, dto.CreateEventResponse{ID: event.ID})
}

// List handles event listing
// GET /events?category=&limit=
func (h *EventHandler) List(c *gin.Context) {
	var filter dto.EventListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	events, err := h.eventService.ListEvents(c.Request.Context(), &filter)
	if err != nil {
		internalError(c, "list events failed", err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// Get handles fetching one event
// GET /events/:id
func (h *EventHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error("INVALID_EVENT_ID", "Event id must be a valid UUID"))
		return
	}

	event, err := h.eventService.GetEvent(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Event not found"))
			return
		}
		internalError(c, "get event failed", err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// Delete handles event deletion
// DELETE /events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error("INVALID_EVENT_ID", "Event id must be a valid UUID"))
		return
	}

	if err := h.eventService.DeleteEvent(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Event not found"))
			return
		}
		if errors.Is(err, domain.ErrEventHasBookings) {
			c.JSON(http.StatusConflict, response.Error("HAS_BOOKINGS", "Event has existing bookings and cannot be deleted"))
			return
		}
		internalError(c, "delete event failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// AddReview handles appending a review
// PATCH /events/:id/review
func (h *EventHandler) AddReview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error("INVALID_EVENT_ID", "Event id must be a valid UUID"))
		return
	}

	var req dto.AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.Error("INVALID_RATING", msg))
		return
	}

	username, _ := middleware.GetUsername(c)

	if err := h.eventService.AddReview(c.Request.Context(), id, username, &req); err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Event not found"))
			return
		}
		if errors.Is(err, domain.ErrInvalidRating) {
			c.JSON(http.StatusBadRequest, response.Error("INVALID_RATING", err.Error()))
			return
		}
		internalError(c, "add review failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "added"})
}

// Stats handles revenue aggregation
// GET /stats
func (h *EventHandler) Stats(c *gin.Context) {
	stats, err := h.eventService.RevenueByCategory(c.Request.Context())
	if err != nil {
		internalError(c, "revenue stats failed", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
