package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jirapat-s/ticketline/internal/domain"
	"github.com/jirapat-s/ticketline/internal/dto"
	"github.com/jirapat-s/ticketline/internal/middleware"
	"github.com/jirapat-s/ticketline/internal/service"
	pkgmiddleware "github.com/jirapat-s/ticketline/pkg/middleware"
	"github.com/jirapat-s/ticketline/pkg/response"
)

// PurchaseHandler handles ticket purchase HTTP requests
type PurchaseHandler struct {
	purchaseService service.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchaseService service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// Purchase handles buying one slot of a ticket type
// POST /purchase/:id
func (h *PurchaseHandler) Purchase(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error("INVALID_EVENT_ID", "Event id must be a valid UUID"))
		return
	}

	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	username, _ := middleware.GetUsername(c)
	idempotencyKey, _ := pkgmiddleware.GetIdempotencyKey(c)

	booking, err := h.purchaseService.Purchase(c.Request.Context(), eventID, username, req.TicketType, idempotencyKey)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEventNotFound):
			c.JSON(http.StatusNotFound, response.NotFound("Event not found"))
		case errors.Is(err, domain.ErrTicketTypeNotFound):
			c.JSON(http.StatusNotFound, response.NotFound("Ticket type not found"))
		case errors.Is(err, domain.ErrSoldOut):
			c.JSON(http.StatusConflict, response.Error("SOLD_OUT", "No slots remaining for this ticket type"))
		case errors.Is(err, domain.ErrPurchaseFailed):
			c.JSON(http.StatusInternalServerError, response.Error("PURCHASE_FAILED", "Purchase could not be recorded, contact support"))
		case errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusGatewayTimeout, response.Error("TIMEOUT", "Purchase timed out, retry with the same idempotency key"))
		default:
			internalError(c, "purchase failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, dto.PurchaseResponse{
		Status:    "purchased",
		BookingID: booking.ID.String(),
	})
}
