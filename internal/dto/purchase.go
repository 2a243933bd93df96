package dto

// PurchaseRequest represents the request to buy one slot of a ticket type
type PurchaseRequest struct {
	TicketType string `json:"ticket_type" binding:"required,min=1,max=64"`
}

// Validate validates the PurchaseRequest
func (r *PurchaseRequest) Validate() (bool, string) {
	if r.TicketType == "" {
		return false, "Ticket type is required"
	}
	return true, ""
}

// PurchaseResponse represents a successful purchase
type PurchaseResponse struct {
	Status    string `json:"status"`
	BookingID string `json:"booking_id"`
}
