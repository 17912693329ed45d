package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/shadowbook/platform/internal/domain"
	"github.com/shadowbook/platform/internal/service"
)

// BrokerHandler handles wager evaluation and booking endpoints.
type BrokerHandler struct {
	svc *service.BrokerService
}

// NewBrokerHandler creates a new BrokerHandler.
func NewBrokerHandler(svc *service.BrokerService) *BrokerHandler {
	return &BrokerHandler{svc: svc}
}

// EvaluateInput is the POST /tickets/evaluate request body.
type EvaluateInput struct {
	Tickets []domain.CustomerTicket `json:"tickets"`
}

// CommitInput is the POST /tickets/commit request body: a ticket paired
// with the decision previously returned for it.
type CommitInput struct {
	Ticket   domain.CustomerTicket `json:"ticket"`
	Decision domain.RiskDecision   `json:"decision"`
}

// Evaluate handles POST /tickets/evaluate. Decisions come back in input
// order; nothing is booked.
func (h *BrokerHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var input EvaluateInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code": "VALIDATION_ERROR", "message": "invalid request body",
		})
		return
	}
	if len(input.Tickets) == 0 {
		RespondError(w, domain.ErrValidation("no tickets supplied"))
		return
	}
	for i := range input.Tickets {
		if input.Tickets[i].TicketID == "" {
			input.Tickets[i].TicketID = uuid.New().String()
		}
	}

	decisions, err := h.svc.Evaluate(r.Context(), input.Tickets)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"decisions": decisions,
	})
}

// Commit handles POST /tickets/commit.
func (h *BrokerHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var input CommitInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code": "VALIDATION_ERROR", "message": "invalid request body",
		})
		return
	}

	if err := h.svc.CommitDecision(r.Context(), input.Ticket, input.Decision); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"ticket_id": input.Ticket.TicketID,
		"action":    input.Decision.Action,
		"committed": input.Decision.Action.Accepted(),
	})
}

// Exposures handles GET /exposures.
func (h *BrokerHandler) Exposures(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"exposures": h.svc.Exposures(),
	})
}

// OrderBook handles GET /orderbook?limit=N.
func (h *BrokerHandler) OrderBook(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			RespondError(w, domain.ErrValidation("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	entries, err := h.svc.OrderBook(r.Context(), limit)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

// Wipe handles POST /admin/wipe. Destroys the ledger and the order
// book; operator tooling only.
func (h *BrokerHandler) Wipe(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Wipe(r.Context()); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "wiped"})
}
