package handlers

import (
	"net/http"

	"github.com/diagnosis/wedding-rsvp/internal/domain"
	"github.com/diagnosis/wedding-rsvp/internal/http/response"
)

// Root handles GET /
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.MessageResponse{Message: h.opts.Message})
}

// CreateRSVP handles POST /rsvp
func (h *Handlers) CreateRSVP(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRSVPRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		response.Unprocessable(w, "Invalid RSVP submission", err.Error())
		return
	}

	rsvp, err := h.rsvpService.Submit(r.Context(), &req)
	if err != nil {
		response.InternalError(w, "Failed to save RSVP")
		return
	}

	writeJSON(w, http.StatusOK, rsvp)
}
