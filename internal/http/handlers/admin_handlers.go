package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/diagnosis/wedding-rsvp/internal/domain"
	"github.com/diagnosis/wedding-rsvp/internal/http/response"
	"github.com/diagnosis/wedding-rsvp/internal/service"
)

const exportFilename = "wedding_rsvps.csv"

// AdminLogin exchanges the shared admin password for a session token.
func (h *Handlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminLoginRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		response.Unprocessable(w, "Invalid login request", err.Error())
		return
	}

	token, err := h.authService.Login(r.Context(), *req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		response.Unauthorized(w, "Invalid password")
		return
	}
	if err != nil {
		response.InternalError(w, "Failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, domain.TokenResponse{Token: token})
}

func (h *Handlers) ListRSVPs(w http.ResponseWriter, r *http.Request) {
	rsvps, err := h.rsvpService.ListAll(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to retrieve RSVPs")
		return
	}
	writeJSON(w, http.StatusOK, rsvps)
}

func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.rsvpService.ComputeStats(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to compute statistics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	body, err := h.rsvpService.ExportCSV(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to export RSVPs")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+exportFilename)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
