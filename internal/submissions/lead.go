package submissions

import (
	"net/http"

	"github.com/wolfman30/landing-intake/internal/redact"
)

// LeadSubmit handles POST /api/lead-form.
func (h *Handler) LeadSubmit(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, KindLead, "Failed to submit lead form", h.leadSubmit)
}

func (h *Handler) leadSubmit(w http.ResponseWriter, r *http.Request) int {
	var sub LeadSubmission
	if status, ok := h.decode(w, r, &sub); !ok {
		return status
	}

	n := composeLead(sub)
	if err := h.steps.run(r.Context(), h.notifyAdmin(n)); err != nil {
		return writeError(w, http.StatusInternalServerError, "Failed to submit lead form", err.Error())
	}

	h.logger.Info("lead submission received",
		"submitter", redact.Fingerprint(sub.Email),
		"form_type", sub.FormType,
		"references", len(sub.References),
	)
	return writeJSON(w, http.StatusCreated, messageResponse{Success: true, Message: "Form submitted successfully"})
}

// LeadStatus handles GET /api/lead-form.
func (h *Handler) LeadStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Lead form API is active"})
}

// LeadPreflight handles OPTIONS /api/lead-form with a permissive CORS answer.
func (h *Handler) LeadPreflight(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.WriteHeader(http.StatusNoContent)
}
