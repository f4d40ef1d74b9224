package submissions

import (
	"net/http"

	"github.com/wolfman30/landing-intake/internal/redact"
)

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Contact handles POST /api/contact.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, KindContact, "Failed to submit contact form", h.contact)
}

func (h *Handler) contact(w http.ResponseWriter, r *http.Request) int {
	var sub ContactSubmission
	if status, ok := h.decode(w, r, &sub); !ok {
		return status
	}

	n := composeContact(sub)
	if err := h.steps.run(r.Context(), h.notifyAdmin(n)); err != nil {
		return writeError(w, http.StatusInternalServerError, "Failed to submit contact form", err.Error())
	}

	h.logger.Info("contact submission received", "submitter", redact.Fingerprint(sub.Email))
	return writeJSON(w, http.StatusCreated, messageResponse{Success: true, Message: "Message sent successfully"})
}
