package handlers

import (
	"net/http"

	"github.com/sammiepius/homelink-backend/httpx"
	"github.com/sammiepius/homelink-backend/internal/services"
)

type ContactHandler struct {
	contacts *services.ContactService
}

func NewContactHandler(contacts *services.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in services.ContactInput
	if !decode(w, r, &in) {
		return
	}
	msg, err := h.contacts.Submit(r.Context(), in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Message sent",
		"data":    msg,
	})
}
