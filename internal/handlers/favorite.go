package handlers

import (
	"net/http"

	"github.com/sammiepius/homelink-backend/httpx"
	"github.com/sammiepius/homelink-backend/internal/models"
	"github.com/sammiepius/homelink-backend/internal/policy"
	"github.com/sammiepius/homelink-backend/internal/services"
)

type FavoriteHandler struct {
	favs *services.FavoriteService
}

func NewFavoriteHandler(favs *services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favs: favs}
}

// target resolves the caller and the {propertyId} path value.
func target(w http.ResponseWriter, r *http.Request) (*models.User, uint, bool) {
	user, ok := caller(w, r)
	if !ok {
		return nil, 0, false
	}
	id, err := policy.PathID(r, "propertyId")
	if err != nil {
		httpx.Error(w, err)
		return nil, 0, false
	}
	return user, id, true
}

func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, propertyID, ok := target(w, r)
	if !ok {
		return
	}
	fav, err := h.favs.Add(r.Context(), user.ID, propertyID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, struct {
		Message  string           `json:"message"`
		Favorite *models.Favorite `json:"favorite"`
	}{"Added to favorites", fav})
}

func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, propertyID, ok := target(w, r)
	if !ok {
		return
	}
	if err := h.favs.Remove(r.Context(), user.ID, propertyID); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MessageResponse{Message: "Removed from favorites"})
}

func (h *FavoriteHandler) Status(w http.ResponseWriter, r *http.Request) {
	user, propertyID, ok := target(w, r)
	if !ok {
		return
	}
	fav, err := h.favs.Status(r.Context(), user.ID, propertyID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"isFavorite": fav})
}

// List returns the favorited properties themselves, newest favorite first.
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	favs, err := h.favs.List(r.Context(), user.ID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	props := make([]models.Property, 0, len(favs))
	for _, f := range favs {
		if f.Property != nil {
			props = append(props, *f.Property)
		}
	}
	httpx.JSON(w, http.StatusOK, props)
}
