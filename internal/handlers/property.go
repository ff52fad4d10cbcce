package handlers

import (
	"net/http"

	"github.com/sammiepius/homelink-backend/httpx"
	"github.com/sammiepius/homelink-backend/internal/models"
	"github.com/sammiepius/homelink-backend/internal/policy"
	"github.com/sammiepius/homelink-backend/internal/services"
)

type PropertyHandler struct {
	props *services.PropertyService
}

func NewPropertyHandler(props *services.PropertyService) *PropertyHandler {
	return &PropertyHandler{props: props}
}

type propertyResponse struct {
	Message  string           `json:"message"`
	Property *models.Property `json:"property"`
}

// listing returns the property stored by policy.RequireOwnership.
func listing(w http.ResponseWriter, r *http.Request) (*models.Property, bool) {
	p, ok := policy.ResourceFrom[*models.Property](r.Context())
	if !ok {
		httpx.Error(w, services.ErrPropertyNotFound)
		return nil, false
	}
	return p, true
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var in services.PropertyInput
	if !decode(w, r, &in) {
		return
	}
	p, err := h.props.Create(r.Context(), user, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, propertyResponse{Message: "Property added successfully", Property: p})
}

// List serves the public marketplace.
func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	f := services.MarketplaceFilter{
		Location: q.str("location"),
		Type:     q.str("type"),
		MinPrice: q.floatParam("minPrice"),
		MaxPrice: q.floatParam("maxPrice"),
		Bedrooms: q.intParam("bedrooms"),
		Page:     q.page(),
	}
	if err := q.err(); err != nil {
		httpx.Error(w, err)
		return
	}
	res, err := h.props.ListMarketplace(r.Context(), f)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *PropertyHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	props, err := h.props.ListByLandlord(r.Context(), user.ID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, props)
}

func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := policy.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	p, err := h.props.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	p, ok := listing(w, r)
	if !ok {
		return
	}
	var in services.PropertyInput
	if !decode(w, r, &in) {
		return
	}
	updated, err := h.props.Update(r.Context(), user, p, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, propertyResponse{Message: "Property updated successfully", Property: updated})
}

func (h *PropertyHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	p, ok := listing(w, r)
	if !ok {
		return
	}
	var in struct {
		ImageURL string `json:"imageUrl"`
	}
	if !decode(w, r, &in) {
		return
	}
	updated, err := h.props.RemoveImage(r.Context(), user, p, in.ImageURL)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, propertyResponse{Message: "Image removed successfully", Property: updated})
}

func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	p, ok := listing(w, r)
	if !ok {
		return
	}
	if err := h.props.Delete(r.Context(), user, p); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MessageResponse{Message: "Property deleted successfully"})
}

// ToggleActive flips the listing's visibility, or sets it when the body
// carries isActive.
func (h *PropertyHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	p, ok := listing(w, r)
	if !ok {
		return
	}
	var in struct {
		IsActive *bool `json:"isActive"`
	}
	if !decode(w, r, &in) {
		return
	}

	var (
		updated *models.Property
		err     error
	)
	if in.IsActive != nil {
		updated, err = h.props.SetActive(r.Context(), user, p, *in.IsActive)
	} else {
		updated, err = h.props.ToggleActive(r.Context(), user, p)
	}
	if err != nil {
		httpx.Error(w, err)
		return
	}
	msg := "Property deactivated"
	if updated.IsActive {
		msg = "Property activated"
	}
	httpx.JSON(w, http.StatusOK, propertyResponse{Message: msg, Property: updated})
}
