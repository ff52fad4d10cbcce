package handlers

import (
	"net/http"

	"github.com/sammiepius/homelink-backend/httpx"
	"github.com/sammiepius/homelink-backend/internal/models"
	"github.com/sammiepius/homelink-backend/internal/policy"
	"github.com/sammiepius/homelink-backend/internal/services"
)

// AdminHandler serves the admin console: stats, moderation, audit trail
// and inbox.
type AdminHandler struct {
	admin    *services.AdminService
	props    *services.PropertyService
	audit    *services.AuditService
	contacts *services.ContactService
}

func NewAdminHandler(admin *services.AdminService, props *services.PropertyService, audit *services.AuditService, contacts *services.ContactService) *AdminHandler {
	return &AdminHandler{admin: admin, props: props, audit: audit, contacts: contacts}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	d, err := h.admin.Dashboard(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	o, err := h.admin.Overview(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *AdminHandler) Charts(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	months := q.intParam("months")
	if err := q.err(); err != nil {
		httpx.Error(w, err)
		return
	}
	n := 0
	if months != nil {
		n = *months
	}
	buckets, err := h.admin.Charts(r.Context(), n)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, buckets)
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	f := services.UserFilter{Page: q.page()}
	if s := q.str("role"); s != "" {
		role, ok := models.ParseRole(s)
		if !ok {
			q.v["role"] = "invalid_value"
		}
		f.Role = role
	}
	if err := q.err(); err != nil {
		httpx.Error(w, err)
		return
	}
	res, err := h.admin.ListUsers(r.Context(), f)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *AdminHandler) Properties(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	f := services.AdminPropertyFilter{
		Status: models.ModerationState(q.oneOf("status",
			string(models.StatePending), string(models.StateApproved), string(models.StateRejected))),
		Page:   q.page(),
	}
	if err := q.err(); err != nil {
		httpx.Error(w, err)
		return
	}
	res, err := h.props.ListAll(r.Context(), f)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// moderation resolves the admin and the {id} path value.
func moderation(w http.ResponseWriter, r *http.Request) (*models.User, uint, bool) {
	admin, ok := caller(w, r)
	if !ok {
		return nil, 0, false
	}
	id, err := policy.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return nil, 0, false
	}
	return admin, id, true
}

func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	admin, id, ok := moderation(w, r)
	if !ok {
		return
	}
	p, err := h.props.Approve(r.Context(), admin, id, httpx.ClientIP(r))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, propertyResponse{Message: "Property approved", Property: p})
}

func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	admin, id, ok := moderation(w, r)
	if !ok {
		return
	}
	var in struct {
		Reason string `json:"reason"`
	}
	if !decode(w, r, &in) {
		return
	}
	p, err := h.props.Reject(r.Context(), admin, id, in.Reason, httpx.ClientIP(r))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, propertyResponse{Message: "Property rejected", Property: p})
}

func (h *AdminHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	admin, id, ok := moderation(w, r)
	if !ok {
		return
	}
	if err := h.props.AdminDelete(r.Context(), admin, id, httpx.ClientIP(r)); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MessageResponse{Message: "Property deleted"})
}

func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	f := services.AuditFilter{
		Action: q.str("action"),
		Search: q.str("search"),
		Page:   q.page(),
	}
	if err := q.err(); err != nil {
		httpx.Error(w, err)
		return
	}
	res, err := h.audit.List(r.Context(), f)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *AdminHandler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	limit := q.intParam("limit")
	if err := q.err(); err != nil {
		httpx.Error(w, err)
		return
	}
	n := 0
	if limit != nil {
		n = *limit
	}
	rows, err := h.audit.Recent(r.Context(), n)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *AdminHandler) Messages(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	page := q.page()
	if err := q.err(); err != nil {
		httpx.Error(w, err)
		return
	}
	res, err := h.contacts.List(r.Context(), page)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}
