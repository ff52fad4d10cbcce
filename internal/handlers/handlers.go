// Package handlers exposes the JSON HTTP API.
package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sammiepius/homelink-backend/httpx"
	"github.com/sammiepius/homelink-backend/internal/models"
	"github.com/sammiepius/homelink-backend/internal/policy"
	"github.com/sammiepius/homelink-backend/internal/services"
	"github.com/sammiepius/homelink-backend/validation"
)

// MessageResponse is the body of endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// decode reads a JSON body into dst and writes a 400 when it is malformed.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return false
	}
	return true
}

// caller returns the user loaded by AuthGate.RequireUser.
func caller(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	u, ok := policy.UserFromContext(r.Context())
	if !ok {
		httpx.Error(w, services.ErrUnauthenticated)
		return nil, false
	}
	return u, true
}

// query parses optional numeric query parameters, collecting violations.
type query struct {
	values url.Values
	v      validation.Violations
}

func newQuery(r *http.Request) *query {
	return &query{values: r.URL.Query(), v: make(validation.Violations)}
}

func (q *query) str(name string) string {
	return strings.TrimSpace(q.values.Get(name))
}

// oneOf returns the lowercased parameter, recording a violation when it is
// set to anything outside allowed.
func (q *query) oneOf(name string, allowed ...string) string {
	s := strings.ToLower(q.str(name))
	if s != "" {
		validation.OneOf(name, s, allowed, q.v)
	}
	return s
}

func (q *query) intParam(name string) *int {
	s := q.str(name)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		q.v[name] = "invalid_number"
		return nil
	}
	return &n
}

func (q *query) floatParam(name string) *float64 {
	s := q.str(name)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		q.v[name] = "invalid_number"
		return nil
	}
	return &f
}

func (q *query) page() services.Page {
	var p services.Page
	if n := q.intParam("page"); n != nil {
		p.Page = *n
	}
	if n := q.intParam("limit"); n != nil {
		p.Limit = *n
	}
	return p.Normalize()
}

// err returns the collected violations, or nil.
func (q *query) err() error {
	if q.v.Empty() {
		return nil
	}
	return services.Invalid(q.v)
}

// spool copies an uploaded part to a temp file and returns its path. The
// caller removes the file.
func spool(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "homelink-upload-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}
