package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// StatusCoder is implemented by errors that know their HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// Messager is implemented by errors whose client-facing message differs
// from Error().
type Messager interface {
	PublicMessage() string
}

// Detailer is implemented by errors that carry structured details, such as
// field violations.
type Detailer interface {
	Details() any
}

const maxBodyBytes = 1 << 20

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"message":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Message: msg, Details: details})
}

// Error writes err as a JSON error response. Errors that do not implement
// StatusCoder are reported as a generic 500 so internal text never leaks.
func Error(w http.ResponseWriter, err error) {
	var sc StatusCoder
	if !errors.As(err, &sc) || sc.StatusCode() >= http.StatusInternalServerError {
		status := http.StatusInternalServerError
		if sc != nil {
			status = sc.StatusCode()
		}
		JSONError(w, status, "internal server error", nil)
		return
	}
	var details any
	var d Detailer
	if errors.As(err, &d) {
		details = d.Details()
	}
	msg := err.Error()
	var m Messager
	if errors.As(err, &m) {
		msg = m.PublicMessage()
	}
	JSONError(w, sc.StatusCode(), msg, details)
}

// DecodeJSON reads a JSON request body into dst, rejecting bodies above 1 MiB.
// An empty body leaves dst untouched.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ClientIP returns the first X-Forwarded-For hop, or the host part of
// RemoteAddr.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
