// Package httputil holds small helpers shared by HTTP handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"gatehouse/pkg/domerr"
)

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to its HTTP status and error body.
// Internal errors never leak their message to the caller.
func WriteError(w http.ResponseWriter, err error) {
	code := domerr.CodeOf(err)
	resp := errorResponse{Error: string(code)}
	if code != domerr.CodeInternal {
		var dErr *domerr.Error
		if errors.As(err, &dErr) {
			resp.Description = dErr.Message
		}
	}
	WriteJSON(w, domerr.ToHTTPStatus(code), resp)
}

// Decode reads a JSON request body into dst, rejecting unknown fields.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domerr.Wrap(domerr.CodeBadRequest, "invalid request body", err)
	}
	return nil
}
