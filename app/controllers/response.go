package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"postboard/app/services"

	log "github.com/sirupsen/logrus"
)

// errorBody is written for every failed request.
type errorBody struct {
	Error string        `json:"error"`
	Kind  services.Kind `json:"kind,omitempty"`
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("write response")
	}
}

// sendError reports err with status 400 whatever its kind; the kind field
// tells a rejected request apart from a failed store call.
func sendError(w http.ResponseWriter, r *http.Request, err error) {
	kind := services.KindOf(err)
	log.WithFields(log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"kind":   kind,
	}).WithError(err).Info("request failed")

	sendJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Kind: kind})
}

// decodeJSON reads exactly one JSON value from the request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return services.Invalid(errors.New("request body must not be empty"))
		case errors.As(err, &typeErr):
			return services.Invalid(fmt.Errorf("%s must be of type %s", typeErr.Field, typeErr.Type))
		default:
			return services.Invalid(fmt.Errorf("invalid JSON: %w", err))
		}
	}
	if dec.More() {
		return services.Invalid(errors.New("request body must contain a single JSON object"))
	}
	return nil
}

// WriteError writes a JSON error with an explicit status. The router uses it
// for unknown routes and methods.
func WriteError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, errorBody{Error: message})
}
