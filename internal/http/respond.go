package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"salone/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors to HTTP statuses: validation failures are
// unprocessable, unknown identifiers are not found, gateway failures are
// a bad upstream. Anything else is a server error with the detail logged,
// not leaked.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var valErrs validator.ValidationErrors
	switch {
	case errors.As(err, &valErrs),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidEmail),
		errors.Is(err, core.ErrNegativeQuantity),
		errors.Is(err, core.ErrEmptyService),
		errors.Is(err, core.ErrMissingClient),
		errors.Is(err, core.ErrMissingProfessional),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrInvalidEntryType),
		errors.Is(err, core.ErrInvalidRecurrence),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidWeekday),
		errors.Is(err, core.ErrInvalidTimeRange):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, core.ErrRemote):
		slog.ErrorContext(r.Context(), "Gateway failure", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "upstream unavailable"})
	default:
		slog.ErrorContext(r.Context(), "Unhandled error", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// errMalformedBody distinguishes an undecodable body (bad request) from a
// decodable one carrying invalid values (unprocessable).
var errMalformedBody = errors.New("malformed request body")

func (s *Server) writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errMalformedBody) {
		badRequest(w, errMalformedBody.Error())
		return
	}
	writeError(w, r, err)
}

// decodeBody decodes a JSON request body into dst, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
