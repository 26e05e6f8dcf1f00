package http

import (
	"net/http"

	"salone/internal/core"
)

type hoursRequest struct {
	Weekday int    `json:"weekday" validate:"gte=0,lte=6"`
	Opens   string `json:"opens"`
	Closes  string `json:"closes"`
}

type hoursResponse struct {
	Weekday int    `json:"weekday"`
	Opens   string `json:"opens"`
	Closes  string `json:"closes"`
	Closed  bool   `json:"closed"`
}

type exceptionRequest struct {
	Date        string `json:"date" validate:"required"`
	Opens       string `json:"opens"`
	Closes      string `json:"closes"`
	Description string `json:"description"`
}

type exceptionResponse struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Opens       string `json:"opens"`
	Closes      string `json:"closes"`
	Description string `json:"description"`
	ClosedAll   bool   `json:"closed_all_day"`
}

func toExceptionResponse(e core.BusinessException) exceptionResponse {
	return exceptionResponse{
		ID:          e.ID,
		Date:        e.Date.Key(),
		Opens:       e.Opens,
		Closes:      e.Closes,
		Description: e.Description,
		ClosedAll:   e.ClosedAllDay(),
	}
}

func (s *Server) handleListHours(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	hours := st.WeekHours()
	out := make([]hoursResponse, 0, len(hours))
	for _, h := range hours {
		out = append(out, hoursResponse{Weekday: h.Weekday, Opens: h.Opens, Closes: h.Closes, Closed: h.Closed()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePutHours(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req hoursRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}

	hours := core.BusinessHours{Weekday: req.Weekday, Opens: req.Opens, Closes: req.Closes}
	if err := st.SetHours(r.Context(), hours); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hoursResponse{
		Weekday: hours.Weekday, Opens: hours.Opens, Closes: hours.Closes, Closed: hours.Closed(),
	})
}

func (s *Server) handleListExceptions(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	excs := st.Exceptions()
	out := make([]exceptionResponse, 0, len(excs))
	for _, e := range excs {
		out = append(out, toExceptionResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateException(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req exceptionRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := st.AddException(r.Context(), core.BusinessException{
		Date:        date,
		Opens:       req.Opens,
		Closes:      req.Closes,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExceptionResponse(saved))
}

func (s *Server) handleDeleteException(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	if err := st.RemoveException(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
