package http

import (
	"net/http"

	"salone/internal/core"
)

type clientRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone"`
	Email string `json:"email" validate:"omitempty,email"`
	Notes string `json:"notes"`
}

type clientResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

func toClientResponse(c core.Client) clientResponse {
	return clientResponse{ID: c.ID, Name: c.Name, Phone: c.Phone, Email: c.Email, Notes: c.Notes}
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	clients := st.Clients.Snapshot()
	out := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req clientRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := st.Clients.Add(r.Context(), core.Client{
		OwnerID: st.OwnerID(),
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Notes:   req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientResponse(saved))
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
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

	var req clientRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := st.Clients.Update(r.Context(), core.Client{
		ID:      id,
		OwnerID: st.OwnerID(),
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Notes:   req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientResponse(saved))
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
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
	if err := st.Clients.Remove(r.Context(), st.OwnerID(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
