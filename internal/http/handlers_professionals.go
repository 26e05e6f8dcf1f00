package http

import (
	"net/http"

	"salone/internal/core"
)

type professionalRequest struct {
	Name string `json:"name" validate:"required"`
}

type professionalResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleListProfessionals(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pros := st.Professionals.Snapshot()
	out := make([]professionalResponse, 0, len(pros))
	for _, p := range pros {
		out = append(out, professionalResponse{ID: p.ID, Name: p.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateProfessional(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req professionalRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := st.Professionals.Add(r.Context(), core.Professional{
		OwnerID: st.OwnerID(),
		Name:    req.Name,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, professionalResponse{ID: saved.ID, Name: saved.Name})
}

func (s *Server) handleUpdateProfessional(w http.ResponseWriter, r *http.Request) {
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

	var req professionalRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := st.Professionals.Update(r.Context(), core.Professional{
		ID:      id,
		OwnerID: st.OwnerID(),
		Name:    req.Name,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, professionalResponse{ID: saved.ID, Name: saved.Name})
}

func (s *Server) handleDeleteProfessional(w http.ResponseWriter, r *http.Request) {
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
	if err := st.Professionals.Remove(r.Context(), st.OwnerID(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
