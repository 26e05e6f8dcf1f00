package http

import (
	"net/http"
	"time"

	"salone/internal/core"
)

type appointmentRequest struct {
	ClientID       int64  `json:"client_id" validate:"required,gt=0"`
	ProfessionalID int64  `json:"professional_id" validate:"required,gt=0"`
	Service        string `json:"service" validate:"required"`
	Price          string `json:"price" validate:"required"`
	StartsAt       string `json:"starts_at" validate:"required"`
	Confirmed      bool   `json:"confirmed"`
}

type appointmentResponse struct {
	ID             int64  `json:"id"`
	ClientID       int64  `json:"client_id"`
	ProfessionalID int64  `json:"professional_id"`
	Service        string `json:"service"`
	PriceCents     int64  `json:"price_cents"`
	Price          string `json:"price"`
	StartsAt       string `json:"starts_at"`
	Confirmed      bool   `json:"confirmed"`
}

func (s *Server) toAppointmentResponse(a core.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:             a.ID,
		ClientID:       a.ClientID,
		ProfessionalID: a.ProfessionalID,
		Service:        a.Service,
		PriceCents:     a.Price.Cents,
		Price:          s.formatter.Format(a.Price.Cents),
		StartsAt:       a.StartsAt.UTC().Format(time.RFC3339),
		Confirmed:      a.Confirmed,
	}
}

func (s *Server) appointmentFromRequest(r *http.Request, id int64, ownerID string) (core.Appointment, error) {
	var req appointmentRequest
	if err := decodeBody(r, &req); err != nil {
		return core.Appointment{}, errMalformedBody
	}
	if err := s.validate.Struct(req); err != nil {
		return core.Appointment{}, err
	}
	cents, err := core.ParseDecimalToCents(req.Price)
	if err != nil {
		return core.Appointment{}, err
	}
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return core.Appointment{}, core.ErrInvalidDate
	}
	return core.Appointment{
		ID:             id,
		OwnerID:        ownerID,
		ClientID:       req.ClientID,
		ProfessionalID: req.ProfessionalID,
		Service:        req.Service,
		Price:          core.Money{Cents: cents},
		StartsAt:       startsAt,
		Confirmed:      req.Confirmed,
	}, nil
}

// resolveReferences requires the appointment's client and professional to
// exist in the owner's snapshots, so an appointment can never point at a
// record of another owner or at nothing.
func (s *Server) resolveReferences(r *http.Request, a core.Appointment) error {
	st, err := s.storeFor(r)
	if err != nil {
		return err
	}
	if _, ok := st.Clients.Get(a.ClientID); !ok {
		return core.ErrMissingClient
	}
	if _, ok := st.Professionals.Get(a.ProfessionalID); !ok {
		return core.ErrMissingProfessional
	}
	return nil
}

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	appts := st.Appointments.Snapshot()
	out := make([]appointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, s.toAppointmentResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	appt, err := s.appointmentFromRequest(r, 0, st.OwnerID())
	if err != nil {
		s.writeRequestError(w, r, err)
		return
	}
	if err := s.resolveReferences(r, appt); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := st.Appointments.Add(r.Context(), appt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.toAppointmentResponse(saved))
}

func (s *Server) handleUpdateAppointment(w http.ResponseWriter, r *http.Request) {
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
	appt, err := s.appointmentFromRequest(r, id, st.OwnerID())
	if err != nil {
		s.writeRequestError(w, r, err)
		return
	}
	if err := s.resolveReferences(r, appt); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := st.Appointments.Update(r.Context(), appt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toAppointmentResponse(saved))
}

func (s *Server) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
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
	if err := st.Appointments.Remove(r.Context(), st.OwnerID(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
