package http

import (
	"net/http"

	"salone/internal/core"
)

const financeCollection = "financial_entries"

type financeRequest struct {
	Description string `json:"description" validate:"required,max=200"`
	Amount      string `json:"amount" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=revenue expense"`
	Recurrence  string `json:"recurrence" validate:"required,oneof=one_off fixed"`
	Date        string `json:"date" validate:"required"`
}

type financeResponse struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Recurrence  string `json:"recurrence"`
	Date        string `json:"date"`
}

func (s *Server) toFinanceResponse(e core.FinancialEntry) financeResponse {
	return financeResponse{
		ID:          e.ID,
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		Amount:      s.formatter.Format(e.Amount.Cents),
		Type:        string(e.Type),
		Recurrence:  string(e.Recurrence),
		Date:        e.Date.Key(),
	}
}

func (s *Server) financeFromRequest(r *http.Request, id int64, ownerID string) (core.FinancialEntry, error) {
	var req financeRequest
	if err := decodeBody(r, &req); err != nil {
		return core.FinancialEntry{}, errMalformedBody
	}
	if err := s.validate.Struct(req); err != nil {
		return core.FinancialEntry{}, err
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.FinancialEntry{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.FinancialEntry{}, err
	}
	return core.FinancialEntry{
		ID:          id,
		OwnerID:     ownerID,
		Description: req.Description,
		Amount:      core.Money{Cents: cents},
		Type:        core.EntryType(req.Type),
		Recurrence:  core.Recurrence(req.Recurrence),
		Date:        date,
	}, nil
}

func (s *Server) handleListFinance(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries := st.Finances.Snapshot()
	out := make([]financeResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, s.toFinanceResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateFinance(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := s.financeFromRequest(r, 0, st.OwnerID())
	if err != nil {
		s.writeRequestError(w, r, err)
		return
	}
	saved, err := st.Finances.Add(r.Context(), entry)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.publishChange(r.Context(), financeCollection, "insert", saved.ID, st.OwnerID())
	writeJSON(w, http.StatusCreated, s.toFinanceResponse(saved))
}

func (s *Server) handleUpdateFinance(w http.ResponseWriter, r *http.Request) {
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
	entry, err := s.financeFromRequest(r, id, st.OwnerID())
	if err != nil {
		s.writeRequestError(w, r, err)
		return
	}
	saved, err := st.Finances.Update(r.Context(), entry)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.publishChange(r.Context(), financeCollection, "update", saved.ID, st.OwnerID())
	writeJSON(w, http.StatusOK, s.toFinanceResponse(saved))
}

func (s *Server) handleDeleteFinance(w http.ResponseWriter, r *http.Request) {
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
	if err := st.Finances.Remove(r.Context(), st.OwnerID(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.publishChange(r.Context(), financeCollection, "delete", id, st.OwnerID())
	w.WriteHeader(http.StatusNoContent)
}
