package http

import (
	"net/http"

	"salone/internal/core"
)

type productRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Price       string `json:"price" validate:"required"`
	Quantity    int    `json:"quantity" validate:"gte=0"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
}

type productResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	ImageURL    string `json:"image_url"`
	LowStock    bool   `json:"low_stock"`
}

func (s *Server) toProductResponse(p core.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.Price.Cents,
		Price:       s.formatter.Format(p.Price.Cents),
		Quantity:    p.Quantity,
		ImageURL:    p.ImageURL,
		LowStock:    p.LowStock(s.lowStock),
	}
}

func (s *Server) productFromRequest(r *http.Request, id int64, ownerID string) (core.Product, error) {
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		return core.Product{}, errMalformedBody
	}
	if err := s.validate.Struct(req); err != nil {
		return core.Product{}, err
	}
	cents, err := core.ParseDecimalToCents(req.Price)
	if err != nil {
		return core.Product{}, err
	}
	return core.Product{
		ID:          id,
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Price:       core.Money{Cents: cents},
		Quantity:    req.Quantity,
		ImageURL:    req.ImageURL,
	}, nil
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	products := st.Products.Snapshot()
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, s.toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	product, err := s.productFromRequest(r, 0, st.OwnerID())
	if err != nil {
		s.writeRequestError(w, r, err)
		return
	}
	saved, err := st.Products.Add(r.Context(), product)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.toProductResponse(saved))
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
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
	product, err := s.productFromRequest(r, id, st.OwnerID())
	if err != nil {
		s.writeRequestError(w, r, err)
		return
	}
	saved, err := st.Products.Update(r.Context(), product)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toProductResponse(saved))
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
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
	if err := st.Products.Remove(r.Context(), st.OwnerID(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
