// Package storetest provides an in-process fake storefront backend for
// tests. Behavior is scriptable per test: stock caps, checkout interrupts
// (structured or sentinel-text), payment rejections.
package storetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/gemaluna/storefront-client/domain"
)

// Product seeds the fake catalog.
type Product struct {
	Name  string
	SKU   string
	Price int64
	Stock int
}

// Server is a fake storefront backend.
type Server struct {
	*httptest.Server

	mu      sync.Mutex
	catalog map[string]Product
	lines   []domain.CartLine
	hits    map[string]int

	// Checkout behavior knobs. Zero values mean a plain successful checkout.
	RequireLogin        bool   // respond 401 {"require_login":true}
	RequireProfile      bool   // respond 400 {"require_complete_data":true}
	SentinelBody        string // respond 400 with this raw (non-JSON) body
	CheckoutFailMessage string // respond 200 {"success":false,"message":...}
	NextOrderID         int
	InvoiceID           string
	DiscountPct         int // classification discount applied to the total

	// Payment behavior knobs.
	PaymentFailMessage string
	Methods            []domain.PaymentMethod

	// PaidOrders records successful payments by order ID.
	PaidOrders map[string]int64
}

// New starts a fake backend. It is closed automatically when the test ends.
func New(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		catalog:     map[string]Product{},
		hits:        map[string]int{},
		NextOrderID: 55,
		Methods: []domain.PaymentMethod{
			{ID: "1", Name: "Cash"},
			{ID: "2", Name: "Credit Card"},
			{ID: "3", Name: "Bank Transfer"},
		},
		PaidOrders: map[string]int64{},
	}

	r := chi.NewRouter()
	r.Get("/api/cart", s.handleGetCart)
	r.Post("/api/cart/add", s.handleAdd)
	r.Post("/api/cart/update", s.handleUpdate)
	r.Post("/api/cart/remove", s.handleRemove)
	r.Post("/api/cart/empty", s.handleEmpty)
	r.Post("/api/cart/checkout", s.handleCheckout)
	r.Get("/api/payments/methods", s.handleMethods)
	r.Post("/api/orders/{orderID}/pay", s.handlePay)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// SeedProduct adds a product to the fake catalog.
func (s *Server) SeedProduct(id string, p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog[id] = p
}

// SeedCart replaces the cart contents.
func (s *Server) SeedCart(lines ...domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append([]domain.CartLine{}, lines...)
}

// CartLines returns a copy of the current cart contents.
func (s *Server) CartLines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartLine{}, s.lines...)
}

// Hits returns how many requests the given route pattern received.
func (s *Server) Hits(pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[pattern]
}

// TotalHits returns the total number of requests received.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

func (s *Server) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits[chi.RouteContext(r.Context()).RoutePattern()]++
}

func (s *Server) snapshotLocked() domain.CartSnapshot {
	var total int64
	count := 0
	for _, l := range s.lines {
		total += l.UnitPrice * int64(l.Quantity)
		count += l.Quantity
	}
	return domain.CartSnapshot{
		Lines:          append([]domain.CartLine{}, s.lines...),
		Total:          total,
		TotalItemCount: count,
	}
}

func (s *Server) itemCountLocked() int {
	count := 0
	for _, l := range s.lines {
		count += l.Quantity
	}
	return count
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	s.mu.Lock()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snapshot)
}

type mutationRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	var req mutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "bad request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.catalog[req.ProductID]
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "product not found"})
		return
	}

	existing := 0
	for i := range s.lines {
		if s.lines[i].ProductID == req.ProductID {
			existing = s.lines[i].Quantity
		}
	}
	if existing+req.Quantity > product.Stock {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "insufficient stock for " + product.Name})
		return
	}

	if existing > 0 {
		for i := range s.lines {
			if s.lines[i].ProductID == req.ProductID {
				s.lines[i].Quantity += req.Quantity
			}
		}
	} else {
		s.lines = append(s.lines, domain.CartLine{
			ProductID: req.ProductID,
			Name:      product.Name,
			SKU:       product.SKU,
			UnitPrice: product.Price,
			Quantity:  req.Quantity,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"total_item_count": s.itemCountLocked(),
	})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	var req mutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "bad request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.catalog[req.ProductID]
	if ok && req.Quantity > product.Stock {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "insufficient stock for " + product.Name})
		return
	}

	for i := range s.lines {
		if s.lines[i].ProductID == req.ProductID {
			s.lines[i].Quantity = req.Quantity
			// The update endpoint reports success only; clients re-fetch.
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "product not in cart"})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	var req mutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "bad request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == req.ProductID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{
				"success":          true,
				"total_item_count": s.itemCountLocked(),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "product not in cart"})
}

func (s *Server) handleEmpty(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	s.record(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.RequireLogin:
		writeJSON(w, http.StatusUnauthorized, map[string]any{"require_login": true})
		return
	case s.SentinelBody != "":
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(s.SentinelBody))
		return
	case s.RequireProfile:
		writeJSON(w, http.StatusBadRequest, map[string]any{"require_complete_data": true})
		return
	case s.CheckoutFailMessage != "":
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": s.CheckoutFailMessage})
		return
	}

	snapshot := s.snapshotLocked()
	if len(snapshot.Lines) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "cart is empty"})
		return
	}

	orderID := strconv.Itoa(s.NextOrderID)
	s.NextOrderID++

	resp := map[string]any{
		"success":  true,
		"order_id": orderID,
		"total":    snapshot.Total,
	}
	if s.InvoiceID != "" {
		resp["invoice_id"] = s.InvoiceID
	}
	if s.DiscountPct > 0 {
		discounted := snapshot.Total * int64(100-s.DiscountPct) / 100
		resp["total"] = discounted
		resp["classification_discount_pct"] = s.DiscountPct
		resp["subtotal_before_discount"] = snapshot.Total
	}
	s.PaidOrders[orderID] = 0
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMethods(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	writeJSON(w, http.StatusOK, s.Methods)
}

func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	orderID := chi.URLParam(r, "orderID")

	var input domain.PaymentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "bad request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.PaymentFailMessage != "" {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": s.PaymentFailMessage})
		return
	}
	if _, ok := s.PaidOrders[orderID]; !ok {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "unknown order"})
		return
	}

	s.PaidOrders[orderID] = input.Amount
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "payment registered"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
