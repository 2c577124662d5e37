package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/ariefcatur/go-coffee-shop/internal/cart"
	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/go-chi/chi/v5"
)

// CartHandler serves the session user's cart. Every route needs a session.
type CartHandler struct {
	Cart  *cart.Service
	Guard *Guard
}

func (h *CartHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.Guard.Require)
		r.Get("/cart", h.get)
		r.Post("/cart", h.add)
		r.Delete("/cart", h.clear)
		r.Patch("/cart/{coffeeId}", h.setQuantity)
		r.Delete("/cart/{coffeeId}", h.remove)
	})
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	view, err := h.Cart.Get(r.Context(), SessionEmail(r.Context()))
	if err != nil {
		writeDomainError(w, r, err, "Error fetching cart")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type addCartReq struct {
	Coffee *shop.CartItem `json:"coffee"`
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var req addCartReq
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err, "Error adding to cart")
		return
	}
	if req.Coffee == nil {
		writeMessage(w, http.StatusBadRequest, "coffee is required")
		return
	}
	view, err := h.Cart.Add(r.Context(), SessionEmail(r.Context()), *req.Coffee)
	if err != nil {
		writeDomainError(w, r, err, "Error adding to cart")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type setQuantityReq struct {
	Quantity json.RawMessage `json:"quantity"`
}

func (h *CartHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityReq
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err, "Error updating cart")
		return
	}
	q, err := shop.DecodeQuantity(req.Quantity)
	if err != nil {
		writeDomainError(w, r, err, "Error updating cart")
		return
	}
	view, err := h.Cart.SetQuantity(r.Context(), SessionEmail(r.Context()), chi.URLParam(r, "coffeeId"), q)
	if err != nil {
		writeDomainError(w, r, err, "Error updating cart")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	view, err := h.Cart.Remove(r.Context(), SessionEmail(r.Context()), chi.URLParam(r, "coffeeId"))
	if err != nil {
		writeDomainError(w, r, err, "Error removing from cart")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	view, err := h.Cart.Clear(r.Context(), SessionEmail(r.Context()))
	if err != nil {
		writeDomainError(w, r, err, "Error clearing cart")
		return
	}
	writeJSON(w, http.StatusOK, view)
}
