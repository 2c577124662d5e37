package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-coffee-shop/internal/orders"
	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/go-chi/chi/v5"
)

type OrdersHandler struct {
	Orders *orders.Service
	Guard  *Guard
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.With(h.Guard.Mutating).Post("/order/{coffeeId}", h.place)
	r.With(h.Guard.Require).Get("/myOrders/{email}", h.listMine)
	r.With(h.Guard.Mutating).Delete("/order/{orderId}", h.cancel)
}

type placeOrderResp struct {
	OrderID string `json:"orderId"`
	Message string `json:"message"`
}

func (h *OrdersHandler) place(w http.ResponseWriter, r *http.Request) {
	var o shop.Order
	if err := decodeJSON(r, &o); err != nil {
		writeDomainError(w, r, err, "Error placing order")
		return
	}
	if actor := h.Guard.Actor(r); actor != "" {
		o.CustomerEmail = actor
	}
	id, err := h.Orders.Place(r.Context(), chi.URLParam(r, "coffeeId"), o)
	if err != nil {
		writeDomainError(w, r, err, "Error placing order")
		return
	}
	writeJSON(w, http.StatusOK, placeOrderResp{OrderID: id, Message: "Order placed successfully"})
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	list, err := h.Orders.ListByCustomer(r.Context(), chi.URLParam(r, "email"), SessionEmail(r.Context()))
	if err != nil {
		writeDomainError(w, r, err, "Error fetching orders")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

type cancelOrderResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.Orders.Cancel(r.Context(), chi.URLParam(r, "orderId"), h.Guard.Actor(r)); err != nil {
		writeDomainError(w, r, err, "Error cancelling order")
		return
	}
	writeJSON(w, http.StatusOK, cancelOrderResp{Success: true, Message: "Order cancelled successfully"})
}
