package httpx

import (
	"errors"
	"net/http"

	"github.com/ariefcatur/go-coffee-shop/internal/catalog"
	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/go-chi/chi/v5"
)

type CoffeesHandler struct {
	Catalog *catalog.Service
	Guard   *Guard
}

func (h *CoffeesHandler) Register(r chi.Router) {
	r.Get("/coffees", h.list)
	r.Get("/coffee/{id}", h.get)
	r.Get("/myCoffees/{email}", h.listByOwner)
	r.With(h.Guard.Require).Post("/addCoffee", h.create)
	r.With(h.Guard.Require).Patch("/coffee/{id}", h.update)
	r.With(h.Guard.Mutating).Patch("/like/{coffeeId}", h.toggleLike)
}

func (h *CoffeesHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err, "Error fetching coffees")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// get answers 200 with an empty body when the coffee does not exist.
func (h *CoffeesHandler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, shop.ErrCoffeeNotFound) {
		w.WriteHeader(http.StatusOK)
		return
	}
	if err != nil {
		writeDomainError(w, r, err, "Error fetching coffee")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CoffeesHandler) listByOwner(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.ListByOwner(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeDomainError(w, r, err, "Error fetching coffees")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

type createCoffeeResp struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
	Message      string `json:"message"`
}

func (h *CoffeesHandler) create(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	c, err := shop.DecodeNewCoffee(body)
	if err != nil {
		writeDomainError(w, r, err, "Error adding coffee")
		return
	}
	if actor := h.Guard.Actor(r); actor != "" {
		c.Email = actor
	}
	id, err := h.Catalog.Create(r.Context(), c)
	if err != nil {
		writeDomainError(w, r, err, "Error adding coffee")
		return
	}
	writeJSON(w, http.StatusOK, createCoffeeResp{Acknowledged: true, InsertedID: id, Message: "got it"})
}

func (h *CoffeesHandler) update(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	patch, err := shop.DecodeCoffeePatch(body)
	if err != nil {
		writeDomainError(w, r, err, "Error updating coffee")
		return
	}
	res, err := h.Catalog.Update(r.Context(), chi.URLParam(r, "id"), patch, h.Guard.Actor(r))
	if err != nil {
		writeDomainError(w, r, err, "Error updating coffee")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type likeReq struct {
	Email string `json:"email"`
}

type likeResp struct {
	Message string `json:"message"`
	Liked   bool   `json:"liked"`
}

func (h *CoffeesHandler) toggleLike(w http.ResponseWriter, r *http.Request) {
	email := h.Guard.Actor(r)
	if email == "" {
		var req likeReq
		if err := decodeJSON(r, &req); err != nil {
			writeDomainError(w, r, err, "Error toggling like")
			return
		}
		email = req.Email
	}
	liked, err := h.Catalog.ToggleLike(r.Context(), chi.URLParam(r, "coffeeId"), email)
	if err != nil {
		writeDomainError(w, r, err, "Error toggling like")
		return
	}
	resp := likeResp{Message: "Disliked", Liked: liked}
	if liked {
		resp.Message = "Liked"
	}
	writeJSON(w, http.StatusOK, resp)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
