package httpx

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-coffee-shop/internal/redisx"
	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/go-chi/chi/v5"
)

const (
	defaultPopularLimit = 10
	maxPopularLimit     = 50
)

type Ranking interface {
	Top(ctx context.Context, n int64) ([]redisx.Ranked, error)
}

type CoffeeLookup interface {
	LookupAll(ctx context.Context, ids []string) ([]*shop.Coffee, error)
}

// PopularHandler serves the order popularity board. Board is nil when Redis
// is not configured.
type PopularHandler struct {
	Board   Ranking
	Catalog CoffeeLookup
}

func (h *PopularHandler) Register(r chi.Router) {
	r.Get("/popularCoffees", h.top)
}

type popularCoffee struct {
	shop.Coffee
	Orders int64 `json:"orders"`
}

func (h *PopularHandler) top(w http.ResponseWriter, r *http.Request) {
	limit := defaultPopularLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeMessage(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxPopularLimit)
	}
	if h.Board == nil {
		writeJSON(w, http.StatusOK, []popularCoffee{})
		return
	}

	ranked, err := h.Board.Top(r.Context(), int64(limit))
	if err != nil {
		writeDomainError(w, r, err, "Error fetching popular coffees")
		return
	}
	ids := make([]string, len(ranked))
	for i, e := range ranked {
		ids[i] = e.CoffeeID
	}
	coffees, err := h.Catalog.LookupAll(r.Context(), ids)
	if err != nil {
		writeDomainError(w, r, err, "Error fetching popular coffees")
		return
	}

	out := make([]popularCoffee, 0, len(ranked))
	for i, c := range coffees {
		if c == nil {
			continue
		}
		out = append(out, popularCoffee{Coffee: *c, Orders: int64(ranked[i].Score)})
	}
	writeJSON(w, http.StatusOK, out)
}
