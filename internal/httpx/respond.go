package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ariefcatur/go-coffee-shop/internal/logging"
	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"go.uber.org/zap"
)

const maxBody = 1 << 20

type message struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, message{Message: msg})
}

// writeDomainError maps domain sentinels to their status and message.
// Anything else is logged and answered with 500 and fallback.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, shop.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, msgNoSession)
	case errors.Is(err, shop.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "Forbidden Access!")
	case errors.Is(err, shop.ErrCoffeeNotFound):
		writeMessage(w, http.StatusNotFound, "Coffee not found")
	case errors.Is(err, shop.ErrOrderNotFound):
		writeMessage(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, shop.ErrOutOfStock):
		writeMessage(w, http.StatusBadRequest, "Out of stock")
	case errors.Is(err, shop.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		logging.FromContext(r.Context()).Error(fallback, zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, fallback)
	}
}

// readBody reads a bounded request body.
func readBody(r *http.Request) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return nil, err
	}
	return b, nil
}

// decodeJSON decodes a bounded JSON body. Unknown fields are ignored.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(dst); err != nil {
		return errors.Join(shop.ErrInvalidInput, err)
	}
	return nil
}
