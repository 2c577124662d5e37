package shop

import "errors"

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrCoffeeNotFound = errors.New("coffee not found")
	ErrOrderNotFound  = errors.New("order not found")
	ErrCartNotFound   = errors.New("cart not found")
	ErrOutOfStock     = errors.New("out of stock")
	ErrInvalidInput   = errors.New("invalid input")
)
