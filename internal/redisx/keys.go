package redisx

import "time"

const (
	// Coffee read-through cache: coffee:{coffee_id} -> Coffee JSON
	KeyCoffee = "coffee:%s"

	// Dedup event processing: dedup:{consumer}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Popularity board: sorted set, member = coffee id, score = open orders
	KeyPopularity = "popularity:coffees"
)

var (
	TTLCoffee = 30 * time.Second
	TTLDedup  = 48 * time.Hour
)
