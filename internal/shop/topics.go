package shop

const (
	TopicOrders  = "shop.orders"
	TopicCatalog = "shop.catalog"
)

// Partition key = coffee id, so every event touching one coffee keeps its order.
func PartitionKey(coffeeID string) []byte { return []byte(coffeeID) }
