package main

// OrderStatus enumerates the states an order moves through. The backend
// appends one log entry per transition; the latest entry is the current status.
type OrderStatus string

const (
	StatusPlaced    OrderStatus = "PLACED"
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Shop is a store near the client. A paused shop is hidden from the dashboard
// even when it is open.
type Shop struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsOpen   bool   `json:"is_open"`
	IsPaused bool   `json:"is_paused"`
}

// OrderLog is one status transition of an order.
type OrderLog struct {
	Status OrderStatus `json:"status"`
}

// Order is a past purchase with its append-only status log.
type Order struct {
	ID          string     `json:"id"`
	OrderNumber string     `json:"order_number"`
	Logs        []OrderLog `json:"logs"`
}

// CurrentStatus returns the last entry of the status log.
func (o Order) CurrentStatus() OrderStatus {
	if len(o.Logs) == 0 {
		return ""
	}
	return o.Logs[len(o.Logs)-1].Status
}

// RelatedProduct carries the parent product info shown on a variant card.
type RelatedProduct struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

// ProductVariant is a purchasable variant of a product. Price is per unit, or
// per pound when ByWeight is set.
type ProductVariant struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	ImageURL         string         `json:"image_url"`
	Stock            int            `json:"stock"`
	Price            float64        `json:"price"`
	ByWeight         bool           `json:"by_weight"`
	AvailableForSale bool           `json:"available_for_sale"`
	Taxable          bool           `json:"taxable"`
	RelatedProduct   RelatedProduct `json:"related_product"`
}

// ClientAccount is the read model one dashboard render works from. A refetch
// replaces it wholesale; nothing merges or mutates it in place.
type ClientAccount struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"first_name"`
	NearbyShops []Shop  `json:"nearby_shops"`
	Orders      []Order `json:"orders"`
}

// CartLine is one add-to-cart request as persisted by the cart endpoint.
type CartLine struct {
	ID        string  `json:"id"`
	ClientID  string  `json:"client_id"`
	VariantID string  `json:"variant_id"`
	Quantity  float64 `json:"quantity"`
	CreatedAt string  `json:"created_at"`
}

// Category is a shop category shown on the dashboard carousel.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
