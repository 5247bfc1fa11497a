package order

import "time"

type Item struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

// LineTotal is Price * Quantity in cents.
func (it Item) LineTotal() int64 {
	return it.Price * int64(it.Quantity)
}

type Order struct {
	ID          string    `json:"orderId"`
	UserID      string    `json:"userId"`
	CartKey     string    `json:"cartKey"`
	Status      Status    `json:"status"`
	Items       []Item    `json:"items"`
	Subtotal    int64     `json:"subtotal"`
	Tax         int64     `json:"tax"`
	TotalAmount int64     `json:"totalAmount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
