package models

// CartItem is one product line in the cart. Name, price and image are
// captured at add time and never re-fetched.
type CartItem struct {
	ID       string `json:"id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Price    int64  `json:"price" binding:"required"` // unit price, VND
	Quantity int    `json:"quantity"`
	Image    string `json:"image,omitempty"`
}

// CartState holds the cart lines plus a running total kept in step with
// every mutation. Total must always equal the sum of price*quantity over
// Items.
type CartState struct {
	Items []CartItem `json:"items"`
	Total int64      `json:"total"`
}

// Recompute returns the total derived from the items, for invariant checks.
func (s CartState) Recompute() int64 {
	var sum int64
	for _, item := range s.Items {
		sum += item.Price * int64(item.Quantity)
	}
	return sum
}

type AddItemRequest struct {
	ID    string `json:"id" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Price int64  `json:"price" binding:"required,min=0"`
	Image string `json:"image"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}
