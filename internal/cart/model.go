package cart

import "fmt"

// Product is what the storefront hands to AddToCart.
type Product struct {
	ProductID string
	Name      string
	Price     float64
	Stock     int
}

// LineItem is one row of the cart. Stock is the ceiling captured when the
// product was last added.
type LineItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"lineTotal"`
}

type State struct {
	Items      []LineItem `json:"items"`
	TotalItems int        `json:"totalItems"`
	TotalPrice float64    `json:"totalPrice"`
}

// Notice is the transient stock-exceeded message raised by the engine.
type Notice struct {
	ProductID string
	Name      string
	Requested int
	Limit     int
	Message   string
}

func stockNotice(item LineItem, requested int) Notice {
	return Notice{
		ProductID: item.ProductID,
		Name:      item.Name,
		Requested: requested,
		Limit:     item.Stock,
		Message:   fmt.Sprintf("Only %d of %s available in stock", item.Stock, item.Name),
	}
}

func emptyState() State {
	return State{Items: []LineItem{}}
}

// recompute derives every total from the items.
func (s *State) recompute() {
	s.TotalItems = 0
	s.TotalPrice = 0
	for i := range s.Items {
		s.Items[i].LineTotal = s.Items[i].Price * float64(s.Items[i].Quantity)
		s.TotalItems += s.Items[i].Quantity
		s.TotalPrice += s.Items[i].LineTotal
	}
}

func (s State) clone() State {
	items := make([]LineItem, len(s.Items))
	copy(items, s.Items)
	s.Items = items
	return s
}

func (s State) indexOf(productID string) int {
	for i, it := range s.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
