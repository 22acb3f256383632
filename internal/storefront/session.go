package storefront

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/category"
	"storefront/internal/logger"
	"storefront/internal/product"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is one shopper's view of the store: the loaded catalog plus the
// cart engine it was constructed with.
type Session struct {
	gateway catalog.Gateway
	cart    *cart.Engine

	mu         sync.RWMutex
	products   []product.Product
	categories []category.Category
	err        error
}

func NewSession(gateway catalog.Gateway, engine *cart.Engine) *Session {
	return &Session{gateway: gateway, cart: engine}
}

func (s *Session) Cart() *cart.Engine {
	return s.cart
}

// LoadCatalog fetches products and categories. Overlapping loads are not
// coordinated: whichever finishes last is what the session shows. A failure
// is kept as the session error until the next successful load.
func (s *Session) LoadCatalog(ctx context.Context) error {
	log := logger.FromCtx(ctx)

	products, err := s.gateway.ListProducts(ctx)
	var categories []category.Category
	if err == nil {
		categories, err = s.gateway.ListCategories(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.err = fmt.Errorf("load catalog: %w", err)
		log.Error("failed to load catalog", zap.Error(err))
		return s.err
	}

	s.products = products
	s.categories = categories
	s.err = nil
	log.Info("catalog loaded",
		zap.Int("products", len(products)),
		zap.Int("categories", len(categories)),
	)
	return nil
}

// Err is the error of the most recent catalog load, if it failed.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Session) Products() []product.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products
}

func (s *Session) Categories() []category.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories
}

// DefaultFilter derives the reset filter, price bounds included, from the
// loaded catalog.
func (s *Session) DefaultFilter() catalog.FilterSpec {
	return catalog.DefaultFilterSpec(s.Products())
}

// Browse is the products page listing.
func (s *Session) Browse(spec catalog.FilterSpec) catalog.Page {
	return catalog.VisibleProducts(s.Products(), spec)
}

// Storefront is the store listing, which hides sold out products.
func (s *Session) Storefront(spec catalog.FilterSpec) catalog.Page {
	return catalog.StorefrontProducts(s.Products(), spec)
}

// Product returns a product for the detail view, asking the gateway when
// it is not in the loaded catalog.
func (s *Session) Product(ctx context.Context, id string) (*product.Product, error) {
	if p, ok := catalog.FindProduct(s.Products(), id); ok {
		return &p, nil
	}

	p, err := s.gateway.GetProduct(ctx, id)
	if catalog.IsNotFound(err) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func CartProduct(p product.Product) cart.Product {
	return cart.Product{ProductID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock}
}

// AddQuantity adds n units one at a time and stops at the first one the
// cart rejects. It returns how many were added.
func (s *Session) AddQuantity(p product.Product, n int) int {
	added := 0
	for i := 0; i < n; i++ {
		if !s.cart.AddToCart(CartProduct(p)) {
			break
		}
		added++
	}
	return added
}

type Receipt struct {
	OrderID    string
	Items      []cart.LineItem
	TotalItems int
	TotalPrice float64
	PlacedAt   time.Time
}

// Checkout is simulated: it snapshots the cart into a receipt and clears it.
// Stock is not re-checked against the catalog.
func (s *Session) Checkout(ctx context.Context) (*Receipt, error) {
	st := s.cart.TakeAll()
	if len(st.Items) == 0 {
		return nil, ErrCartEmpty
	}

	r := &Receipt{
		OrderID:    uuid.NewString(),
		Items:      st.Items,
		TotalItems: st.TotalItems,
		TotalPrice: st.TotalPrice,
		PlacedAt:   time.Now(),
	}

	logger.FromCtx(ctx).Info("checkout completed",
		zap.String("order_id", r.OrderID),
		zap.Int("items", r.TotalItems),
		zap.Float64("total", r.TotalPrice),
	)
	return r, nil
}
