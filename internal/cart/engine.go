package cart

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultStorageTimeout = 2 * time.Second

// Engine owns one shopper's cart. Every successful mutation is written to
// the storage slot; a failed write leaves the engine running in memory only.
type Engine struct {
	mu       sync.Mutex
	state    State
	notice   *Notice
	storage  Storage
	persist  bool
	timeout  time.Duration
	log      *zap.Logger
	onNotice func(Notice)
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithNoticeHandler is called synchronously whenever a stock notice is
// raised. fn must not call back into the engine.
func WithNoticeHandler(fn func(Notice)) Option {
	return func(e *Engine) { e.onNotice = fn }
}

func WithStorageTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// New builds an engine and rehydrates it from storage. Missing, unreadable
// or malformed data yields an empty cart. A nil storage keeps the cart in
// memory only.
func New(storage Storage, opts ...Option) *Engine {
	e := &Engine{
		state:   emptyState(),
		storage: storage,
		persist: storage != nil,
		timeout: defaultStorageTimeout,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.persist {
		e.state = e.rehydrate()
	}
	return e
}

func (e *Engine) rehydrate() State {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	data, err := e.storage.Load(ctx)
	if errors.Is(err, ErrSlotEmpty) {
		return emptyState()
	}
	if err != nil {
		e.log.Warn("cart: failed to read storage, starting empty", zap.Error(err))
		return emptyState()
	}

	st, err := decodeState(data)
	if err != nil {
		e.log.Warn("cart: discarding corrupt cart data", zap.Error(err))
		return emptyState()
	}
	return st
}

// decodeState parses persisted data, dropping line items that could never
// have been produced by the engine. Totals are always recomputed.
func decodeState(data []byte) (State, error) {
	var raw State
	if err := json.Unmarshal(data, &raw); err != nil {
		return State{}, errors.Join(ErrInvalidState, err)
	}

	st := emptyState()
	seen := make(map[string]bool, len(raw.Items))
	for _, it := range raw.Items {
		if it.ProductID == "" || seen[it.ProductID] {
			continue
		}
		if it.Quantity <= 0 || it.Stock <= 0 || it.Price < 0 {
			continue
		}
		if it.Quantity > it.Stock {
			it.Quantity = it.Stock
		}
		seen[it.ProductID] = true
		st.Items = append(st.Items, it)
	}
	st.recompute()
	return st, nil
}

// AddToCart adds one unit of p. It returns false, leaving the cart
// untouched, when the new quantity would exceed p.Stock or p has no id or
// a price that cannot be stored.
func (e *Engine) AddToCart(p Product) bool {
	if p.ProductID == "" || !validPrice(p.Price) {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.state.clone()
	idx := next.indexOf(p.ProductID)

	if idx == -1 {
		item := LineItem{ProductID: p.ProductID, Name: p.Name, Price: p.Price, Stock: p.Stock, Quantity: 1}
		if item.Quantity > p.Stock {
			e.raise(stockNotice(item, item.Quantity))
			return false
		}
		next.Items = append(next.Items, item)
	} else {
		item := next.Items[idx]
		item.Stock = p.Stock
		if item.Quantity+1 > p.Stock {
			e.raise(stockNotice(item, item.Quantity+1))
			return false
		}
		item.Quantity++
		next.Items[idx] = item
	}

	e.commit(next)
	return true
}

// RemoveFromCart takes one unit off the line, dropping it at zero.
func (e *Engine) RemoveFromCart(productID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.state.indexOf(productID)
	if idx == -1 {
		return
	}

	next := e.state.clone()
	if next.Items[idx].Quantity <= 1 {
		next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
	} else {
		next.Items[idx].Quantity--
	}
	e.commit(next)
}

// UpdateQuantity sets an absolute quantity. Zero or less removes the line;
// anything above the line's stock is clamped and raises a notice.
func (e *Engine) UpdateQuantity(productID string, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.state.indexOf(productID)
	if idx == -1 {
		return
	}

	next := e.state.clone()
	if quantity <= 0 {
		next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
		e.commit(next)
		return
	}

	item := next.Items[idx]
	if quantity > item.Stock {
		e.raise(stockNotice(item, quantity))
		quantity = item.Stock
	}
	item.Quantity = quantity
	next.Items[idx] = item
	e.commit(next)
}

func (e *Engine) ClearCart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commit(emptyState())
}

// TakeAll returns the current cart and empties it in one step, so nothing
// added concurrently is lost between the read and the clear.
func (e *Engine) TakeAll() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	taken := e.state.clone()
	if len(taken.Items) > 0 {
		e.commit(emptyState())
	}
	return taken
}

// State returns a copy of the current cart.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

func (e *Engine) Item(productID string) (LineItem, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.state.indexOf(productID)
	if idx == -1 {
		return LineItem{}, false
	}
	return e.state.Items[idx], true
}

func (e *Engine) TotalItems() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.TotalItems
}

func (e *Engine) TotalPrice() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.TotalPrice
}

// TakeNotice returns the pending stock notice, if any, and clears it.
func (e *Engine) TakeNotice() (Notice, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.notice == nil {
		return Notice{}, false
	}
	n := *e.notice
	e.notice = nil
	return n, true
}

// Persistent reports whether mutations are still written to storage.
func (e *Engine) Persistent() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persist
}

func (e *Engine) raise(n Notice) {
	e.notice = &n
	e.log.Info("cart: stock limit reached",
		zap.String("product_id", n.ProductID),
		zap.Int("requested", n.Requested),
		zap.Int("limit", n.Limit),
	)
	if e.onNotice != nil {
		e.onNotice(n)
	}
}

// commit must be called with mu held.
func (e *Engine) commit(next State) {
	next.recompute()
	e.state = next

	if !e.persist {
		return
	}

	data, err := json.Marshal(e.state)
	if err != nil {
		e.disablePersistence(err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	if err := e.storage.Save(ctx, data); err != nil {
		e.disablePersistence(err)
	}
}

func (e *Engine) disablePersistence(err error) {
	e.persist = false
	e.log.Warn("cart: storage write failed, continuing in memory only", zap.Error(err))
}

func validPrice(price float64) bool {
	return price >= 0 && !math.IsInf(price, 0)
}
