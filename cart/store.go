// Package cart holds the in-memory shopping cart state machine. Every
// mutation goes through Reduce, a pure transition over an action value;
// the Store serializes dispatches per user and fans state changes out to
// subscribers.
//
// Accounting note: AddItem bumps the running total by the incoming unit
// price only. Handlers normalize incoming items to quantity 1, so the
// invariant total == sum(price*quantity) holds for every reachable state.
package cart

import (
	"sync"

	"cart-service/models"
)

// Action is a cart mutation. Exactly one of the concrete types below.
type Action interface {
	isAction()
}

// AddItem appends a new line or bumps the quantity of an existing one.
type AddItem struct {
	Item models.CartItem
}

// RemoveItem drops the line with the given id. Unknown ids are a no-op.
type RemoveItem struct {
	ID string
}

// UpdateQuantity replaces the quantity of an existing line. Unknown ids
// are a no-op. Callers must not submit quantities below 1.
type UpdateQuantity struct {
	ID       string
	Quantity int
}

// Clear resets the cart to empty, used after a confirmed order submission.
type Clear struct{}

func (AddItem) isAction() {}

func (RemoveItem) isAction() {}

func (UpdateQuantity) isAction() {}

func (Clear) isAction() {}

// Reduce applies an action and returns the next state. It is a total
// function: it never fails and never mutates its input; item slices are
// rebuilt on every change.
func Reduce(state models.CartState, action Action) models.CartState {
	switch a := action.(type) {
	case AddItem:
		for i, item := range state.Items {
			if item.ID != a.Item.ID {
				continue
			}
			items := make([]models.CartItem, len(state.Items))
			copy(items, state.Items)
			items[i].Quantity++
			// the stored unit price wins over the incoming one
			return models.CartState{
				Items: items,
				Total: state.Total + a.Item.Price,
			}
		}
		items := make([]models.CartItem, len(state.Items), len(state.Items)+1)
		copy(items, state.Items)
		items = append(items, a.Item)
		return models.CartState{
			Items: items,
			Total: state.Total + a.Item.Price,
		}

	case RemoveItem:
		idx := -1
		for i, item := range state.Items {
			if item.ID == a.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return state
		}
		removed := state.Items[idx]
		items := make([]models.CartItem, 0, len(state.Items)-1)
		items = append(items, state.Items[:idx]...)
		items = append(items, state.Items[idx+1:]...)
		return models.CartState{
			Items: items,
			Total: state.Total - removed.Price*int64(removed.Quantity),
		}

	case UpdateQuantity:
		idx := -1
		for i, item := range state.Items {
			if item.ID == a.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return state
		}
		items := make([]models.CartItem, len(state.Items))
		copy(items, state.Items)
		old := items[idx]
		items[idx].Quantity = a.Quantity
		return models.CartState{
			Items: items,
			Total: state.Total - old.Price*int64(old.Quantity) + old.Price*int64(a.Quantity),
		}

	case Clear:
		return models.CartState{Items: []models.CartItem{}}

	default:
		return state
	}
}

// Subscriber observes every state change of any user's cart.
type Subscriber func(userID int, state models.CartState)

// Store keeps the authoritative cart of each user. Dispatches on the same
// user are serialized; readers always see a complete state because Reduce
// builds a fresh value instead of mutating in place.
type Store struct {
	mu    sync.RWMutex
	carts map[int]models.CartState

	subMu sync.RWMutex
	subs  []Subscriber
}

func NewStore() *Store {
	return &Store{carts: make(map[int]models.CartState)}
}

// Subscribe registers fn to run after every dispatch. Subscribers run
// outside the store lock and must not dispatch back synchronously.
func (s *Store) Subscribe(fn Subscriber) {
	s.subMu.Lock()
	s.subs = append(s.subs, fn)
	s.subMu.Unlock()
}

// Dispatch applies action to the user's cart and returns the new state.
func (s *Store) Dispatch(userID int, action Action) models.CartState {
	s.mu.Lock()
	next := Reduce(s.carts[userID], action)
	s.carts[userID] = next
	s.mu.Unlock()

	s.subMu.RLock()
	subs := s.subs
	s.subMu.RUnlock()
	for _, fn := range subs {
		fn(userID, next)
	}
	return next
}

// Snapshot returns the user's cart as of now. The returned value is safe
// to hold across the checkout call; later dispatches never touch it.
func (s *Store) Snapshot(userID int) models.CartState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.carts[userID]
}
