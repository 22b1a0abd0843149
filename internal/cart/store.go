package cart

import (
	"fmt"
	"sync"

	"github.com/meridianprocure/storefront-backend/internal/catalog"
	"github.com/meridianprocure/storefront-backend/internal/locations"
	pkgerrors "github.com/meridianprocure/storefront-backend/pkg/errors"
)

// Store owns every browsing session's cart. Sessions are keyed by the
// X-Cart-Session id and live in memory only; carts are disposable by design
// (a location change clears them anyway).
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	location string
	// epoch increments on every location change; a catalog fetch started
	// under an older epoch is discarded on arrival.
	epoch       uint64
	catalog     []catalog.Product
	lines       []Line
	checkingOut bool
}

// NewStore builds an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*session)}
}

func (s *Store) session(id string) *session {
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{}
		s.sessions[id] = sess
	}
	return sess
}

// SelectLocation activates a delivery location for the session. The cart and
// catalog are cleared immediately; the returned epoch must be passed back to
// InstallCatalog so a stale fetch cannot overwrite a newer selection.
func (s *Store) SelectLocation(sessionID, slug string) (uint64, error) {
	if !locations.IsValid(slug) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown location %q", slug))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sessionID)
	sess.location = slug
	sess.epoch++
	sess.lines = nil
	sess.catalog = nil
	return sess.epoch, nil
}

// InstallCatalog stores the fetched products for the session if the location
// epoch still matches. Returns false when the snapshot was discarded as stale.
func (s *Store) InstallCatalog(sessionID string, epoch uint64, products []catalog.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sessionID)
	if sess.epoch != epoch {
		return false
	}
	sess.catalog = products
	return true
}

// AddItem appends or accumulates a line for the product. The product must be
// in the session's current catalog so the price is captured from the active
// location's snapshot.
func (s *Store) AddItem(sessionID, productID string, quantity int) error {
	if err := validateAddQuantity(quantity); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sessionID)
	if sess.location == "" {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "select a delivery location first")
	}

	var product *catalog.Product
	for i := range sess.catalog {
		if sess.catalog[i].ID == productID {
			product = &sess.catalog[i]
			break
		}
	}
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %q is not available in %s", productID, sess.location))
	}

	for i := range sess.lines {
		if sess.lines[i].ProductID == productID {
			if sess.lines[i].PendingQuantity != nil {
				// The committed quantity is stale while an edit is pending;
				// the add supplies the whole quantity.
				sess.lines[i].Quantity = quantity
			} else {
				sess.lines[i].Quantity = combineQuantities(sess.lines[i].Quantity, quantity)
			}
			sess.lines[i].PendingQuantity = nil
			return nil
		}
	}

	sess.lines = append(sess.lines, Line{
		ProductID: product.ID,
		Name:      product.Name,
		ImageURL:  product.ImageURL,
		Category:  product.Category,
		UnitPrice: product.UnitPrice,
		Quantity:  quantity,
	})
	return nil
}

// UpdateQuantity applies a raw quantity edit to an existing line. See
// classifyQuantityEdit for the tolerance rules.
func (s *Store) UpdateQuantity(sessionID, productID, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sessionID)
	for i := range sess.lines {
		if sess.lines[i].ProductID != productID {
			continue
		}
		switch kind, qty := classifyQuantityEdit(raw); kind {
		case editPending:
			pending := raw
			sess.lines[i].PendingQuantity = &pending
		default:
			sess.lines[i].Quantity = qty
			sess.lines[i].PendingQuantity = nil
		}
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %q is not in the cart", productID))
}

// CommitPending resolves any transient placeholder to the minimum quantity.
// Called before totals are trusted for checkout.
func (s *Store) CommitPending(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sessionID)
	for i := range sess.lines {
		if sess.lines[i].PendingQuantity != nil {
			sess.lines[i].Quantity = MinOrderQty
			sess.lines[i].PendingQuantity = nil
		}
	}
}

// RemoveItem drops the line for the product. Removing an absent product is
// not an error.
func (s *Store) RemoveItem(sessionID, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sessionID)
	for i := range sess.lines {
		if sess.lines[i].ProductID == productID {
			sess.lines = append(sess.lines[:i], sess.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the session's cart, keeping the location and catalog.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sessionID)
	sess.lines = nil
}

// BeginCheckout flags the session as mid-checkout. A second call before
// EndCheckout fails, guarding against double submission.
func (s *Store) BeginCheckout(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sessionID)
	if sess.checkingOut {
		return pkgerrors.New(pkgerrors.CodeConflict, "checkout already in progress")
	}
	if len(sess.lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}
	sess.checkingOut = true
	return nil
}

// EndCheckout releases the in-progress flag. On success the cart is cleared.
func (s *Store) EndCheckout(sessionID string, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sessionID)
	sess.checkingOut = false
	if success {
		sess.lines = nil
	}
}

// Snapshot returns a copy of the session's cart with computed totals.
func (s *Store) Snapshot(sessionID string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sessionID)
	lines := make([]Line, len(sess.lines))
	copy(lines, sess.lines)
	cat := make([]catalog.Product, len(sess.catalog))
	copy(cat, sess.catalog)

	return Cart{
		SessionID: sessionID,
		Location:  sess.location,
		Lines:     lines,
		Catalog:   cat,
		Totals:    ComputeTotals(lines),
	}
}

// Drop discards the whole session. Used after a completed checkout readback.
func (s *Store) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
