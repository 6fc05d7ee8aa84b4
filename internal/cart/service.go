package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/stock"
)

var (
	ErrSessionRequired      = errors.New("cart: session id is required")
	ErrProductUnavailable   = errors.New("cart: product is unavailable")
	ErrComplementNotAllowed = errors.New("cart: complement not offered for this product")
	ErrLineNotFound         = errors.New("cart: line not found")
)

// Catalog is the product lookup the cart needs.
type Catalog interface {
	FindProduct(ctx context.Context, id string) (models.Product, error)
	ComplementsFor(ctx context.Context, category models.Category) ([]models.Product, error)
}

// ComplementPick is a complement chosen when adding a configured line.
type ComplementPick struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"gte=0"`
}

const lockStripes = 64

// Service applies cart operations to the state stored for a session.
// Commands for the same session are serialised on one of a fixed set of
// mutexes picked by hashing the session id.
type Service struct {
	repo    Repository
	catalog Catalog
	logger  *zap.Logger
	locks   [lockStripes]sync.Mutex
}

func NewService(repo Repository, catalog Catalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, catalog: catalog, logger: logger.Named("cart")}
}

func (s *Service) Get(ctx context.Context, sessionID string) (State, error) {
	if strings.TrimSpace(sessionID) == "" {
		return State{}, ErrSessionRequired
	}
	return s.repo.Load(ctx, sessionID)
}

func (s *Service) AddItem(ctx context.Context, sessionID, productID string) (State, error) {
	product, err := s.orderableProduct(ctx, productID)
	if err != nil {
		return State{}, err
	}
	return s.update(ctx, sessionID, func(cur State) (State, error) {
		next := cur.AddItem(product)
		if err := checkHeld(next, product); err != nil {
			return State{}, err
		}
		return next, nil
	})
}

func (s *Service) AddConfigured(ctx context.Context, sessionID, productID string, picks []ComplementPick, observation string) (State, error) {
	product, err := s.orderableProduct(ctx, productID)
	if err != nil {
		return State{}, err
	}
	complements, err := s.resolveComplements(ctx, product, picks)
	if err != nil {
		return State{}, err
	}
	return s.update(ctx, sessionID, func(cur State) (State, error) {
		next := cur.AddItemWithComplements(product, complements, strings.TrimSpace(observation))
		held := []models.Product{product}
		for _, c := range complements {
			held = append(held, c.Product)
		}
		if err := checkHeld(next, held...); err != nil {
			return State{}, err
		}
		return next, nil
	})
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, productID string) (State, error) {
	return s.update(ctx, sessionID, func(cur State) (State, error) {
		return cur.RemoveItem(productID), nil
	})
}

func (s *Service) UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (State, error) {
	return s.update(ctx, sessionID, func(cur State) (State, error) {
		line, ok := cur.Line(lineID)
		if !ok {
			return State{}, ErrLineNotFound
		}
		next := cur.UpdateQuantity(lineID, quantity)
		if quantity > line.Quantity {
			held := []models.Product{line.Product}
			for _, c := range line.Complements {
				held = append(held, c.Product)
			}
			if err := checkHeld(next, held...); err != nil {
				return State{}, err
			}
		}
		return next, nil
	})
}

func (s *Service) UpdateObservation(ctx context.Context, sessionID, lineID, text string) (State, error) {
	return s.update(ctx, sessionID, func(cur State) (State, error) {
		if _, ok := cur.Line(lineID); !ok {
			return State{}, ErrLineNotFound
		}
		return cur.UpdateObservation(lineID, strings.TrimSpace(text)), nil
	})
}

func (s *Service) SetDeliveryMode(ctx context.Context, sessionID string, mode models.DeliveryMode) (State, error) {
	return s.update(ctx, sessionID, func(cur State) (State, error) {
		return cur.SetDeliveryMode(mode), nil
	})
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrSessionRequired
	}
	unlock := s.lock(sessionID)
	defer unlock()
	return s.repo.Delete(ctx, sessionID)
}

func (s *Service) update(ctx context.Context, sessionID string, apply func(State) (State, error)) (State, error) {
	if strings.TrimSpace(sessionID) == "" {
		return State{}, ErrSessionRequired
	}
	unlock := s.lock(sessionID)
	defer unlock()

	cur, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	next, err := apply(cur)
	if err != nil {
		return State{}, err
	}
	if err := s.repo.Save(ctx, sessionID, next); err != nil {
		s.logger.Error("cart save failed", zap.String("session", sessionID), zap.Error(err))
		return State{}, err
	}
	return next, nil
}

func (s *Service) lock(sessionID string) func() {
	mu := &s.locks[xxhash.Sum64String(sessionID)%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// checkHeld compares the total the cart holds of each product, over every
// line and complement, with the product's stock.
func checkHeld(next State, products ...models.Product) error {
	for _, p := range products {
		if err := stock.CheckProduct(p, stock.Requested(next.Lines, p.ID)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) orderableProduct(ctx context.Context, productID string) (models.Product, error) {
	product, err := s.catalog.FindProduct(ctx, strings.TrimSpace(productID))
	if err != nil {
		return models.Product{}, err
	}
	if !product.Orderable() {
		return models.Product{}, fmt.Errorf("%w: %s", ErrProductUnavailable, product.Name)
	}
	return product, nil
}

func (s *Service) resolveComplements(ctx context.Context, product models.Product, picks []ComplementPick) ([]models.ComplementLine, error) {
	if len(picks) == 0 {
		return nil, nil
	}
	offered, err := s.catalog.ComplementsFor(ctx, product.Category)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Product, len(offered))
	for _, p := range offered {
		byID[p.ID] = p
	}

	// Picks for the same complement are merged into one entry.
	out := make([]models.ComplementLine, 0, len(picks))
	index := make(map[string]int)
	for _, pick := range picks {
		if pick.Quantity <= 0 {
			continue
		}
		c, ok := byID[pick.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrComplementNotAllowed, pick.ProductID)
		}
		if i, seen := index[c.ID]; seen {
			out[i].Quantity += pick.Quantity
			continue
		}
		index[c.ID] = len(out)
		out = append(out, models.ComplementLine{Product: c, Quantity: pick.Quantity})
	}
	return out, nil
}
