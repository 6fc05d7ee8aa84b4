package orders

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/notify"
)

var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusFulfilled, models.StatusCancelled},
}

// CanTransition reports whether an order in status from may move to to.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusChange is the result of a successful transition.
type StatusChange struct {
	Order models.Order       `json:"order"`
	From  models.OrderStatus `json:"from"`
	// NotificationURL opens the customer chat when the transition notifies.
	NotificationURL string `json:"notificationUrl,omitempty"`
}

type StatusService struct {
	orders   OrderStore
	notifier Notifier
	now      func() time.Time
	logger   *zap.Logger
}

func NewStatusService(orderStore OrderStore, notifier Notifier, logger *zap.Logger) *StatusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusService{
		orders:   orderStore,
		notifier: notifier,
		now:      time.Now,
		logger:   logger.Named("order_status"),
	}
}

// Transition persists the move to target and then notifies the customer for
// confirmed and fulfilled. A failed update leaves the order untouched.
func (s *StatusService) Transition(ctx context.Context, id string, target models.OrderStatus) (StatusChange, error) {
	order, err := s.orders.FindOrder(ctx, id)
	if err != nil {
		return StatusChange{}, err
	}
	from := order.Status
	if !CanTransition(from, target) {
		return StatusChange{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, target)
	}

	at := s.now().UTC()
	ok, err := s.orders.UpdateOrderStatus(ctx, id, from, target, at)
	if err != nil {
		s.logger.Error("status update failed", zap.String("orderId", id), zap.String("to", string(target)), zap.Error(err))
		return StatusChange{}, fmt.Errorf("update order status: %w", err)
	}
	if !ok {
		return StatusChange{}, fmt.Errorf("%w: order %s is no longer %s", ErrStatusConflict, id, from)
	}
	order.Status = target
	order.UpdatedAt = at

	change := StatusChange{Order: order, From: from}
	if text, notifies := customerMessage(order); notifies {
		link, err := s.notifier.Notify(ctx, order.Customer.Phone, text)
		if err != nil {
			s.logger.Warn("customer notification failed", zap.String("orderId", id), zap.Error(err))
		}
		change.NotificationURL = link
	}
	s.logger.Info("order status changed", zap.String("orderId", id), zap.String("from", string(from)), zap.String("to", string(target)))
	return change, nil
}

func customerMessage(o models.Order) (string, bool) {
	switch o.Status {
	case models.StatusConfirmed:
		return notify.ConfirmedMessage(o), true
	case models.StatusFulfilled:
		return notify.ReadyMessage(o), true
	default:
		return "", false
	}
}
