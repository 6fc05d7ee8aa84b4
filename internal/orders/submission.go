package orders

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/stock"
)

// Receipt is what a successful checkout returns to the client.
type Receipt struct {
	Order models.Order `json:"order"`
	// NotificationURL opens the business chat with the order message.
	NotificationURL string `json:"notificationUrl,omitempty"`
	Saved           bool   `json:"saved"`
	// StockFailures lists products whose decrement failed.
	StockFailures []string `json:"stockFailures,omitempty"`
}

type SubmitterConfig struct {
	BusinessPhone string
	// SoftFailPersistence keeps going after a failed order insert.
	SoftFailPersistence bool
}

// Submitter runs checkout: validate, check stock, build, persist, notify the
// business, decrement stock, clear the cart.
type Submitter struct {
	carts     Carts
	assembler *Assembler
	orders    OrderStore
	stock     StockStore
	notifier  Notifier
	cfg       SubmitterConfig
	logger    *zap.Logger
}

func NewSubmitter(carts Carts, assembler *Assembler, orderStore OrderStore, stockStore StockStore, notifier Notifier, cfg SubmitterConfig, logger *zap.Logger) *Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{
		carts:     carts,
		assembler: assembler,
		orders:    orderStore,
		stock:     stockStore,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger.Named("order"),
	}
}

func (s *Submitter) Submit(ctx context.Context, sessionID string, form Form) (Receipt, error) {
	state, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return Receipt{}, fmt.Errorf("load cart: %w", err)
	}

	if err := s.assembler.Validate(state, form); err != nil {
		return Receipt{}, err
	}
	if err := stock.CheckAvailability(state.Lines); err != nil {
		s.logger.Info("checkout blocked by stock", zap.String("session", sessionID), zap.Error(err))
		return Receipt{}, err
	}

	order := s.assembler.Build(state, form)
	receipt := Receipt{Order: order}
	log := s.logger.With(zap.String("orderId", order.ID))

	if err := s.orders.InsertOrder(ctx, order); err != nil {
		if !s.cfg.SoftFailPersistence {
			log.Error("order insert failed", zap.Error(err))
			return Receipt{}, fmt.Errorf("%w: %w", ErrOrderNotSaved, err)
		}
		log.Warn("order insert failed, continuing", zap.Error(err))
	} else {
		receipt.Saved = true
	}

	link, err := s.notifier.Notify(ctx, s.cfg.BusinessPhone, notify.NewOrderMessage(order))
	if err != nil {
		log.Warn("new order notification failed", zap.Error(err))
	}
	receipt.NotificationURL = link

	receipt.StockFailures = s.decrement(ctx, log, order)

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		log.Warn("cart clear failed", zap.String("session", sessionID), zap.Error(err))
	}

	log.Info("order placed",
		zap.String("total", order.Total.StringFixed(2)),
		zap.String("mode", string(order.Customer.DeliveryMode)),
		zap.Int("lines", len(order.Items)),
	)
	return receipt, nil
}

// decrement is best effort per product; a failure never undoes the others.
func (s *Submitter) decrement(ctx context.Context, log *zap.Logger, order models.Order) []string {
	var failed []string
	for _, d := range stock.PlanDecrements(order.Items) {
		remaining, err := s.stock.DecrementStock(ctx, d.ProductID, d.Quantity)
		if err != nil {
			log.Error("stock decrement failed",
				zap.String("productId", d.ProductID),
				zap.Int("quantity", d.Quantity),
				zap.Error(err),
			)
			failed = append(failed, d.ProductID)
			continue
		}
		log.Debug("stock decremented",
			zap.String("productId", d.ProductID),
			zap.Int("quantity", d.Quantity),
			zap.Int("remaining", remaining),
		)
	}
	return failed
}
