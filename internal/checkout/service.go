// Package checkout turns a priced cart and a payment nonce into a recorded order.
//
// A checkout intent is written before the gateway is called, so a crash between
// capture and order persistence leaves a pending intent that SweepOrphans flags.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecommerce_backend/internal/domain"
	"ecommerce_backend/internal/metrics"
	"ecommerce_backend/internal/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrMissingPrice     = errors.New("cart item price is required")
	ErrNegativePrice    = errors.New("cart item price must not be negative")
	ErrMissingNonce     = errors.New("payment nonce is required")
	ErrNonceReused      = errors.New("payment nonce already used")
	ErrOrderNotRecorded = errors.New("payment captured but order was not recorded")
	ErrIntentNotPending = errors.New("checkout intent is no longer pending")
)

// Recorder persists intents and orders
type Recorder interface {
	CreateIntent(ctx context.Context, intent *domain.CheckoutIntent) error
	FailIntent(ctx context.Context, intentID, reason, transactionID string) error
	// CompleteOrder creates the order and completes its intent atomically
	CompleteOrder(ctx context.Context, intentID string, order *domain.Order) error
	StalePending(ctx context.Context, before time.Time) ([]domain.CheckoutIntent, error)
	MarkOrphaned(ctx context.Context, intentID string) (bool, error)
}

// NonceGuard lets each payment nonce through once
type NonceGuard interface {
	Claim(ctx context.Context, nonce string) (bool, error)
}

// Service orchestrates checkout
type Service struct {
	gateway  payment.Gateway
	recorder Recorder
	nonces   NonceGuard // Optional
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewService wires the orchestrator. nonces and m may be nil.
func NewService(gw payment.Gateway, rec Recorder, nonces NonceGuard, m *metrics.Metrics) *Service {
	return &Service{
		gateway:  gw,
		recorder: rec,
		nonces:   nonces,
		metrics:  m,
		now:      time.Now,
	}
}

// Checkout charges the cart total and records the order.
// No order exists unless the gateway reported the sale successful.
func (s *Service) Checkout(ctx context.Context, buyerID uint, cart []domain.CartItem, nonce string) (*domain.Order, error) {
	lines, total, err := validate(cart, nonce)
	if err != nil {
		s.observe("rejected")
		return nil, err
	}

	if s.nonces != nil {
		ok, err := s.nonces.Claim(ctx, nonce)
		if err != nil {
			s.observe("error")
			return nil, fmt.Errorf("claim nonce: %w", err)
		}
		if !ok {
			s.observe("nonce_reused")
			return nil, ErrNonceReused
		}
	}

	intent := &domain.CheckoutIntent{
		ID:      uuid.NewString(),
		BuyerID: buyerID,
		Items:   lines,
		Amount:  total,
		Status:  domain.IntentPending,
	}
	if err := s.recorder.CreateIntent(ctx, intent); err != nil {
		s.observe("error")
		return nil, fmt.Errorf("create checkout intent: %w", err)
	}

	log := logrus.WithFields(logrus.Fields{
		"intent_id": intent.ID,
		"buyer_id":  buyerID,
		"amount":    total.String(),
	})

	res, err := s.gateway.SubmitSale(ctx, total, nonce, intent.ID)
	if err == nil && (res == nil || !res.Success) {
		err = payment.ErrDeclined
	}
	if err != nil {
		reason := failureReason(err)
		txID := ""
		if res != nil {
			txID = res.TransactionID
		}
		if ferr := s.recorder.FailIntent(ctx, intent.ID, reason, txID); ferr != nil {
			log.WithField("error", ferr).Error("failed to mark checkout intent failed")
		}
		log.WithFields(logrus.Fields{"reason": reason, "error": err}).Warn("sale failed")
		s.observe(reason)
		return nil, err
	}

	order := &domain.Order{
		BuyerID:  buyerID,
		Items:    lines,
		Total:    total,
		Status:   domain.OrderStatusNotProcessed,
		IntentID: intent.ID,
		Payment: domain.PaymentResult{
			Success:           res.Success,
			TransactionID:     res.TransactionID,
			Status:            res.Status,
			Amount:            res.Amount,
			ProcessorResponse: res.ProcessorResponse,
			Raw:               res.Raw,
		},
	}
	if err := s.recorder.CompleteOrder(ctx, intent.ID, order); err != nil {
		// Money moved but nothing was recorded; the intent stays pending for the sweep
		log.WithFields(logrus.Fields{
			"transaction_id": res.TransactionID,
			"error":          err,
		}).Error("payment captured but order not recorded")
		s.observe("not_recorded")
		return nil, fmt.Errorf("%w: %v", ErrOrderNotRecorded, err)
	}

	log.WithFields(logrus.Fields{
		"order_id":       order.ID,
		"transaction_id": res.TransactionID,
	}).Info("order recorded")
	s.observe("success")
	if s.metrics != nil {
		s.metrics.CheckoutAmount.Add(total.InexactFloat64())
	}
	return order, nil
}

// SweepOrphans flags pending intents older than olderThan as orphaned and
// returns how many were flagged. It does not contact the gateway.
func (s *Service) SweepOrphans(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := s.recorder.StalePending(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("list stale intents: %w", err)
	}
	flagged := 0
	for _, in := range stale {
		ok, err := s.recorder.MarkOrphaned(ctx, in.ID)
		if err != nil {
			return flagged, fmt.Errorf("mark intent %s orphaned: %w", in.ID, err)
		}
		if !ok {
			continue // Completed or failed since it was listed
		}
		flagged++
		logrus.WithFields(logrus.Fields{
			"intent_id":  in.ID,
			"buyer_id":   in.BuyerID,
			"amount":     in.Amount.String(),
			"created_at": in.CreatedAt,
		}).Error("orphaned checkout intent needs manual review")
	}
	if s.metrics != nil && flagged > 0 {
		s.metrics.OrphanedIntents.Add(float64(flagged))
	}
	return flagged, nil
}

// RunSweeper sweeps every interval until ctx is cancelled
func (s *Service) RunSweeper(ctx context.Context, interval, olderThan time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOrphans(ctx, olderThan); err != nil && ctx.Err() == nil {
				logrus.WithError(err).Error("orphan sweep failed")
			}
		}
	}
}

// validate checks the cart and nonce and returns the priced snapshot and its exact total
func validate(cart []domain.CartItem, nonce string) ([]domain.LineItem, decimal.Decimal, error) {
	if len(cart) == 0 {
		return nil, decimal.Zero, ErrEmptyCart
	}
	lines := make([]domain.LineItem, len(cart))
	prices := make([]decimal.Decimal, len(cart))
	for i, item := range cart {
		if item.Price == nil {
			return nil, decimal.Zero, fmt.Errorf("%w: item %d", ErrMissingPrice, i)
		}
		if item.Price.IsNegative() {
			return nil, decimal.Zero, fmt.Errorf("%w: item %d", ErrNegativePrice, i)
		}
		prices[i] = *item.Price
		lines[i] = domain.LineItem{ProductID: item.ProductID, Name: item.Name, Price: *item.Price}
	}
	if nonce == "" {
		return nil, decimal.Zero, ErrMissingNonce
	}
	total := decimal.Sum(prices[0], prices[1:]...)
	if !total.IsPositive() {
		return nil, decimal.Zero, payment.ErrInvalidAmount
	}
	return lines, total, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, payment.ErrDeclined):
		return "declined"
	case errors.Is(err, payment.ErrInvalidNonce):
		return "invalid_nonce"
	case errors.Is(err, payment.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, payment.ErrRejected):
		return "rejected_by_gateway"
	default:
		return "unavailable"
	}
}

func (s *Service) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.CheckoutTotal.WithLabelValues(outcome).Inc()
	}
}
