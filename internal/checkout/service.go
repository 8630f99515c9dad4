package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/vetpos/internal/cart"
	"github.com/noah-isme/vetpos/internal/obs"
	"github.com/noah-isme/vetpos/internal/pricing"
)

// SaleSink persists completed sales.
type SaleSink interface {
	RecordSale(ctx context.Context, sale Sale) error
}

// ReceiptQueue delivers receipts to customers out of band.
type ReceiptQueue interface {
	EnqueueReceipt(ctx context.Context, to string, receipt Receipt) error
}

// Input is the checkout request sent by the till.
type Input struct {
	Method                      string         `json:"method" validate:"required"`
	AmountTendered              *pricing.Money `json:"amountTendered"`
	HasRestrictedItemCredential bool           `json:"hasRestrictedItemCredential"`
	CustomerEmail               string         `json:"customerEmail" validate:"omitempty,email"`
}

// Service completes sales for cart sessions.
type Service struct {
	Carts     *cart.Service
	Sales     SaleSink
	Receipts  ReceiptQueue
	StoreName string
	Currency  string
	Now       func() time.Time
	Logger    zerolog.Logger
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Complete checks out the cart. The sale is recorded before the cart is
// saved as finalized; the session is then deleted so the cart cannot be reused.
// Once the sale is recorded it stands: a failure to save the finalized cart is
// logged and the session is still deleted.
func (s *Service) Complete(ctx context.Context, cartID, cashierID string, in Input) (Receipt, error) {
	if s == nil || s.Carts == nil || s.Sales == nil {
		return Receipt{}, errors.New("checkout service not configured")
	}
	ctx, span := otel.Tracer("vetpos/checkout").Start(ctx, "checkout.complete")
	defer span.End()
	span.SetAttributes(attribute.String("cart.id", cartID), attribute.String("payment.method", in.Method))

	method, err := ParseMethod(in.Method)
	if err != nil {
		s.reject(span, cartID, in.Method, err)
		return Receipt{}, err
	}
	req := Request{
		Method:                      method,
		AmountTendered:              in.AmountTendered,
		HasRestrictedItemCredential: in.HasRestrictedItemCredential,
	}

	var (
		sale     Sale
		recorded bool
	)
	_, err = s.Carts.Mutate(ctx, cartID, "checkout", func(ctx context.Context, c *cart.Cart) error {
		totals, err := s.Carts.Price(ctx, c)
		if err != nil {
			return err
		}
		record, err := Checkout(c, totals, req)
		if err != nil {
			return err
		}
		sale = NewSale(uuid.NewString(), c, totals, record, s.now())
		sale.CashierID = cashierID
		sale.CustomerEmail = in.CustomerEmail
		if err := s.Sales.RecordSale(ctx, sale); err != nil {
			return fmt.Errorf("record sale: %w", err)
		}
		recorded = true
		return nil
	})
	switch {
	case err != nil && recorded:
		s.Logger.Warn().Err(err).Str("cart_id", cartID).Str("sale_id", sale.ID).Msg("cart_finalize_save_failed")
	case err != nil:
		s.reject(span, cartID, string(method), err)
		return Receipt{}, err
	}

	if err := s.Carts.Sessions.Delete(ctx, cartID); err != nil {
		s.Logger.Warn().Err(err).Str("cart_id", cartID).Msg("cart_session_delete_failed")
	}
	receipt := Receipt{Sale: sale, StoreName: s.StoreName, Currency: s.Currency}
	if in.CustomerEmail != "" && s.Receipts != nil {
		if err := s.Receipts.EnqueueReceipt(ctx, in.CustomerEmail, receipt); err != nil {
			s.Logger.Warn().Err(err).Str("sale_id", sale.ID).Msg("receipt_enqueue_failed")
		}
	}

	total, _ := sale.Total.Float64()
	if obs.CheckoutTotal != nil {
		obs.CheckoutTotal.WithLabelValues(string(method), "ok").Inc()
	}
	if obs.SaleAmount != nil {
		obs.SaleAmount.WithLabelValues(string(method)).Observe(total)
	}
	span.SetAttributes(attribute.String("sale.id", sale.ID), attribute.Float64("sale.total", total))
	s.Logger.Info().
		Str("sale_id", sale.ID).
		Str("cart_id", cartID).
		Str("cashier_id", cashierID).
		Str("method", string(method)).
		Str("total", sale.Total.StringFixed(2)).
		Msg("sale_completed")
	return receipt, nil
}

func (s *Service) reject(span trace.Span, cartID, method string, err error) {
	if method == "" {
		method = "unknown"
	}
	result := rejectionLabel(err)
	if obs.CheckoutTotal != nil {
		obs.CheckoutTotal.WithLabelValues(method, result).Inc()
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, result)
	s.Logger.Info().Err(err).Str("cart_id", cartID).Str("method", method).Str("reason", result).Msg("checkout_rejected")
}

func rejectionLabel(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrRestrictedItemBlocked):
		return "restricted_blocked"
	case errors.Is(err, ErrInsufficientPayment):
		return "insufficient_payment"
	case errors.Is(err, ErrUnsupportedMethod):
		return "unsupported_method"
	case errors.Is(err, cart.ErrAlreadyFinalized):
		return "finalized"
	case errors.Is(err, cart.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
