package stripewebhook

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/meridianprocure/storefront-backend/internal/orders"
	"github.com/meridianprocure/storefront-backend/pkg/db/models"
	"github.com/meridianprocure/storefront-backend/pkg/enums"
	pkgerrors "github.com/meridianprocure/storefront-backend/pkg/errors"
	"github.com/meridianprocure/storefront-backend/pkg/logger"
	"github.com/meridianprocure/storefront-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the webhook service.
type ServiceParams struct {
	Orders            *orders.Repository
	TransactionRunner txRunner
	Logger            *logger.Logger
	Metrics           *metrics.StorefrontMetrics
}

// Service applies the post-purchase side effects for Stripe events.
type Service struct {
	orders   *orders.Repository
	txRunner txRunner
	logg     *logger.Logger
	metrics  *metrics.StorefrontMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		orders:   params.Orders,
		txRunner: params.TransactionRunner,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// HandleEvent routes a verified Stripe event. Unknown event types are acked
// without side effects.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		session, err := decodeSession(event)
		if err != nil {
			return err
		}
		return s.settleCompleted(ctx, session)
	case stripe.EventTypeCheckoutSessionExpired:
		session, err := decodeSession(event)
		if err != nil {
			return err
		}
		return s.markExpired(ctx, session)
	case stripe.EventTypePaymentIntentPaymentFailed:
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "event_id", event.ID), "payment failed event received")
		}
		s.metrics.IncWebhookEvent(string(event.Type), "logged")
		return nil
	default:
		s.metrics.IncWebhookEvent(string(event.Type), "ignored")
		return nil
	}
}

func decodeSession(event *stripe.Event) (*stripe.CheckoutSession, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
	}
	return &session, nil
}

// settleCompleted marks the order paid and records the conversion in one
// transaction so a crash cannot leave a paid order without its conversion row.
func (s *Service) settleCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	if session == nil || session.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id required")
	}

	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)

		order, findErr := repo.FindByStripeSessionID(ctx, session.ID)
		if findErr != nil {
			if typed := pkgerrors.As(findErr); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
				return findErr
			}
		}

		if order != nil {
			if markErr := repo.MarkPaid(ctx, session.ID, time.Now().UTC()); markErr != nil {
				return markErr
			}
		} else if s.logg != nil {
			// A webhook can arrive for a session we never recorded (e.g. the
			// pending insert failed). The conversion is still recorded.
			s.logg.Warn(s.logg.WithField(ctx, "stripe_session_id", session.ID), "completed session has no pending order")
		}

		conversion := &models.Conversion{
			StripeSessionID: session.ID,
			OrderType:       metadataOrDefault(session.Metadata, "orderType", "online_purchase"),
			Location:        metadataOrDefault(session.Metadata, "customerLocation", ""),
			TotalPallets:    metadataInt(session.Metadata, "totalPallets"),
			AmountCents:     session.AmountTotal,
			Currency:        string(session.Currency),
			GCLID:           metadataOrDefault(session.Metadata, "gclid", ""),
			// Processed flips when the row is exported for ad attribution.
			Processed: false,
		}
		if order != nil {
			id := order.ID
			conversion.OrderID = &id
		}
		return repo.CreateConversion(ctx, conversion)
	})
	if err != nil {
		s.metrics.IncWebhookEvent(string(stripe.EventTypeCheckoutSessionCompleted), "error")
		return err
	}

	s.metrics.IncWebhookEvent(string(stripe.EventTypeCheckoutSessionCompleted), "ok")
	if s.logg != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{
			"stripe_session_id": session.ID,
			"amount_cents":      session.AmountTotal,
			"location":          metadataOrDefault(session.Metadata, "customerLocation", ""),
		})
		s.logg.Info(lctx, "checkout session settled")
	}
	return nil
}

func (s *Service) markExpired(ctx context.Context, session *stripe.CheckoutSession) error {
	if session == nil || session.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id required")
	}

	err := s.orders.UpdateStatus(ctx, session.ID, enums.OrderStatusExpired)
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
		// Nothing to expire; ack so Stripe stops retrying.
		err = nil
	}
	if err != nil {
		s.metrics.IncWebhookEvent(string(stripe.EventTypeCheckoutSessionExpired), "error")
		return err
	}
	s.metrics.IncWebhookEvent(string(stripe.EventTypeCheckoutSessionExpired), "ok")
	return nil
}

func metadataOrDefault(meta map[string]string, key, fallback string) string {
	if meta != nil && meta[key] != "" {
		return meta[key]
	}
	return fallback
}

func metadataInt(meta map[string]string, key string) int {
	if meta == nil {
		return 0
	}
	value, err := strconv.Atoi(meta[key])
	if err != nil {
		return 0
	}
	return value
}
