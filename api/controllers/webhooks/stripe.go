package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/meridianprocure/storefront-backend/api/responses"
	pkgerrors "github.com/meridianprocure/storefront-backend/pkg/errors"
	"github.com/meridianprocure/storefront-backend/pkg/logger"
	"github.com/meridianprocure/storefront-backend/pkg/metrics"
)

type StripeWebhookService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

type stripeWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type stripeClient interface {
	SigningSecret() string
}

// StripeWebhook verifies, deduplicates and dispatches Stripe checkout events.
func StripeWebhook(svc StripeWebhookService, client stripeClient, guard stripeWebhookGuard, mets *metrics.StorefrontMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || client == nil || guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook pipeline unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get("Stripe-Signature")
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "stripe signature missing"))
			return
		}

		event, err := webhook.ConstructEvent(payload, sigHeader, client.SigningSecret())
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "verify signature"))
			return
		}

		alreadyProcessed, err := guard.CheckAndMark(ctx, event.ID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
			return
		}
		if alreadyProcessed {
			mets.IncWebhookDuplicate()
			responses.WriteSuccess(w, map[string]string{"status": "duplicate"})
			return
		}

		if err := svc.HandleEvent(ctx, &event); err != nil {
			// Unmark so Stripe's retry can take another pass.
			_ = guard.Delete(ctx, event.ID)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "received"})
	}
}
