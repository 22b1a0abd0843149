package checkout

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgstripe "github.com/meridianprocure/storefront-backend/pkg/stripe"
)

// StripeCheckoutClient exposes the subset of Stripe operations the checkout
// service needs, so the service can be tested with a stub.
type StripeCheckoutClient interface {
	CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	GetSession(ctx context.Context, id string) (*stripe.CheckoutSession, error)
}

type stripeClientWrapper struct {
	api *pkgstripe.Client
}

// NewStripeClient wraps the initialized Stripe client behind the service's
// interface.
func NewStripeClient(api *pkgstripe.Client) StripeCheckoutClient {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{api: api}
}

func (w *stripeClientWrapper) CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return w.api.CreateCheckoutSession(ctx, params)
}

func (w *stripeClientWrapper) GetSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	return w.api.GetCheckoutSession(ctx, id)
}
