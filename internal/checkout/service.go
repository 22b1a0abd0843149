package checkout

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/meridianprocure/storefront-backend/internal/cart"
	"github.com/meridianprocure/storefront-backend/internal/locations"
	"github.com/meridianprocure/storefront-backend/internal/orders"
	"github.com/meridianprocure/storefront-backend/pkg/db/models"
	pkgerrors "github.com/meridianprocure/storefront-backend/pkg/errors"
	"github.com/meridianprocure/storefront-backend/pkg/logger"
	"github.com/meridianprocure/storefront-backend/pkg/metrics"
)

const (
	currencyUSD       = "usd"
	orderTypeOnline   = "online_purchase"
	shippingLineName  = "Shipping Fee"
	shippingLineDesc  = "Delivery fee for orders under 550 pallets"
	companyFieldKey   = "company_name"
	companyFieldLabel = "Company Name"

	shippingAddressMessage = "Please provide the delivery address for your pallet order. Our team will coordinate delivery details with you after purchase."
	submitMessage          = "Questions? Call us at 1-800-PALLETS or email info@meridianprocure.com. We'll process your order and contact you within 24 hours to confirm delivery details."
	tosMessage             = "By completing your purchase, you agree to our terms of service and delivery policies."
)

// CustomerContext carries the optional customer hints sent with a checkout.
type CustomerContext struct {
	Email string
	GCLID string
}

// Redirect is the result of a successful session creation.
type Redirect struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// SessionData is the success-page readback of a checkout session.
type SessionData struct {
	ID               string  `json:"id"`
	PaymentStatus    string  `json:"paymentStatus"`
	Amount           string  `json:"amount"`
	Currency         string  `json:"currency"`
	CustomerEmail    *string `json:"customerEmail"`
	CustomerName     *string `json:"customerName"`
	CustomerPhone    *string `json:"customerPhone"`
	GCLID            *string `json:"gclid"`
	CustomerLocation *string `json:"customerLocation"`
	TotalPallets     *string `json:"totalPallets"`
	OrderType        *string `json:"orderType"`
	CreatedAt        string  `json:"createdAt"`
	Success          bool    `json:"success"`
}

// Service builds and creates Stripe Checkout sessions from carts.
type Service interface {
	Execute(ctx context.Context, cartSessionID string, customer CustomerContext) (*Redirect, error)
	ReadSession(ctx context.Context, stripeSessionID string) (*SessionData, error)
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Carts         *cart.Store
	Stripe        StripeCheckoutClient
	Orders        *orders.Repository
	Logger        *logger.Logger
	Metrics       *metrics.StorefrontMetrics
	PublicBaseURL string
	SuccessPath   string
	CancelPath    string
}

type service struct {
	carts       *cart.Store
	stripeAPI   StripeCheckoutClient
	orders      *orders.Repository
	logg        *logger.Logger
	metrics     *metrics.StorefrontMetrics
	baseURL     string
	successPath string
	cancelPath  string
}

// NewService builds a checkout service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if params.Stripe == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	if strings.TrimSpace(params.PublicBaseURL) == "" {
		return nil, fmt.Errorf("public base url required")
	}
	successPath := params.SuccessPath
	if successPath == "" {
		successPath = "/checkout/success"
	}
	cancelPath := params.CancelPath
	if cancelPath == "" {
		cancelPath = "/buy-now"
	}
	return &service{
		carts:       params.Carts,
		stripeAPI:   params.Stripe,
		orders:      params.Orders,
		logg:        params.Logger,
		metrics:     params.Metrics,
		baseURL:     strings.TrimRight(params.PublicBaseURL, "/"),
		successPath: successPath,
		cancelPath:  cancelPath,
	}, nil
}

// Execute assembles the session request from the cart and creates the Stripe
// Checkout session. On success the cart is cleared and the redirect returned;
// any Stripe failure leaves the cart intact for a manual retry.
func (s *service) Execute(ctx context.Context, cartSessionID string, customer CustomerContext) (*Redirect, error) {
	// Placeholder quantities resolve to the minimum before totals are trusted.
	s.carts.CommitPending(cartSessionID)

	if err := s.carts.BeginCheckout(cartSessionID); err != nil {
		s.metrics.IncCheckoutFailed(string(pkgerrors.As(err).Code()))
		return nil, err
	}

	snapshot := s.carts.Snapshot(cartSessionID)
	params := s.buildSessionParams(snapshot, customer)

	created, err := s.stripeAPI.CreateSession(ctx, params)
	if err != nil {
		s.carts.EndCheckout(cartSessionID, false)
		s.metrics.IncCheckoutFailed("stripe")
		if s.logg != nil {
			s.logg.Error(s.logg.WithCartSession(ctx, cartSessionID), "checkout session creation failed", err)
		}
		// Surfaced verbatim so the storefront can show the processor's reason.
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, err.Error())
	}

	s.recordPendingOrder(ctx, snapshot, created)

	s.carts.EndCheckout(cartSessionID, true)
	s.metrics.IncCheckoutStarted(snapshot.Location)
	if s.logg != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{
			"cart_session_id":   cartSessionID,
			"stripe_session_id": created.ID,
			"total_units":       snapshot.Totals.TotalUnits,
		})
		s.logg.Info(lctx, "checkout session created")
	}

	return &Redirect{SessionID: created.ID, URL: created.URL}, nil
}

func (s *service) buildSessionParams(snapshot cart.Cart, customer CustomerContext) *stripe.CheckoutSessionParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(snapshot.Lines)+1)
	for _, line := range snapshot.Lines {
		category := line.Category
		if category == "" {
			category = "standard"
		}
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(line.Name),
			Metadata: map[string]string{
				"type":     "pallet",
				"category": category,
			},
		}
		if line.ImageURL != "" {
			productData.Images = stripe.StringSlice([]string{s.absoluteURL(line.ImageURL)})
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currencyUSD),
				ProductData: productData,
				UnitAmount:  stripe.Int64(line.UnitPriceCents()),
			},
			Quantity: stripe.Int64(int64(line.Units())),
		})
	}

	if snapshot.Totals.TotalUnits < cart.FreeShippingUnits {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currencyUSD),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(shippingLineName),
					Description: stripe.String(shippingLineDesc),
				},
				UnitAmount: stripe.Int64(cart.ShippingFeeCents),
			},
			Quantity: stripe.Int64(1),
		})
	}

	locationLabel := snapshot.Location
	if loc, ok := locations.BySlug(snapshot.Location); ok {
		locationLabel = loc.Label()
	}

	params := &stripe.CheckoutSessionParams{
		Mode:                     stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes:       stripe.StringSlice([]string{"card"}),
		LineItems:                lineItems,
		SuccessURL:               stripe.String(s.baseURL + s.successPath + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:                stripe.String(s.baseURL + s.cancelPath),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice([]string{"US"}),
		},
		CustomFields: []*stripe.CheckoutSessionCustomFieldParams{
			{
				Key: stripe.String(companyFieldKey),
				Label: &stripe.CheckoutSessionCustomFieldLabelParams{
					Type:   stripe.String("custom"),
					Custom: stripe.String(companyFieldLabel),
				},
				Type: stripe.String("text"),
				Text: &stripe.CheckoutSessionCustomFieldTextParams{
					MinimumLength: stripe.Int64(2),
					MaximumLength: stripe.Int64(100),
				},
				Optional: stripe.Bool(false),
			},
		},
		CustomText: &stripe.CheckoutSessionCustomTextParams{
			ShippingAddress: &stripe.CheckoutSessionCustomTextShippingAddressParams{
				Message: stripe.String(shippingAddressMessage),
			},
			Submit: &stripe.CheckoutSessionCustomTextSubmitParams{
				Message: stripe.String(submitMessage),
			},
			TermsOfServiceAcceptance: &stripe.CheckoutSessionCustomTextTermsOfServiceAcceptanceParams{
				Message: stripe.String(tosMessage),
			},
		},
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
		ConsentCollection: &stripe.CheckoutSessionConsentCollectionParams{
			TermsOfService: stripe.String(string(stripe.CheckoutSessionConsentCollectionTermsOfServiceRequired)),
		},
	}

	if email := strings.TrimSpace(customer.Email); email != "" {
		params.CustomerEmail = stripe.String(email)
	}

	params.AddMetadata("customerLocation", locationLabel)
	params.AddMetadata("totalPallets", strconv.Itoa(snapshot.Totals.TotalUnits))
	params.AddMetadata("orderType", orderTypeOnline)
	if gclid := strings.TrimSpace(customer.GCLID); gclid != "" {
		params.AddMetadata("gclid", gclid)
	}

	return params
}

// recordPendingOrder persists the order snapshot so the webhook can settle it
// later. A write failure is logged, not surfaced: the payment redirect must
// not depend on our bookkeeping.
func (s *service) recordPendingOrder(ctx context.Context, snapshot cart.Cart, created *stripe.CheckoutSession) {
	if s.orders == nil || created == nil {
		return
	}

	lines := make([]models.OrderLine, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		lines = append(lines, models.OrderLine{
			ProductID:      line.ProductID,
			Name:           line.Name,
			Category:       line.Category,
			UnitPriceCents: line.UnitPriceCents(),
			Quantity:       line.Units(),
		})
	}

	order := &models.Order{
		StripeSessionID: created.ID,
		CartSessionID:   snapshot.SessionID,
		Location:        snapshot.Location,
		TotalPallets:    snapshot.Totals.TotalUnits,
		SubtotalCents:   snapshot.Totals.SubtotalCents,
		ShippingCents:   snapshot.Totals.ShippingCents,
		TotalCents:      snapshot.Totals.TotalCents,
		Currency:        currencyUSD,
		Lines:           lines,
	}
	if email := strings.TrimSpace(sessionEmail(created)); email != "" {
		order.CustomerEmail = &email
	}

	if err := s.orders.Create(ctx, order); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "stripe_session_id", created.ID), "persisting pending order failed", err)
	}
}

func sessionEmail(created *stripe.CheckoutSession) string {
	if created == nil {
		return ""
	}
	if created.CustomerEmail != "" {
		return created.CustomerEmail
	}
	if created.CustomerDetails != nil {
		return created.CustomerDetails.Email
	}
	return ""
}

// ReadSession retrieves a checkout session for the success page.
func (s *service) ReadSession(ctx context.Context, stripeSessionID string) (*SessionData, error) {
	stripeSessionID = strings.TrimSpace(stripeSessionID)
	if stripeSessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session_id is required")
	}

	sess, err := s.stripeAPI.GetSession(ctx, stripeSessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retrieving checkout session")
	}
	if sess == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("session %q not found", stripeSessionID))
	}

	data := &SessionData{
		ID:            sess.ID,
		PaymentStatus: string(sess.PaymentStatus),
		Amount:        cart.FormatCents(sess.AmountTotal),
		Currency:      strings.ToUpper(string(sess.Currency)),
		CreatedAt:     time.Unix(sess.Created, 0).UTC().Format(time.RFC3339),
		Success:       sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}

	if email := sessionEmail(sess); email != "" {
		data.CustomerEmail = &email
	}
	if sess.CustomerDetails != nil {
		if sess.CustomerDetails.Name != "" {
			name := sess.CustomerDetails.Name
			data.CustomerName = &name
		}
		if sess.CustomerDetails.Phone != "" {
			phone := sess.CustomerDetails.Phone
			data.CustomerPhone = &phone
		}
	}

	data.GCLID = metadataValue(sess.Metadata, "gclid")
	data.CustomerLocation = metadataValue(sess.Metadata, "customerLocation")
	data.TotalPallets = metadataValue(sess.Metadata, "totalPallets")
	data.OrderType = metadataValue(sess.Metadata, "orderType")

	return data, nil
}

// absoluteURL resolves a storefront-relative image path against the public
// origin; absolute URLs pass through untouched.
func (s *service) absoluteURL(ref string) string {
	if strings.HasPrefix(ref, "/") {
		return s.baseURL + ref
	}
	return ref
}

func metadataValue(meta map[string]string, key string) *string {
	if meta == nil {
		return nil
	}
	if value, ok := meta[key]; ok && value != "" {
		return &value
	}
	return nil
}
