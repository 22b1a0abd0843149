package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/meridianprocure/storefront-backend/api/middleware"
	"github.com/meridianprocure/storefront-backend/internal/cart"
	"github.com/meridianprocure/storefront-backend/internal/catalog"
	"github.com/meridianprocure/storefront-backend/internal/checkout"
	"github.com/meridianprocure/storefront-backend/internal/orders"
	"github.com/meridianprocure/storefront-backend/internal/quotes"
	stripewebhook "github.com/meridianprocure/storefront-backend/internal/webhooks/stripe"
	"github.com/meridianprocure/storefront-backend/pkg/config"
	"github.com/meridianprocure/storefront-backend/pkg/logger"
	pkgredis "github.com/meridianprocure/storefront-backend/pkg/redis"
	"github.com/meridianprocure/storefront-backend/pkg/stripe"
)

type stubCatalogService struct{}

func (stubCatalogService) FetchAvailable(ctx context.Context, locationSlug string) ([]catalog.Product, error) {
	return nil, nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) Execute(ctx context.Context, cartSessionID string, customer checkout.CustomerContext) (*checkout.Redirect, error) {
	return &checkout.Redirect{SessionID: "cs_stub"}, nil
}

func (stubCheckoutService) ReadSession(ctx context.Context, stripeSessionID string) (*checkout.SessionData, error) {
	return &checkout.SessionData{ID: stripeSessionID}, nil
}

type stubQuoteService struct{}

func (stubQuoteService) Submit(ctx context.Context, req quotes.QuoteRequest, subCtx quotes.SubmissionContext) error {
	return nil
}

type stubOrdersDB struct{}

func (stubOrdersDB) Ping(context.Context) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0", PublicBaseURL: "https://meridianprocure.com"},
		QuoteRate: config.QuoteRateLimitConfig{
			Window:  time.Minute,
			IPLimit: 10,
		},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})

	webhookSvc, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Orders:            orders.NewRepository(nil),
		TransactionRunner: noopTxRunner{},
	})
	if err != nil {
		t.Fatalf("webhook service setup: %v", err)
	}

	return NewRouter(
		testConfig(),
		logg,
		stubOrdersDB{},
		(*pkgredis.Client)(nil),
		cart.NewStore(),
		stubCatalogService{},
		stubCheckoutService{},
		stubQuoteService{},
		(*stripe.Client)(nil),
		webhookSvc,
		nil, // guard unused unless the webhook route is exercised
		nil,
		nil,
	)
}

type noopTxRunner struct{}

func (noopTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return nil
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestLocationsIsPublic(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestMetricsEndpointMounted(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCartRoutesMintSessionHeader(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get(middleware.CartSessionHeader) == "" {
		t.Fatal("expected session header on cart responses")
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
