package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianprocure/storefront-backend/internal/locations"
	"github.com/meridianprocure/storefront-backend/pkg/enums"
	pkgerrors "github.com/meridianprocure/storefront-backend/pkg/errors"
	"github.com/meridianprocure/storefront-backend/pkg/logger"
	"github.com/meridianprocure/storefront-backend/pkg/metrics"
)

const (
	defaultStock       = 500
	fallbackImageURL   = "/img/48x40-grade-a-stringer-wooden-pallet.png"
	fallbackDesc       = "Premium pallet solution"
	productsByCityGROQ = `*[_type == "palletType"]{
  name,
  "slug": slug.current,
  "imageUrl": mainImage.asset->url,
  category,
  shortDescription,
  description,
  "cityPricing": locationPricing[city->slug.current == $citySlug][0]{
    price,
    inStock
  }
}[defined(cityPricing)]`
)

// Product is a catalog entry with its price resolved for one location.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	ImageURL    string          `json:"imageUrl"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	InStock     int             `json:"inStock"`
}

// ContentClient is the upstream CMS query surface.
type ContentClient interface {
	Query(ctx context.Context, groq string, params map[string]string, dest any) error
}

// Service resolves per-location product availability and pricing.
type Service interface {
	FetchAvailable(ctx context.Context, locationSlug string) ([]Product, error)
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Content ContentClient
	Logger  *logger.Logger
	Metrics *metrics.StorefrontMetrics
}

type service struct {
	content ContentClient
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Content == nil {
		return nil, fmt.Errorf("content client required")
	}
	return &service{
		content: params.Content,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

type productDoc struct {
	Name             string  `json:"name"`
	Slug             string  `json:"slug"`
	ImageURL         string  `json:"imageUrl"`
	Category         string  `json:"category"`
	ShortDescription string  `json:"shortDescription"`
	Description      string  `json:"description"`
	CityPricing      *struct {
		Price   float64 `json:"price"`
		InStock int     `json:"inStock"`
	} `json:"cityPricing"`
}

// FetchAvailable returns the products priced for the given location, sorted by
// grade precedence. Products without a price entry for the location are
// excluded. A fetch failure is returned as an error so callers can tell
// "try again" apart from a location with no products.
func (s *service) FetchAvailable(ctx context.Context, locationSlug string) ([]Product, error) {
	if !locations.IsValid(locationSlug) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("unknown location %q", locationSlug))
	}

	started := time.Now()
	var docs []productDoc
	if err := s.content.Query(ctx, productsByCityGROQ, map[string]string{"citySlug": locationSlug}, &docs); err != nil {
		s.metrics.ObserveCatalogFetch("error", time.Since(started))
		if s.logg != nil {
			s.logg.Error(s.logg.WithLocation(ctx, locationSlug), "catalog fetch failed", err)
		}
		return nil, err
	}
	s.metrics.ObserveCatalogFetch("ok", time.Since(started))

	products := make([]Product, 0, len(docs))
	for _, doc := range docs {
		if doc.CityPricing == nil || doc.CityPricing.Price <= 0 {
			continue
		}
		stock := doc.CityPricing.InStock
		if stock <= 0 {
			stock = defaultStock
		}
		image := doc.ImageURL
		if image == "" {
			image = fallbackImageURL
		}
		desc := doc.ShortDescription
		if desc == "" {
			desc = doc.Description
		}
		if desc == "" {
			desc = fallbackDesc
		}
		products = append(products, Product{
			ID:          doc.Slug,
			Name:        doc.Name,
			ImageURL:    image,
			Category:    doc.Category,
			Description: desc,
			UnitPrice:   decimal.NewFromFloat(doc.CityPricing.Price),
			InStock:     stock,
		})
	}

	// Stable keeps arrival order within a grade tier.
	sort.SliceStable(products, func(i, j int) bool {
		return enums.PalletGrade(products[i].Category).SortRank() < enums.PalletGrade(products[j].Category).SortRank()
	})

	return products, nil
}
