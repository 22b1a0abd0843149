package quotes

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	pkgerrors "github.com/meridianprocure/storefront-backend/pkg/errors"
	"github.com/meridianprocure/storefront-backend/pkg/hubspot"
	"github.com/meridianprocure/storefront-backend/pkg/logger"
	"github.com/meridianprocure/storefront-backend/pkg/metrics"
)

// CRMClient is the lead sink surface the service depends on.
type CRMClient interface {
	SubmitForm(ctx context.Context, fields []hubspot.FormField, formCtx *hubspot.FormContext) error
	UpsertContact(ctx context.Context, email string, properties map[string]string) error
	HasCRMToken() bool
}

// SubmissionContext carries page attribution captured at submit time.
type SubmissionContext struct {
	PageURI   string
	PageName  string
	IPAddress string
}

// Service forwards quote-request leads to the CRM.
type Service interface {
	Submit(ctx context.Context, req QuoteRequest, subCtx SubmissionContext) error
}

// ServiceParams groups dependencies for the quote service.
type ServiceParams struct {
	CRM     CRMClient
	Logger  *logger.Logger
	Metrics *metrics.StorefrontMetrics
}

type service struct {
	crm     CRMClient
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

// NewService builds a quote service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.CRM == nil {
		return nil, fmt.Errorf("crm client required")
	}
	return &service{
		crm:     params.CRM,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// Submit maps the lead and delivers it to the contact store and the marketing
// form. The two sinks are independent; the submission succeeds when at least
// one accepts the lead.
func (s *service) Submit(ctx context.Context, req QuoteRequest, subCtx SubmissionContext) error {
	properties := MapFields(req)

	if backup := BackupMessage(req); backup != "" {
		properties["hs_lead_status"] = "NEW"
		properties["lifecyclestage"] = "lead"
		if properties["rfq_details"] == "" {
			properties["message"] = backup
		}
	}

	var combined error
	delivered := 0

	if s.crm.HasCRMToken() {
		if err := s.crm.UpsertContact(ctx, req.Email, properties); err != nil {
			combined = multierr.Append(combined, fmt.Errorf("crm contact: %w", err))
		} else {
			delivered++
		}
	}

	fields := make([]hubspot.FormField, 0, len(properties))
	for name, value := range properties {
		fields = append(fields, hubspot.FormField{Name: name, Value: value})
	}
	formCtx := &hubspot.FormContext{
		PageURI:   subCtx.PageURI,
		PageName:  subCtx.PageName,
		IPAddress: subCtx.IPAddress,
	}
	if err := s.crm.SubmitForm(ctx, fields, formCtx); err != nil {
		combined = multierr.Append(combined, fmt.Errorf("forms api: %w", err))
	} else {
		delivered++
	}

	if delivered == 0 {
		s.metrics.IncQuoteSubmission("error")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "quote submission failed")
	}

	if combined != nil && s.logg != nil {
		// One sink took the lead, the other did not. Worth a look, not a 5xx.
		s.logg.Warn(s.logg.WithField(ctx, "error", combined.Error()), "quote submission partially delivered")
	}

	s.metrics.IncQuoteSubmission("ok")
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "email", req.Email), "quote submitted")
	}
	return nil
}
