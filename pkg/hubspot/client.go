package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/meridianprocure/storefront-backend/pkg/errors"
)

const (
	defaultFormsBaseURL = "https://api.hsforms.com"
	defaultCRMBaseURL   = "https://api.hubapi.com"
	errorBodyReadLimit  = int64(1024)
)

var (
	errPortalIDRequired = errors.New("hubspot portal id is required")
	errFormIDRequired   = errors.New("hubspot form id is required")
)

// Client talks to the HubSpot Forms and CRM contact APIs.
type Client struct {
	httpClient   *http.Client
	formsBaseURL string
	crmBaseURL   string
	portalID     string
	formID       string
	token        string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithFormsBaseURL overrides the Forms API base URL. Intended for tests.
func WithFormsBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.formsBaseURL = trimmed
		}
	}
}

// WithCRMBaseURL overrides the CRM API base URL. Intended for tests.
func WithCRMBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.crmBaseURL = trimmed
		}
	}
}

// NewClient builds a HubSpot client bound to one portal/form. The private-app
// token is optional; without it only the public Forms API is usable.
func NewClient(portalID, formID, token string, opts ...Option) (*Client, error) {
	portalID = strings.TrimSpace(portalID)
	if portalID == "" {
		return nil, errPortalIDRequired
	}
	formID = strings.TrimSpace(formID)
	if formID == "" {
		return nil, errFormIDRequired
	}

	client := &Client{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		formsBaseURL: defaultFormsBaseURL,
		crmBaseURL:   defaultCRMBaseURL,
		portalID:     portalID,
		formID:       formID,
		token:        strings.TrimSpace(token),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return client, nil
}

// HasCRMToken reports whether CRM contact upserts are configured.
func (c *Client) HasCRMToken() bool {
	return c != nil && c.token != ""
}

// FormField is one name/value pair sent to the Forms API.
type FormField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FormContext carries page attribution for a form submission.
type FormContext struct {
	PageURI   string `json:"pageUri,omitempty"`
	PageName  string `json:"pageName,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
}

type formSubmission struct {
	Fields  []FormField  `json:"fields"`
	Context *FormContext `json:"context,omitempty"`
}

// SubmitForm posts a lead to the configured marketing form.
func (c *Client) SubmitForm(ctx context.Context, fields []FormField, formCtx *FormContext) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "hubspot client not configured")
	}
	if len(fields) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "form fields are required")
	}

	endpoint := fmt.Sprintf("%s/submissions/v3/integration/submit/%s/%s", c.formsBaseURL, c.portalID, c.formID)
	payload, err := json.Marshal(formSubmission{Fields: fields, Context: formCtx})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal form submission")
	}

	return c.post(ctx, endpoint, payload, false, "form submission")
}

// UpsertContact creates or updates a CRM contact keyed by email. Requires the
// private-app token.
func (c *Client) UpsertContact(ctx context.Context, email string, properties map[string]string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "hubspot client not configured")
	}
	if !c.HasCRMToken() {
		return pkgerrors.New(pkgerrors.CodeDependency, "hubspot crm token not configured")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "contact email is required")
	}

	props := map[string]string{"email": email}
	for name, value := range properties {
		if value == "" {
			continue
		}
		props[name] = value
	}

	payload, err := json.Marshal(map[string]any{"properties": props})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal contact payload")
	}

	endpoint := fmt.Sprintf("%s/crm/v3/objects/contacts", c.crmBaseURL)
	err = c.post(ctx, endpoint, payload, true, "contact upsert")
	if err == nil {
		return nil
	}

	// 409 means the contact exists; patch it by email instead.
	if !isConflict(err) {
		return err
	}
	patchEndpoint := fmt.Sprintf("%s/crm/v3/objects/contacts/%s?idProperty=email", c.crmBaseURL, email)
	return c.send(ctx, http.MethodPatch, patchEndpoint, payload, true, "contact update")
}

func (c *Client) post(ctx context.Context, endpoint string, payload []byte, authed bool, action string) error {
	return c.send(ctx, http.MethodPost, endpoint, payload, authed, action)
}

func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte, authed bool, action string) error {
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+action+" request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if authed {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+action+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	if resp.StatusCode == http.StatusConflict {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, cause, action+" failed")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, action+" failed")
}

func isConflict(err error) bool {
	typed := pkgerrors.As(err)
	return typed != nil && typed.Code() == pkgerrors.CodeConflict
}
