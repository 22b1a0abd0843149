package sanity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/meridianprocure/storefront-backend/pkg/errors"
)

const (
	apiHost             = "api.sanity.io"
	cdnHost             = "apicdn.sanity.io"
	errorBodyReadLimit  = int64(1024)
	defaultQueryTimeout = 10 * time.Second
)

var (
	errProjectIDRequired = errors.New("sanity project id is required")
	errDatasetRequired   = errors.New("sanity dataset is required")
)

// Client queries a Sanity content lake dataset over the HTTP query API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
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

// WithBaseURL overrides the derived query URL. Intended for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds a query client for one project/dataset pair.
func NewClient(projectID, dataset, apiVersion, token string, useCDN bool, opts ...Option) (*Client, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}
	dataset = strings.TrimSpace(dataset)
	if dataset == "" {
		return nil, errDatasetRequired
	}
	apiVersion = strings.TrimSpace(apiVersion)
	if apiVersion == "" {
		apiVersion = "2024-08-07"
	}

	host := apiHost
	// Authenticated requests bypass the CDN; Sanity rejects tokens there.
	if useCDN && token == "" {
		host = cdnHost
	}

	client := &Client{
		baseURL:    fmt.Sprintf("https://%s.%s/v%s/data/query/%s", projectID, host, apiVersion, dataset),
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{Timeout: defaultQueryTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultQueryTimeout}
	}

	return client, nil
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
	MS     float64         `json:"ms"`
}

// Query runs a GROQ query with optional params and decodes the result into dest.
func (c *Client) Query(ctx context.Context, groq string, params map[string]string, dest any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "sanity client not configured")
	}
	if strings.TrimSpace(groq) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "groq query is required")
	}

	values := url.Values{}
	values.Set("query", groq)
	for name, value := range params {
		// GROQ params arrive JSON-encoded, e.g. $location -> "chicago".
		encoded, err := json.Marshal(value)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "encode query param")
		}
		values.Set("$"+name, string(encoded))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build sanity request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute sanity query")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "sanity query failed")
	}

	var payload queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode sanity response")
	}

	if dest == nil {
		return nil
	}
	if len(payload.Result) == 0 || string(payload.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(payload.Result, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode sanity result")
	}
	return nil
}
