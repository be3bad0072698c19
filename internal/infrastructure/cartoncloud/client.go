package cartoncloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/brendansiraky/beerfarm-scripts/internal/domain/order"
	"github.com/brendansiraky/beerfarm-scripts/internal/domain/warehouse"
)

// OrderKind is a WMS record collection the search endpoint exposes.
type OrderKind string

const (
	// KindConsignments are delivery-run records; their runsheet carries the
	// scheduled delivery date.
	KindConsignments OrderKind = "consignments"
	// KindOutboundOrders are pick/pack orders; their status mirrors packing
	// progress.
	KindOutboundOrders OrderKind = "outbound-orders"
	// KindInboundOrders are warehouse receipts for transfer orders.
	KindInboundOrders OrderKind = "inbound-orders"
)

// Default production endpoints.
const (
	DefaultAuthURL    = "https://api.cartoncloud.com/uaa/oauth/token"
	DefaultAPIBaseURL = "https://api.cartoncloud.com"
)

// maxResponseSize caps WMS response bodies read into memory (10MB).
const maxResponseSize = 10 * 1024 * 1024

// ClientConfig holds the settings for the WMS client. Credentials are not
// here: every call is made with one warehouse's tenant credentials.
type ClientConfig struct {
	AuthURL    string
	APIBaseURL string
	Timeout    time.Duration
}

// Client talks to the WMS. A bearer token is fetched per search call with the
// warehouse's own client credentials and never reused across calls.
type Client struct {
	authURL    string
	apiBaseURL string
	http       *http.Client
	logger     *zap.Logger
}

// NewClient creates a WMS client with production defaults for any unset URL.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	apiBaseURL := cfg.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		authURL:    authURL,
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		http:       &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// SearchResult is a WMS order record slice: the customer reference expected
// to correlate with an ERP transaction id, plus whatever status or runsheet
// data the WMS has produced so far.
type SearchResult struct {
	Status     string `json:"status"`
	References struct {
		Customer  string `json:"customer"`
		NumericID string `json:"numericId"`
	} `json:"references"`
	Details struct {
		ArrivalDate string `json:"arrivalDate"`
		Runsheet    *struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"runsheet"`
	} `json:"details"`
}

// TransactionID returns the result's customer reference normalized to a bare
// transaction id (trailing annotation text stripped).
func (r SearchResult) TransactionID() string {
	return order.StripReference(r.References.Customer)
}

// RunsheetDate returns the scheduled delivery date, empty when the WMS has
// not assigned the record to a delivery run yet.
func (r SearchResult) RunsheetDate() string {
	if r.Details.Runsheet == nil {
		return ""
	}
	return r.Details.Runsheet.Date
}

// Structured search filter: an OR of equality comparisons on the reference
// field, one clause per requested transaction id.
type searchBody struct {
	Condition orCondition `json:"condition"`
}

type orCondition struct {
	Type       string      `json:"type"`
	Conditions []condition `json:"conditions"`
}

type condition struct {
	Type   string     `json:"type"`
	Field  valueField `json:"field"`
	Value  valueField `json:"value"`
	Method string     `json:"method"`
}

type valueField struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Search exchanges the warehouse's client credentials for a bearer token and
// runs a reference search for the given transaction ids. The result size is
// unbounded by the request: ids the WMS has no record for simply produce no
// result, which callers treat as "no data yet", not an error.
func (c *Client) Search(ctx context.Context, kind OrderKind, wh warehouse.Config, transactionIDs []string) ([]SearchResult, error) {
	token, err := c.token(ctx, wh)
	if err != nil {
		return nil, err
	}

	conditions := make([]condition, 0, len(transactionIDs))
	for _, id := range transactionIDs {
		conditions = append(conditions, condition{
			Type:   "TextComparisonCondition",
			Field:  valueField{Type: "ValueField", Value: "reference"},
			Value:  valueField{Type: "ValueField", Value: id},
			Method: "EQUAL_TO",
		})
	}
	body, err := json.Marshal(searchBody{
		Condition: orCondition{Type: "OrCondition", Conditions: conditions},
	})
	if err != nil {
		return nil, fmt.Errorf("cartoncloud: failed to encode search body: %w", err)
	}

	searchURL := fmt.Sprintf("%s/tenants/%s/%s/search", c.apiBaseURL, wh.TenantID, kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, searchURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("cartoncloud: failed to create search request: %w", err)
	}
	req.Header.Set("Accept-Version", "1")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cartoncloud: search request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("cartoncloud: failed to read search response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &order.UpstreamError{System: "cartoncloud", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var results []SearchResult
	if err := json.Unmarshal(respBody, &results); err != nil {
		return nil, fmt.Errorf("cartoncloud: failed to parse search response: %w", err)
	}

	c.logger.Debug("WMS search complete",
		zap.String("order_kind", string(kind)),
		zap.Int("requested", len(transactionIDs)),
		zap.Int("found", len(results)),
	)
	return results, nil
}

// tokenResponse is the client-credentials grant response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// token performs the client-credentials grant for one warehouse tenant. The
// token is held only for the lifetime of the enclosing search call.
func (c *Client) token(ctx context.Context, wh warehouse.Config) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("cartoncloud: failed to create token request: %w", err)
	}
	req.SetBasicAuth(wh.ClientID, wh.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("cartoncloud: token request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("cartoncloud: failed to read token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &order.UpstreamError{System: "cartoncloud", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var tok tokenResponse
	if err := json.Unmarshal(respBody, &tok); err != nil {
		return "", fmt.Errorf("cartoncloud: failed to parse token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("cartoncloud: token response missing access_token")
	}
	return tok.AccessToken, nil
}
