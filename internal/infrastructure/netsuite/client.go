package netsuite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/brendansiraky/beerfarm-scripts/internal/domain/order"
)

// maxResponseSize caps ERP response bodies read into memory (10MB).
const maxResponseSize = 10 * 1024 * 1024

// ClientConfig holds the settings for the ERP REST client.
type ClientConfig struct {
	// BaseURL is the REST services root, e.g.
	// https://<account>.suitetalk.api.netsuite.com/services/rest
	BaseURL     string
	Credentials Credentials
	Timeout     time.Duration
}

// RestBaseURL derives the REST root for an ERP account id.
func RestBaseURL(accountID string) string {
	return fmt.Sprintf("https://%s.suitetalk.api.netsuite.com/services/rest", strings.ToLower(accountID))
}

// Client performs signed operations against the ERP REST surface. It is
// stateless beyond its credential set and safe for concurrent use.
type Client struct {
	baseURL string
	signer  *Signer
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates an ERP client, failing fast on incomplete credentials.
func NewClient(cfg ClientConfig, logger *zap.Logger) (*Client, error) {
	signer, err := NewSigner(cfg.Credentials)
	if err != nil {
		return nil, err
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = RestBaseURL(cfg.Credentials.AccountID)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		signer:  signer,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// recordURL returns the record collection URL for an ERP record kind.
func (c *Client) recordURL(kind order.Kind) string {
	return c.baseURL + "/record/v1/" + string(kind)
}

// queryURL returns the analytic query endpoint.
func (c *Client) queryURL() string {
	return c.baseURL + "/query/v1/suiteql"
}

// do issues one signed request and returns the response body. Non-2xx
// responses surface as *order.UpstreamError carrying status and body.
func (c *Client) do(ctx context.Context, method, rawURL string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("netsuite: failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("netsuite: failed to create request: %w", err)
	}

	auth, err := c.signer.AuthorizationHeader(rawURL, method)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "transient")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("netsuite: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("netsuite: failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &order.UpstreamError{System: "netsuite", StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

// Query performs a signed GET of the given URL and decodes the JSON response
// into out.
func (c *Client) Query(ctx context.Context, rawURL string, out any) error {
	body, err := c.do(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("netsuite: failed to parse response: %w", err)
	}
	return nil
}

// listResponse is the envelope of a filtered record collection GET.
type listResponse struct {
	Items []struct {
		ID string `json:"id"`
	} `json:"items"`
}

// recordEnvelope is the subset of a single record representation the
// pipeline reads.
type recordEnvelope struct {
	ID     string `json:"id"`
	TranID string `json:"tranId"`
}

// GetByTransactionID looks up the record whose tranid matches transactionID
// exactly (the filter is equality, never a prefix match), then fetches the
// full representation by internal id. Returns order.ErrNotFound when the
// filtered query yields no items.
func (c *Client) GetByTransactionID(ctx context.Context, kind order.Kind, transactionID string) (*order.Record, error) {
	listURL := c.recordURL(kind) + buildQueryString(map[string]string{
		"q":     fmt.Sprintf("tranid IS %q", transactionID),
		"limit": "1",
	})

	var list listResponse
	if err := c.Query(ctx, listURL, &list); err != nil {
		return nil, err
	}
	if len(list.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", order.ErrNotFound, transactionID)
	}

	body, err := c.do(ctx, http.MethodGet, c.recordURL(kind)+"/"+list.Items[0].ID, nil)
	if err != nil {
		return nil, err
	}
	var env recordEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("netsuite: failed to parse record: %w", err)
	}
	return &order.Record{InternalID: env.ID, TranID: env.TranID, Body: body}, nil
}

// Update patches only the supplied fields onto the record; fields absent from
// the partial set are left untouched on the ERP side (merge semantics).
func (c *Client) Update(ctx context.Context, kind order.Kind, internalID string, fields order.Fields) (*order.Record, error) {
	body, err := c.do(ctx, http.MethodPatch, c.recordURL(kind)+"/"+internalID, fields)
	if err != nil {
		return nil, err
	}
	rec := &order.Record{InternalID: internalID, Body: body}
	var env recordEnvelope
	if json.Unmarshal(body, &env) == nil {
		rec.TranID = env.TranID
	}
	return rec, nil
}

// UpdateByTransactionID resolves the record by transaction id and applies a
// partial update. This is the unit invoked by both the webhook path and the
// batch updater.
func (c *Client) UpdateByTransactionID(ctx context.Context, kind order.Kind, transactionID string, fields order.Fields) (*order.Record, error) {
	rec, err := c.GetByTransactionID(ctx, kind, transactionID)
	if err != nil {
		return nil, err
	}
	return c.Update(ctx, kind, rec.InternalID, fields)
}

// pendingQueryResponse is the envelope of the analytic query POST.
type pendingQueryResponse struct {
	Items []order.PendingRow `json:"items"`
}

// suiteQLDate is the date literal layout the analytic query expects.
const suiteQLDate = "02/01/2006"

// FindPending queries the ERP for sales orders dated within the window whose
// target field is still null, grouped and deduplicated by transaction id.
func (c *Client) FindPending(ctx context.Context, target order.SyncTarget, window order.Window) ([]order.PendingRow, error) {
	q := fmt.Sprintf(`SELECT MIN(t.tranid) as tranid,
       MIN(t.trandate) as trandate,
       MIN(l.name) as name,
       MIN(s.id) as salesOrderId,
       MIN(t.custbody_status) as salesstatus
FROM transaction t
    LEFT JOIN salesOrdered s
    ON s.transaction = t.id
    LEFT JOIN location l
    ON l.id = s.location
WHERE t.type = 'SalesOrd'
AND t.trandate >= '%s'
AND t.trandate < '%s'
AND t.%s IS NULL
GROUP BY t.tranid
ORDER BY t.tranid`,
		window.After.Format(suiteQLDate),
		window.Before.Format(suiteQLDate),
		target.Field(),
	)

	body, err := c.do(ctx, http.MethodPost, c.queryURL(), map[string]string{"q": q})
	if err != nil {
		return nil, err
	}
	var resp pendingQueryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("netsuite: failed to parse query response: %w", err)
	}

	c.logger.Debug("Pending orders query complete",
		zap.String("target", string(target)),
		zap.Int("rows", len(resp.Items)),
	)
	return resp.Items, nil
}

// buildQueryString encodes params into a ?-prefixed query string, empty for
// an empty map. Keys are emitted in sorted order so built URLs are stable.
func buildQueryString(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('?')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}
