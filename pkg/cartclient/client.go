package cartclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/cartsync/internal/cart"
	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
	"github.com/angelmondragon/cartsync/pkg/types"
	"github.com/google/uuid"
)

const (
	DefaultBaseURL = "http://localhost:8080/api"

	HeaderAuthorization = "Authorization"
	HeaderSessionID     = "X-Session-ID"

	defaultTimeout             = 10 * time.Second
	responseBodyReadLimit int64 = 1 << 20
)

var errBaseURLRequired = errors.New("cart api base url is required")

// Credentials identify the shopper. The first non-empty field wins in the order
// bearer token, telegram init data, session id.
type Credentials struct {
	BearerToken      string
	TelegramInitData string
	SessionID        string
}

// Client speaks the Cart API wire contract and implements cart.Remote.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      Credentials
}

var _ cart.Remote = (*Client)(nil)

// Option configures optional client behavior.
type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithCredentials(creds Credentials) Option {
	return func(c *Client) {
		c.creds = Credentials{
			BearerToken:      strings.TrimSpace(creds.BearerToken),
			TelegramInitData: strings.TrimSpace(creds.TelegramInitData),
			SessionID:        strings.TrimSpace(creds.SessionID),
		}
	}
}

// WithTimeout sets the transport-level timeout for each call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient builds a client for baseURL. Without credentials a guest session id is generated.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("invalid cart api base url %q", baseURL)
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.creds == (Credentials{}) {
		client.creds.SessionID = uuid.NewString()
	}
	return client, nil
}

// Credentials returns the identity attached to every request.
func (c *Client) Credentials() Credentials {
	return c.creds
}

func (c *Client) GetCart(ctx context.Context) ([]cart.Item, error) {
	var detail types.CartDetail
	if err := c.do(ctx, http.MethodGet, "cart/", nil, &detail); err != nil {
		return nil, err
	}
	return ItemsFromDetail(detail), nil
}

func (c *Client) UpsertItem(ctx context.Context, productID cart.ProductID, quantity int) error {
	req := types.UpsertCartItemRequest{ProductID: string(productID), Quantity: &quantity}
	return c.do(ctx, http.MethodPost, "cart/", req, nil)
}

func (c *Client) DeleteItems(ctx context.Context, productIDs []cart.ProductID) error {
	req := types.DeleteCartItemsRequest{ProductIDs: make([]string, 0, len(productIDs))}
	for _, id := range productIDs {
		req.ProductIDs = append(req.ProductIDs, string(id))
	}
	return c.do(ctx, http.MethodDelete, "cart/", req, nil)
}

func (c *Client) PriceSelection(ctx context.Context, selection []cart.SelectionLine) (cart.Summary, error) {
	req := types.CalculateSelectionRequest{Selection: make([]types.SelectionLine, 0, len(selection))}
	for _, line := range selection {
		req.Selection = append(req.Selection, types.SelectionLine{ProductID: string(line.ProductID), Quantity: line.Quantity})
	}
	var pricing types.SelectionPricing
	if err := c.do(ctx, http.MethodPost, "calculate-selection/", req, &pricing); err != nil {
		return cart.Summary{}, err
	}
	return SummaryFromPricing(pricing), nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal cart api request")
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build cart api request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s %s", method, path))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart api response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode cart api response")
	}
	if len(envelope.Data) == 0 {
		return pkgerrors.New(pkgerrors.CodeDependency, "cart api response missing data")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode cart api response")
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	switch {
	case c.creds.BearerToken != "":
		req.Header.Set(HeaderAuthorization, "Bearer "+c.creds.BearerToken)
	case c.creds.TelegramInitData != "":
		req.Header.Set(HeaderAuthorization, "tma "+c.creds.TelegramInitData)
	case c.creds.SessionID != "":
		req.Header.Set(HeaderSessionID, c.creds.SessionID)
	}
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
}
