package blofin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/djorgens2/blofin-data/internal/domain"
	"github.com/djorgens2/blofin-data/internal/infra"
)

// REST paths.
const (
	pathMarketBooks  = "/api/v1/market/books"
	pathTradeOrder   = "/api/v1/trade/order"
	pathCancelOrder  = "/api/v1/trade/cancel-order"
	pathLeverageInfo = "/api/v1/account/batch-leverage-info"
)

// Client handles Blofin REST communication: market data reads plus signed
// trading calls. Safe for sequential use from one coordinator run.
type Client struct {
	baseURL    string
	signer     *Signer
	httpClient *http.Client
	limiter    *infra.RateLimiter
	now        func() time.Time
}

// NewClient creates a REST client against baseURL.
func NewClient(baseURL string, signer *Signer) *Client {
	return &Client{
		baseURL:    baseURL,
		signer:     signer,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		// Blofin allows far more, but one round trip never needs bursts.
		limiter: infra.NewRateLimiter(10, 5),
		now:     time.Now,
	}
}

// OrderBook fetches a depth snapshot for instID. Unauthenticated.
func (c *Client) OrderBook(ctx context.Context, instID string, size int) (*OrderBookResponse, error) {
	q := url.Values{}
	q.Set("instId", instID)
	q.Set("size", fmt.Sprintf("%d", size))
	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, pathMarketBooks, q.Encode())

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarketData, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarketData, err)
	}

	body, err := c.do(req, ErrMarketData)
	if err != nil {
		return nil, err
	}

	var resp OrderBookResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode order book: %v", ErrMarketData, err)
	}
	return &resp, nil
}

// PlaceOrder signs and submits one order, returning the handle used to
// correlate the streaming confirmation.
func (c *Client) PlaceOrder(ctx context.Context, order domain.OrderRequest) (domain.OrderHandle, error) {
	body, err := c.doSigned(ctx, http.MethodPost, pathTradeOrder, order, ErrOrderPlacement)
	if err != nil {
		return domain.OrderHandle{}, err
	}

	var resp OrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.OrderHandle{}, fmt.Errorf("%w: decode response: %v", ErrOrderPlacement, err)
	}

	orderID, err := resp.OrderID()
	if err != nil {
		return domain.OrderHandle{}, err
	}

	slog.Info("order placed", "orderId", orderID, "instId", order.InstID, "price", order.Price)
	return domain.OrderHandle{OrderID: orderID}, nil
}

// CancelOrder signs and submits a cancellation for the handle's order.
// No retry: a resend would need a brand-new timestamp and nonce.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	body, err := c.doSigned(ctx, http.MethodPost, pathCancelOrder, domain.CancelRequest{OrderID: orderID}, ErrCancel)
	if err != nil {
		return err
	}

	var resp CancelResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrCancel, err)
	}
	if err := resp.Err(); err != nil {
		return err
	}

	slog.Info("order canceled", "orderId", orderID)
	return nil
}

// LeverageInfo fetches the account's leverage for instID. The signed path
// includes the query string; the body is empty.
func (c *Client) LeverageInfo(ctx context.Context, instID, marginMode string) ([]LeverageInfo, error) {
	q := url.Values{}
	q.Set("instId", instID)
	q.Set("marginMode", marginMode)
	signedPath := fmt.Sprintf("%s?%s", pathLeverageInfo, q.Encode())

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSession, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+signedPath, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSession, err)
	}
	for k, v := range c.signer.RESTHeaders(http.MethodGet, signedPath, "", c.now()) {
		req.Header.Set(k, v)
	}

	body, err := c.do(req, ErrSession)
	if err != nil {
		return nil, err
	}

	var resp LeverageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode leverage info: %v", ErrSession, err)
	}
	if resp.Code != "" && resp.Code != codeOK {
		return nil, fmt.Errorf("%w: leverage info code %s: %s", ErrSession, resp.Code, resp.Msg)
	}
	return resp.Data, nil
}

// doSigned serializes payload, signs it with a fresh timestamp/nonce and
// issues the request. The signed bytes are exactly the transmitted bytes.
func (c *Client) doSigned(ctx context.Context, method, path string, payload any, kind error) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal %s body: %v", ErrEncoding, path, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", kind, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kind, err)
	}
	for k, v := range c.signer.RESTHeaders(method, path, string(body), c.now()) {
		req.Header.Set(k, v)
	}

	return c.do(req, kind)
}

// do executes the request and reads the full response body. Non-2xx
// statuses surface the body for diagnosis.
func (c *Client) do(req *http.Request, kind error) ([]byte, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", kind, req.Method, req.URL.Path, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %v", kind, req.URL.Path, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s: status %d: %s", kind, req.Method, req.URL.Path, res.StatusCode, body)
	}
	return body, nil
}
