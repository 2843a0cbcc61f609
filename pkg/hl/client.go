package hl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hypespot/hypespot/pkg/crypto"
)

// Client issues requests against the venue's REST API. It is safe for
// concurrent use; all state is immutable after construction.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *zap.Logger
}

func NewClient(baseURL string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		log:        log,
	}
}

// ExchangeRequest is the submission bundle for POST /exchange.
type ExchangeRequest struct {
	Action       any              `json:"action"`
	Nonce        uint64           `json:"nonce"`
	Signature    crypto.Signature `json:"signature"`
	VaultAddress *string          `json:"vaultAddress"`
}

// Per-order outcome inside a successful /exchange response. An error
// status here is a normal result, not an exception path: the venue may
// accept the request and still reject individual orders.
type OrderStatus struct {
	Resting *RestingStatus `json:"resting,omitempty"`
	Filled  *FilledStatus  `json:"filled,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type RestingStatus struct {
	Oid int64 `json:"oid"`
}

type FilledStatus struct {
	Oid     int64  `json:"oid"`
	TotalSz string `json:"totalSz"`
	AvgPx   string `json:"avgPx"`
}

// ExchangeResponse is the decoded venue reply for order actions.
type ExchangeResponse struct {
	Status   string `json:"status"`
	Response struct {
		Type string `json:"type"`
		Data struct {
			Statuses []OrderStatus `json:"statuses"`
		} `json:"data"`
	} `json:"response"`
}

// envelope distinguishes ok replies (structured response) from err
// replies (response is a bare message string).
type envelope struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

// SpotMeta fetches spot market metadata.
func (c *Client) SpotMeta(ctx context.Context) (*SpotMeta, error) {
	var meta SpotMeta
	if err := c.post(ctx, "/info", map[string]any{"type": "spotMeta"}, &meta); err != nil {
		return nil, fmt.Errorf("failed to fetch trading pair information: %w", err)
	}
	return &meta, nil
}

// BuilderFee returns the maximum builder fee the user has approved,
// in tenths of a basis point. Zero means no approval on file.
func (c *Client) BuilderFee(ctx context.Context, user string) (int, error) {
	var out struct {
		BuilderFee int `json:"builderFee"`
	}
	if err := c.post(ctx, "/info", map[string]any{"type": "builderInfo", "user": user}, &out); err != nil {
		return 0, err
	}
	return out.BuilderFee, nil
}

// Exchange submits a signed action bundle and decodes the venue's
// reply. A non-"ok" status becomes an error carrying the venue's
// message; per-order statuses inside an ok reply are returned as
// values for the caller to inspect.
func (c *Client) Exchange(ctx context.Context, req ExchangeRequest) (*ExchangeResponse, error) {
	var env envelope
	if err := c.post(ctx, "/exchange", req, &env); err != nil {
		return nil, err
	}

	if env.Status != "ok" {
		var msg string
		if err := json.Unmarshal(env.Response, &msg); err != nil || msg == "" {
			msg = string(env.Response)
		}
		return nil, fmt.Errorf("exchange rejected action: %s", msg)
	}

	resp := &ExchangeResponse{Status: env.Status}
	if len(env.Response) > 0 {
		if err := json.Unmarshal(env.Response, &resp.Response); err != nil {
			return nil, fmt.Errorf("malformed exchange response: %w", err)
		}
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("path", path), zap.Error(err))
		return normalizeTransportError(err)
	}
	defer resp.Body.Close()
	c.log.Debug("request complete",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return normalizeStatusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("malformed response from venue: %w", err)
	}
	return nil
}

// Error normalization: every failure surfaces one human-readable
// message; the raw cause stays wrapped for logs. No automatic retry,
// since a resubmit needs a fresh nonce and a fresh signature.

func normalizeTransportError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("request timed out - please try again: %w", err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("network error - please check your connection: %w", err)
	}
}

func normalizeStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("authentication failed - please reconnect your wallet (status %d)", resp.StatusCode)
	case resp.StatusCode >= 500:
		return fmt.Errorf("server error - please try again later (status %d)", resp.StatusCode)
	default:
		return fmt.Errorf("unexpected response from venue (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
	}
}
