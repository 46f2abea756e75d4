package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Client talks to a PortOne-style payments API:
//
//	GET {base}/payments/{paymentRef}
//	Authorization: PortOne {secret}
//
// and reads the authoritative total from the response body.
type Client struct {
	base   string
	secret string
	http   *http.Client
}

var _ Verifier = (*Client)(nil)

func NewClient(baseURL, apiSecret string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		secret: strings.TrimSpace(apiSecret),
		http:   hc,
	}
}

type paymentResponse struct {
	Status string `json:"status"`
	Amount struct {
		Total int64 `json:"total"`
	} `json:"amount"`
}

func (c *Client) Verify(ctx context.Context, paymentRef string, expectedTotal int64) error {
	endpoint := c.base + "/payments/" + url.PathEscape(paymentRef)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrLookup, err)
	}
	req.Header.Set("Authorization", "PortOne "+c.secret)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLookup, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%w: payment %s: status %d", ErrLookup, paymentRef, res.StatusCode)
	}

	var body paymentResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrLookup, err)
	}

	if body.Amount.Total != expectedTotal {
		return fmt.Errorf("%w: charged %d, order total %d", ErrMismatch, body.Amount.Total, expectedTotal)
	}
	return nil
}
