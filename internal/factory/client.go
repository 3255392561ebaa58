// Package factory wraps the outbound call to the pizza-factory
// fulfillment API.  The provider is a black box: one POST, one JSON
// response carrying a report URL and a token.  No retries.
package factory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sliceworks/pizza-backend/internal/model"
)

// ErrFulfillment is returned when the factory call does not report
// success.  The order itself is already persisted; callers surface the
// failure to the client with the report payload when present.
var ErrFulfillment = errors.New("fulfillment failed")

// Report is the factory's response: a verification token and a URL
// where the fulfillment report can be inspected.
type Report struct {
	JWT       string `json:"jwt"`
	ReportURL string `json:"reportUrl"`
}

type Client struct {
	url  string
	http *http.Client
}

func New(url string) *Client {
	return &Client{url: url, http: &http.Client{Timeout: 10 * time.Second}}
}

type fulfillRequest struct {
	Diner struct {
		ID    uint64 `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"diner"`
	Order *model.Order `json:"order"`
}

// Fulfill submits the placed order.  A transport error, non-2xx status
// or a response without a token all count as ErrFulfillment.
func (c *Client) Fulfill(ctx context.Context, diner *model.User, order *model.Order) (*Report, error) {
	var req fulfillRequest
	req.Diner.ID = diner.ID
	req.Diner.Name = diner.Name
	req.Diner.Email = diner.Email
	req.Order = order

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, ErrFulfillment
	}
	defer resp.Body.Close()

	var report Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, ErrFulfillment
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || report.JWT == "" {
		return &report, ErrFulfillment
	}
	return &report, nil
}
