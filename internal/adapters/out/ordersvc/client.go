// Package ordersvc implements the outbound HTTP integration with the order
// service: pushing shipment status changes into the order's status field and
// recording audit trail entries for committed updates.
package ordersvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/ports"
)

const defaultRequestTimeout = 5 * time.Second

// Client is the HTTP client for the order service's internal API. It
// implements both ports.OrderStatusSynchronizer and ports.AuditLogPublisher.
//
// Requests authenticate service-to-service with a shared secret header. The
// caller bounds each call with its context; the embedded client timeout is a
// second ceiling against stuck connections.
type Client struct {
	baseURL    string
	authSecret string
	httpClient *http.Client
}

// NewClient creates an order service client.
//
// baseURL is the service root without a trailing slash, for example
// "http://order-service:3000". authSecret is sent on every request in the
// X-Internal-Secret header.
func NewClient(baseURL, authSecret string) *Client {
	return &Client{
		baseURL:    baseURL,
		authSecret: authSecret,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
}

// PushOrderStatus updates the order's status field to mirror the shipment's
// committed status.
//
//	PUT {baseURL}/internal/orders/{orderID}/status
//	{"status": "DELIVERED"}
func (c *Client) PushOrderStatus(ctx context.Context, orderID kernel.UUID, status shipment.OrderStatus) error {
	payload := map[string]string{"status": string(status)}
	url := fmt.Sprintf("%s/internal/orders/%s/status", c.baseURL, orderID.String())

	return c.send(ctx, http.MethodPut, url, payload)
}

// auditLogRequest is the wire format of one audit trail entry.
type auditLogRequest struct {
	Action      string              `json:"action"`
	PerformedBy ports.AuditActor    `json:"performedBy"`
	Changes     []ports.AuditChange `json:"changes,omitempty"`
	Metadata    map[string]string   `json:"metadata,omitempty"`
}

// PublishAuditLog records a structured change record in the order's audit trail.
//
//	POST {baseURL}/internal/orders/{orderID}/audit-logs
func (c *Client) PublishAuditLog(ctx context.Context, entry ports.AuditEntry) error {
	payload := auditLogRequest{
		Action:      string(entry.Action),
		PerformedBy: entry.PerformedBy,
		Changes:     entry.Changes,
		Metadata:    entry.Metadata,
	}
	url := fmt.Sprintf("%s/internal/orders/%s/audit-logs", c.baseURL, entry.OrderID.String())

	return c.send(ctx, http.MethodPost, url, payload)
}

// send issues one JSON request and treats any non-2xx response as an error.
func (c *Client) send(ctx context.Context, method, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Secret", c.authSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("order service returned %d for %s %s: %s", resp.StatusCode, method, url, snippet)
	}

	return nil
}
