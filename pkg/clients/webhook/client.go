// Package webhook posts JSON notifications to a configured endpoint. Used
// for low-stock alerts after a sale and for daily summary pushes.
package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/shoeshop/pos-backend/internal/config"
	"github.com/shoeshop/pos-backend/internal/domain/models"
)

// Client posts notification payloads to the configured webhook URL.
type Client struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client from configuration.
func NewClient(cfg config.WebhookConfig) *Client {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &Client{httpClient: restyClient, url: cfg.URL}
}

// NotifyLowStock pushes a low-stock event for the given record.
func (c *Client) NotifyLowStock(ctx context.Context, rec models.StockRecord) error {
	payload := map[string]any{
		"event":          "low_stock",
		"skuCode":        rec.SKUCode,
		"name":           rec.Name,
		"brand":          rec.Brand,
		"size":           rec.Size,
		"quantityOnHand": rec.QuantityOnHand,
	}
	return c.post(ctx, payload)
}

// NotifyDailySummary pushes a generated daily summary.
func (c *Client) NotifyDailySummary(ctx context.Context, summary models.DailySummary) error {
	payload := map[string]any{
		"event":   "daily_summary",
		"summary": summary,
	}
	return c.post(ctx, payload)
}

func (c *Client) post(ctx context.Context, payload any) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post webhook notification: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode())
	}
	return nil
}
