package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mapuy555/warranty-server/internal/config"
	"github.com/mapuy555/warranty-server/internal/entity"
)

// Client answers one question: has this shipment been delivered, and
// when. Courier integrations stay behind this interface.
type Client interface {
	DeliveredAt(
		ctx context.Context,
		carrier entity.CarrierSlug,
		trackingNumber string,
	) (time.Time, bool, error)
}

type disabled struct{}

// NewDisabled returns a Client that never confirms delivery, so the
// warranty base date always falls back to registration time.
func NewDisabled() Client {
	return disabled{}
}

func (disabled) DeliveredAt(
	_ context.Context,
	_ entity.CarrierSlug,
	_ string,
) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient talks to a tracking gateway exposing
// GET {base}/v1/track/{carrier}/{tracking_number}.
func NewHTTPClient(cfg config.Tracking) Client {
	return &httpClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type trackResponse struct {
	Delivered   bool      `json:"delivered"`
	DeliveredAt time.Time `json:"delivered_at"`
}

func (c *httpClient) DeliveredAt(
	ctx context.Context,
	carrier entity.CarrierSlug,
	trackingNumber string,
) (time.Time, bool, error) {
	const op = "tracking.httpClient.DeliveredAt"

	if carrier == entity.CarrierUnknown || trackingNumber == "" {
		return time.Time{}, false, nil
	}

	endpoint := fmt.Sprintf("%s/v1/track/%s/%s",
		c.baseURL,
		url.PathEscape(string(carrier)),
		url.PathEscape(trackingNumber),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%s: build request: %w", op, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%s: request: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return time.Time{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return time.Time{}, false, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var tr trackResponse
	if err = json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return time.Time{}, false, fmt.Errorf("%s: decode response: %w", op, err)
	}

	if !tr.Delivered || tr.DeliveredAt.IsZero() {
		return time.Time{}, false, nil
	}
	return tr.DeliveredAt, true, nil
}
