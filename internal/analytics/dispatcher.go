// Package analytics relays page-view and e-commerce events to the configured
// measurement endpoint.
package analytics

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

	"marketplace-api/internal/apperror"
	"marketplace-api/internal/config"
	"marketplace-api/internal/model"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ConfigSource returns the current tracking configuration.
type ConfigSource func(ctx context.Context) (model.TrackingConfig, error)

type Dispatcher struct {
	httpClient *http.Client
	endpoint   string
	apiSecret  string
	limiter    *rate.Limiter
	configs    ConfigSource
	logger     *slog.Logger
}

func NewDispatcher(cfg *config.Analytics, configs ConfigSource, logger *slog.Logger) *Dispatcher {
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}

	return &Dispatcher{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		endpoint:  cfg.Endpoint,
		apiSecret: cfg.APISecret,
		limiter:   rate.NewLimiter(limit, int(max(cfg.RateLimit, 1))),
		configs:   configs,
		logger:    logger,
	}
}

type payload struct {
	ClientID string         `json:"client_id"`
	Events   []payloadEvent `json:"events"`
}

type payloadEvent struct {
	Name   EventName      `json:"name"`
	Params map[string]any `json:"params"`
}

// Dispatch validates and sends e. It reports false without error when the
// event was dropped because tracking is off or the outbound limit was hit.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, err
	}

	cfg, err := d.configs(ctx)
	if err != nil {
		return false, fmt.Errorf("load tracking config: %w", err)
	}

	measurementID, ok := cfg.ActiveValue(model.TrackingGoogleAnalytics)
	if !ok {
		d.logger.Debug("analytics not configured, dropping event", "event", e.Name)
		return false, nil
	}

	if !d.limiter.Allow() {
		d.logger.Warn("analytics rate limit reached, dropping event", "event", e.Name)
		return false, nil
	}

	clientID := e.ClientID
	if clientID == "" {
		clientID = uuid.NewString()
	}

	body, err := json.Marshal(payload{
		ClientID: clientID,
		Events:   []payloadEvent{{Name: e.Name, Params: e.params()}},
	})
	if err != nil {
		return false, fmt.Errorf("marshal analytics payload: %w", err)
	}

	params := url.Values{}
	params.Set("measurement_id", measurementID)
	if d.apiSecret != "" {
		params.Set("api_secret", d.apiSecret)
	}
	endpoint := d.endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return false, &apperror.NetworkError{URL: d.endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return false, &apperror.RestError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	return true, nil
}
