package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-finance-sync/internal/config"
	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/internal/utils"
	"github.com/MKhiriev/go-finance-sync/models"
	"github.com/go-resty/resty/v2"
)

const traceIDHeader = "X-Trace-ID"

type httpGateway struct {
	client *utils.HTTPClient

	mu    sync.RWMutex
	token string

	now    func() time.Time
	logger *logger.Logger
}

// NewHTTPGateway constructs an HTTP/REST implementation of [Gateway].
// It normalises and validates the base URL from adapterCfg.HTTPAddress and
// configures the underlying HTTP client with the request timeout and the
// initial bearer token.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPGateway(adapterCfg config.ClientAdapter, logger *logger.Logger) (Gateway, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	g := &httpGateway{
		client: utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		now:    time.Now,
		logger: logger,
	}
	g.SetToken(adapterCfg.Token)

	return g, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [Gateway]. The token is whitespace-trimmed.
func (g *httpGateway) SetToken(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = strings.TrimSpace(token)
}

// Token implements [Gateway].
func (g *httpGateway) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

// Send implements [Gateway]. An expired JWT fails with [ErrUnauthorized]
// without touching the network.
func (g *httpGateway) Send(ctx context.Context, method models.Method, endpoint string, payload json.RawMessage) (json.RawMessage, error) {
	log := logger.FromContext(ctx)

	verb := method.HTTPMethod()
	if verb == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}

	token := g.Token()
	if token != "" && utils.IsTokenExpired(token, g.now()) {
		log.Warn().
			Str("func", "httpGateway.Send").
			Str("endpoint", endpoint).
			Msg("bearer token expired, request not sent")
		return nil, fmt.Errorf("%w: token expired", ErrUnauthorized)
	}

	req := g.authedRequest(ctx, token)
	if method != models.MethodDelete && len(payload) > 0 {
		req.SetHeader("Content-Type", "application/json").SetBody([]byte(payload))
	}

	resp, err := req.Execute(verb, endpoint)
	if err != nil {
		mapped := mapTransportError(ctx, err)
		log.Debug().Err(err).
			Str("func", "httpGateway.Send").
			Str("method", verb).
			Str("endpoint", endpoint).
			Msg("request failed without response")
		return nil, mapped
	}

	if err = mapHTTPError(resp); err != nil {
		log.Debug().Err(err).
			Str("func", "httpGateway.Send").
			Str("method", verb).
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode()).
			Msg("server rejected request")
		return nil, err
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, nil
	}
	return json.RawMessage(body), nil
}

func (g *httpGateway) authedRequest(ctx context.Context, token string) *resty.Request {
	req := g.client.R().SetContext(ctx)
	if token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	if traceID, ok := utils.GetTraceIDFromContext(ctx); ok {
		req.SetHeader(traceIDHeader, traceID)
	}
	return req
}
