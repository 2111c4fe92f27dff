// Package nps is the HTTP client for the Nepal Payment switch.
package nps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nps-merchant-gateway/config"
	"nps-merchant-gateway/internal/core/domain"
	"nps-merchant-gateway/pkg/apperror"
	"nps-merchant-gateway/pkg/logger"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Client implements ports.GatewayClient. Each call is a single POST; there
// is no retry.
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

// NewClient creates a client for cfg.BaseURL with cfg.Timeout per call.
func NewClient(cfg config.GatewayConfig, log zerolog.Logger) *Client {
	log = logger.Component(log, "nps_client")

	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{log})

	return &Client{http: http, log: log}
}

// Post sends payload to endpoint with Basic auth from cred. On any local
// failure it returns both a synthesized code "1" response and the
// *apperror.AppError describing it.
func (c *Client) Post(ctx context.Context, endpoint domain.Endpoint, payload interface{}, cred *domain.GatewayCredential) (*domain.GatewayResponse, error) {
	name := endpoint.Name()
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(cred.APIUsername, cred.APIPassword).
		SetBody(payload).
		Post(string(endpoint))

	latency := time.Since(start)
	gatewayDuration.WithLabelValues(name).Observe(latency.Seconds())

	if err != nil {
		c.log.Error().Err(err).Str("endpoint", name).Dur("latency", latency).Msg("gateway unreachable")
		return c.fail(name, outcomeTransport, apperror.ErrTransport(err))
	}

	status := resp.StatusCode()
	if status >= 400 {
		c.log.Warn().Str("endpoint", name).Int("status", status).Dur("latency", latency).Msg("gateway http error")
		return c.fail(name, outcomeHTTP, apperror.ErrGatewayHTTP(status, resp.String()))
	}

	var out domain.GatewayResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		msg := "Invalid JSON response from server"
		if errors.Is(err, domain.ErrNotObject) {
			msg = "Invalid response format from server"
		}
		c.log.Error().Err(err).Str("endpoint", name).Int("status", status).Msg("gateway reply not parseable")
		return c.fail(name, outcomeParse, apperror.ErrParse(msg))
	}

	gatewayRequests.WithLabelValues(name, outcomeLabel(out.Code)).Inc()
	c.log.Debug().
		Str("endpoint", name).
		Int("status", status).
		Str("code", out.Code).
		Dur("latency", latency).
		Msg("gateway call")

	return &out, nil
}

func (c *Client) fail(endpoint, outcome string, appErr *apperror.AppError) (*domain.GatewayResponse, error) {
	gatewayRequests.WithLabelValues(endpoint, outcome).Inc()
	return domain.FailedResponse(appErr), appErr
}

// outcomeLabel bounds label cardinality to the documented codes.
func outcomeLabel(code string) string {
	switch code {
	case domain.GatewayCodeSuccess, domain.GatewayCodeError, domain.GatewayCodePending:
		return "code_" + code
	}
	return "code_other"
}

// restyLogger routes resty's internal messages through zerolog.
type restyLogger struct {
	log zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error().Msg(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn().Msg(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug().Msg(fmt.Sprintf(format, v...))
}
