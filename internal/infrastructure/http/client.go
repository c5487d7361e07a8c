// Package httptransport implements the downstream gateway ports over HTTP/JSON.
// Each client is bound to one service base URL plus that service's fixed base path.
package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/gateway"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability/logctx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

const (
	componentGateway = "downstream_gateway"
	maxErrorBody     = 4 << 10
)

const (
	outcomeSuccess  = "success"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

type client struct {
	service string
	baseURL string
	http    *http.Client
	tel     observability.Observability
	log     observability.Logger

	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func newClient(service, baseURL, basePath string, hc *http.Client, tel observability.Observability) *client {
	if hc == nil {
		hc = http.DefaultClient
	}
	if tel == nil {
		tel = observability.Nop()
	}
	return &client{
		service:      service,
		baseURL:      strings.TrimRight(baseURL, "/") + basePath,
		http:         hc,
		tel:          tel,
		log:          tel.Logger().With(observability.F("component", componentGateway), observability.F("peer", service)),
		extCounter:   tel.Metrics().Counter(observability.MExternalRequests),
		extHistogram: tel.Metrics().Histogram(observability.MExternalRequestDuration),
	}
}

// call performs one JSON round trip. endpoint is the low-cardinality route
// label ("GET /{id}"), path the concrete suffix appended to the base URL.
func (c *client) call(ctx context.Context, method, endpoint, path string, in, out any) error {
	body, err := c.open(ctx, method, endpoint, path, in)
	if err != nil {
		return err
	}
	defer body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, body)
		return nil
	}
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return c.decodeError(err)
	}
	return nil
}

// open sends the request and returns the body of a 2xx response; the caller closes it.
func (c *client) open(ctx context.Context, method, endpoint, path string, in any) (_ io.ReadCloser, err error) {
	ctx, span := c.tel.Tracer().Start(ctx, "downstream."+c.service,
		attribute.String("peer.service", c.service),
		attribute.String("http.method", method),
		attribute.String("http.route", endpoint),
	)
	start := time.Now()
	outcome, status := outcomeSuccess, 0

	defer func() {
		lat := time.Since(start)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		span.End()

		c.extCounter.Add(1,
			observability.L("peer", c.service),
			observability.L("endpoint", endpoint),
			observability.L("outcome", outcome),
		)
		c.extHistogram.Observe(lat.Seconds(),
			observability.L("peer", c.service),
			observability.L("endpoint", endpoint),
		)

		fields := []observability.Field{
			observability.F("method", method),
			observability.F("url", c.baseURL+path),
			observability.F("status", status),
			observability.F("outcome", outcome),
			observability.F("latency_ms", lat.Milliseconds()),
		}
		if err != nil {
			fields = append(fields, observability.Err(err))
		}
		logctx.FromOr(ctx, c.log).Info("downstream_call", fields...)
	}()

	var reader io.Reader
	if in != nil {
		buf, merr := json.Marshal(in)
		if merr != nil {
			outcome = outcomeError
			return nil, fmt.Errorf("%s: encode request: %w", c.service, merr)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		outcome = outcomeError
		return nil, &gateway.TransportError{Service: c.service, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		outcome = outcomeError
		return nil, &gateway.TransportError{Service: c.service, Err: err}
	}
	status = resp.StatusCode

	switch {
	case resp.StatusCode == http.StatusNotFound:
		outcome = outcomeNotFound
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s %s: %w", c.service, path, gateway.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		outcome = outcomeError
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
		return nil, &gateway.TransportError{
			Service: c.service,
			Status:  resp.StatusCode,
			Body:    strings.TrimSpace(string(raw)),
		}
	}
	return resp.Body, nil
}

func (c *client) decodeError(err error) error {
	return &gateway.TransportError{Service: c.service, Err: fmt.Errorf("decode response: %w", err)}
}

func idPath(id int64) string {
	return "/" + strconv.FormatInt(id, 10)
}
