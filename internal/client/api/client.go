// Package api is the authenticated client for the CodeLife backend.
//
// Every call asks the session for a bearer token right before it is sent;
// tokens are never kept between calls. Failures come back as
// *identity.AuthError (nobody signed in) or *APIError (non-2xx answer).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/codelife/internal/client/identity"
	"github.com/dmitrijs2005/codelife/internal/common"
	"github.com/dmitrijs2005/codelife/internal/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const tracerName = "github.com/dmitrijs2005/codelife/internal/client/api"

// Session is the part of session.Session the client depends on.
type Session interface {
	Current() *identity.Identity
	Token(ctx context.Context) (string, error)
}

type Options struct {
	BaseURL string
	// Timeout bounds a single request; zero means no limit beyond ctx.
	Timeout time.Duration
	// RateLimit is the number of requests per second; zero disables it.
	RateLimit float64
	Burst     int

	HTTPClient *http.Client
	Logger     logging.Logger
}

type Client struct {
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	http    *http.Client
	session Session
	log     logging.Logger
	tracer  trace.Tracer
}

// RequestOptions mirrors the subset of an HTTP request callers control.
// Body may be nil, []byte, json.RawMessage, string or any value encodable
// as JSON.
type RequestOptions struct {
	Method  string
	Body    any
	Headers map[string]string
}

func New(sess Session, opts Options) *Client {
	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		timeout: opts.Timeout,
		http:    opts.HTTPClient,
		session: sess,
		log:     opts.Logger,
		tracer:  otel.Tracer(tracerName),
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.log == nil {
		c.log = logging.Discard()
	}
	c.log = c.log.With("component", "api")
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

// Request sends an authenticated request to endpoint and returns the decoded
// JSON body. An empty successful body yields nil.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions) (any, error) {
	if c.session.Current() == nil {
		return nil, identity.NotAuthenticated()
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	ctx, span := c.tracer.Start(ctx, method+" "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("codelife.endpoint", endpoint),
		),
	)
	defer span.End()

	out, err := c.do(ctx, method, endpoint, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, opts RequestOptions) (any, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
		}
	}

	token, err := c.session.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		// signed out between the check above and now
		return nil, identity.NotAuthenticated()
	}

	body, err := encodeBody(opts.Body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body for %s: %w", endpoint, err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("building request %s %s: %w", method, endpoint, err)
	}

	requestID := uuid.NewString()
	req.Header.Set(common.ContentTypeHeaderName, common.ContentTypeJSON)
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	req.Header.Set(common.RequestIDHeaderName, requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", method, "endpoint", endpoint, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", endpoint, err)
	}

	c.log.Debug(ctx, "request done",
		"method", method,
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Endpoint: endpoint, Message: errorMessage(data)}
	}

	return decodeBody(data, endpoint)
}

func encodeBody(v any) (io.Reader, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
}

// decodeBody keeps numbers as json.Number so integers survive unchanged.
func decodeBody(data []byte, endpoint string) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response from %s: %w", endpoint, err)
	}
	return out, nil
}
