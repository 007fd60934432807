package vendon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Upstream endpoint names, used in errors, spans and metrics.
const (
	EndpointMachineProducts = "machineProducts"
	EndpointInventoryReport = "inventoryReport"
	EndpointStock           = "stock"
	EndpointProducts        = "products"
)

const (
	tracerName = "github.com/imrishuroy/go-vendon-inventory/internal/vendon"

	// maxErrorBody caps how much of a failed response ends up in the error message.
	maxErrorBody = 1024
)

// HTTPDoer is the subset of *http.Client the client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Vendon cloud REST API with a static token.
type Client struct {
	baseURL      *url.URL
	token        string
	http         HTTPDoer
	productFeed  string
	productLimit int
	tracer       trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

// WithProductFeed selects the capacity feed: "stock" (default) or "products"
// with a page limit.
func WithProductFeed(feed string, limit int) Option {
	return func(c *Client) {
		c.productFeed = feed
		c.productLimit = limit
	}
}

// NewClient returns a client rooted at baseURL, e.g. https://cloud.vendon.net/rest/head.
func NewClient(baseURL, token string, httpClient HTTPDoer, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse vendon base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("vendon base url %q must be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &Client{
		baseURL:      u,
		token:        token,
		http:         httpClient,
		productFeed:  EndpointStock,
		productLimit: 1000,
		tracer:       otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MachineProducts calls GET /machine/{id}/products and returns the raw result
// array, already filtered to the machine. A missing result is an empty array.
func (c *Client) MachineProducts(ctx context.Context, machineID string) (json.RawMessage, error) {
	raw, err := c.get(ctx, EndpointMachineProducts, machineID, []string{"machine", machineID, "products"}, nil)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || isNull(raw) {
		return json.RawMessage("[]"), nil
	}
	var probe []json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("decode vendon %s response: result is not an array: %w", EndpointMachineProducts, err)
	}
	return raw, nil
}

// InventoryReport calls GET /stats/inventoryReport?machine_id=.
func (c *Client) InventoryReport(ctx context.Context, machineID string) ([]InventoryItem, error) {
	q := url.Values{"machine_id": {machineID}}
	raw, err := c.get(ctx, EndpointInventoryReport, machineID, []string{"stats", "inventoryReport"}, q)
	if err != nil {
		return nil, err
	}
	var items []InventoryItem
	if err := decodeResult(raw, &items); err != nil {
		return nil, fmt.Errorf("decode vendon %s response: %w", EndpointInventoryReport, err)
	}
	return items, nil
}

// ProductCapacities calls the configured product feed, GET /stock?machine_id=
// or GET /products?machine_id=&limit=.
func (c *Client) ProductCapacities(ctx context.Context, machineID string) ([]ProductItem, error) {
	q := url.Values{"machine_id": {machineID}}
	endpoint := EndpointStock
	if c.productFeed == EndpointProducts {
		endpoint = EndpointProducts
		q.Set("limit", strconv.Itoa(c.productLimit))
	}

	raw, err := c.get(ctx, endpoint, machineID, []string{endpoint}, q)
	if err != nil {
		return nil, err
	}
	var items []ProductItem
	if err := decodeResult(raw, &items); err != nil {
		return nil, fmt.Errorf("decode vendon %s response: %w", endpoint, err)
	}
	return items, nil
}

type envelope struct {
	Result json.RawMessage `json:"result"`
}

// get performs an authenticated GET and returns the envelope's result field.
func (c *Client) get(ctx context.Context, endpoint, machineID string, path []string, query url.Values) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "vendon."+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("vendon.endpoint", endpoint),
			attribute.String("vendon.machine_id", machineID),
		),
	)
	defer span.End()

	u, err := c.endpointURL(path)
	if err != nil {
		return nil, c.fail(span, fmt.Errorf("build vendon %s request: %w", endpoint, err))
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, c.fail(span, fmt.Errorf("build vendon %s request: %w", endpoint, err))
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(span, fmt.Errorf("vendon %s request: %w", endpoint, err))
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, c.fail(span, &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		})
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, c.fail(span, fmt.Errorf("decode vendon %s response: %w", endpoint, err))
	}
	return env.Result, nil
}

// endpointURL appends escaped segments to the base path. Unlike
// url.URL.JoinPath it never resolves dot segments, so a segment can not
// climb out of its position.
func (c *Client) endpointURL(segments []string) (*url.URL, error) {
	u := *c.baseURL
	for _, seg := range segments {
		if seg == "" || seg == "." || seg == ".." {
			return nil, fmt.Errorf("invalid path segment %q", seg)
		}
		escaped := u.EscapedPath()
		u.Path += "/" + seg
		u.RawPath = escaped + "/" + url.PathEscape(seg)
	}
	return &u, nil
}

func (c *Client) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func decodeResult(raw json.RawMessage, out any) error {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}
	return json.Unmarshal(raw, out)
}
