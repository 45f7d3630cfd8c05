package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"customer-store/internal/domain/customer"
	"customer-store/internal/infrastructure/monitoring"
	"customer-store/internal/pkg/apperrors"
	"customer-store/internal/pkg/requestid"
)

const (
	customersPath = "/customers"
	maxErrorBody  = 4 << 10
)

// Option configures a CustomerClient.
type Option func(*CustomerClient)

// WithHTTPClient overrides the HTTP client used for every call.
func WithHTTPClient(h *http.Client) Option {
	return func(c *CustomerClient) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithTimeout bounds a single HTTP exchange. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *CustomerClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithBearerToken adds an Authorization header to every request.
func WithBearerToken(token string) Option {
	return func(c *CustomerClient) {
		if token != "" {
			c.headers.Set("Authorization", "Bearer "+token)
		}
	}
}

// CustomerClient talks to the customers REST resource. It implements
// customer.RemotePort and never retries.
type CustomerClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	headers    http.Header
	logger     *slog.Logger
}

var _ customer.RemotePort = (*CustomerClient)(nil)

func NewCustomerClient(baseURL string, logger *slog.Logger, opts ...Option) (*CustomerClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("remote: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("remote: invalid base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("remote: base URL %q must be absolute", baseURL)
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	c := &CustomerClient{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		headers:    make(http.Header),
		logger:     logger.With(slog.String("component", "customerClient"), slog.String("baseURL", parsed.String())),
	}
	c.headers.Set("Accept", "application/json")
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *CustomerClient) ListAll(ctx context.Context) ([]customer.Customer, error) {
	var out []customer.Customer
	if err := c.do(ctx, http.MethodGet, customersPath, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []customer.Customer{}
	}
	return out, nil
}

func (c *CustomerClient) GetByID(ctx context.Context, id int64) (customer.Customer, error) {
	var out customer.Customer
	if err := c.do(ctx, http.MethodGet, itemPath(id), nil, &out); err != nil {
		return customer.Customer{}, err
	}
	return out, nil
}

func (c *CustomerClient) Create(ctx context.Context, cust customer.Customer) (customer.Customer, error) {
	var out customer.Customer
	if err := c.do(ctx, http.MethodPost, customersPath, cust, &out); err != nil {
		return customer.Customer{}, err
	}
	return out, nil
}

func (c *CustomerClient) Update(ctx context.Context, cust customer.Customer) (customer.Customer, error) {
	var out customer.Customer
	if err := c.do(ctx, http.MethodPatch, itemPath(cust.ID), cust, &out); err != nil {
		return customer.Customer{}, err
	}
	return out, nil
}

func (c *CustomerClient) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, itemPath(id), nil, nil)
}

func itemPath(id int64) string {
	return customersPath + "/" + strconv.FormatInt(id, 10)
}

// do performs one exchange. A nil out discards the response body.
func (c *CustomerClient) do(ctx context.Context, method, path string, body any, out any) error {
	op := method + " " + path
	logCtx := c.logger.With(slog.String("method", method), slog.String("path", path))

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := jsonMarshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header = c.headers.Clone()
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id, ok := requestid.FromContext(ctx); ok {
		req.Header.Set(requestid.Header, id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		monitoring.RecordRemoteRequest(method, "error", time.Since(start))
		logCtx.WarnContext(ctx, "Customers backend unreachable", slog.Any("error", err))
		return apperrors.WrapTransportError(err, op)
	}
	defer resp.Body.Close()
	monitoring.RecordRemoteRequest(method, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logCtx.WarnContext(ctx, "Customers backend returned an error status", slog.Int("status", resp.StatusCode))
		return &apperrors.RemoteError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       bytes.TrimSpace(data),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		logCtx.WarnContext(ctx, "Malformed response body", slog.Any("error", err))
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	logCtx.DebugContext(ctx, "Customers backend call succeeded", slog.Int("status", resp.StatusCode))
	return nil
}

func jsonMarshal(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
