package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"sales-dashboard/internal/model"
	"sales-dashboard/pkg/config"
	"sales-dashboard/pkg/logger"
	"sales-dashboard/prometheus"

	"go.uber.org/zap"
)

// Operation names used for metrics and log fields
const (
	OpProbe         = "probe"
	OpListClients   = "list_clients"
	OpListProducts  = "list_products"
	OpListSales     = "list_sales"
	OpCreateSale    = "create_sale"
	OpUpdateSale    = "update_sale"
	OpDeleteSale    = "delete_sale"
	OpCategoryUnits = "category_units"
	OpProductSales  = "product_sales"
	OpPaymentTrend  = "payment_trend"
	OpPearson       = "pearson_correlation"
)

const maxErrorBodySize = 4 << 10

// Outcome tells whether a write reached the backend or was simulated locally
type Outcome string

const (
	Persisted Outcome = "persisted"
	Simulated Outcome = "simulated"
)

// WriteResult is the tagged result of a create or update
type WriteResult struct {
	Sale    model.Sale `json:"sale"`
	Outcome Outcome    `json:"outcome"`
}

// StatusError is returned when the backend answers with a non-2xx status
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: backend returned %d %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client talks to the sales REST backend. Reads never fail: on any
// transport or HTTP error they return demonstration data. Writes fall back
// to a locally simulated result tagged as such. Once the caller's context
// is done reads return zero values instead of demonstration data.
type Client struct {
	BaseURL      string
	HTTPClient   *http.Client
	Timeout      time.Duration
	ProbeTimeout time.Duration
	Logger       *zap.Logger

	metrics *prometheus.Metrics
	signer  *TokenSigner
	newID   func() int
	now     func() time.Time
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithIDSource sets the id generator used for simulated creates
func WithIDSource(next func() int) Option {
	return func(c *Client) { c.newID = next }
}

// WithClock sets the clock used for simulated timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithTokenSigner enables the Authorization header on every call
func WithTokenSigner(s *TokenSigner) Option {
	return func(c *Client) { c.signer = s }
}

// NewClient creates a new backend client instance
func NewClient(cfg config.BackendConfig, log *zap.Logger, metrics *prometheus.Metrics, opts ...Option) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.MaxIdleConns > 0 {
		transport.MaxIdleConnsPerHost = cfg.MaxIdleConns
	}

	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		BaseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		HTTPClient:   &http.Client{Transport: transport},
		Timeout:      cfg.Timeout,
		ProbeTimeout: cfg.ProbeTimeout,
		Logger:       log,
		metrics:      metrics,
		newID:        func() int { return rand.IntN(10000) },
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Probe performs a HEAD against the product list and reports whether the
// backend answered with a 2xx.
func (c *Client) Probe(ctx context.Context) bool {
	if c.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.ProbeTimeout)
		defer cancel()
	}

	if err := c.do(ctx, OpProbe, http.MethodHead, "/productos", nil, nil); err != nil {
		logger.FromCtx(ctx, c.Logger).Warn("Backend probe failed", zap.Error(err))
		return false
	}
	return true
}

// ListClients returns every client, or the demonstration list on failure
func (c *Client) ListClients(ctx context.Context) []model.Client {
	var clients []model.Client
	if err := c.do(ctx, OpListClients, http.MethodGet, "/clientes", nil, &clients); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		c.fallback(ctx, OpListClients, err)
		return MockClients()
	}
	return clients
}

// ListProducts returns the catalog, or the demonstration catalog on failure
func (c *Client) ListProducts(ctx context.Context) []model.Product {
	var products []model.Product
	if err := c.do(ctx, OpListProducts, http.MethodGet, "/productos", nil, &products); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		c.fallback(ctx, OpListProducts, err)
		return MockProducts()
	}
	return products
}

// ListSales returns every sale, or the demonstration sales on failure
func (c *Client) ListSales(ctx context.Context) []model.Sale {
	var sales []model.Sale
	if err := c.do(ctx, OpListSales, http.MethodGet, "/ventas", nil, &sales); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		c.fallback(ctx, OpListSales, err)
		return MockSales()
	}
	return sales
}

// CategoryUnits returns units sold per category
func (c *Client) CategoryUnits(ctx context.Context) []model.CategoryUnits {
	var rows []model.CategoryUnits
	if err := c.do(ctx, OpCategoryUnits, http.MethodGet, "/estadisticas/unidades-vendidas-categoria", nil, &rows); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		c.fallback(ctx, OpCategoryUnits, err)
		return MockCategoryUnits()
	}
	return rows
}

// ProductSales returns the price/quantity points behind the scatter chart
func (c *Client) ProductSales(ctx context.Context) []model.ProductSalesPoint {
	var points []model.ProductSalesPoint
	if err := c.do(ctx, OpProductSales, http.MethodGet, "/estadisticas/ventas-por-productos", nil, &points); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		c.fallback(ctx, OpProductSales, err)
		return MockProductSales()
	}
	return points
}

// PaymentTrend returns the per-method trend and its variance
func (c *Client) PaymentTrend(ctx context.Context) model.PaymentTrend {
	var trend model.PaymentTrend
	if err := c.do(ctx, OpPaymentTrend, http.MethodGet, "/estadisticas/metodos-pago-tiempo", nil, &trend); err != nil {
		if ctx.Err() != nil {
			return model.PaymentTrend{}
		}
		c.fallback(ctx, OpPaymentTrend, err)
		return MockPaymentTrend()
	}
	return trend
}

// PearsonCorrelation returns the price/quantity correlation, or nil when
// the backend cannot provide it. There is no demonstration value.
func (c *Client) PearsonCorrelation(ctx context.Context) *model.PearsonCorrelation {
	var corr model.PearsonCorrelation
	if err := c.do(ctx, OpPearson, http.MethodGet, "/estadisticas/correlacion-pearson", nil, &corr); err != nil {
		logger.FromCtx(ctx, c.Logger).Warn("Pearson correlation unavailable", zap.Error(err))
		return nil
	}
	return &corr
}

// CreateSale posts a new sale. When the backend cannot be reached the
// result is simulated: a generated id, the submitted fields and a total
// computed from the details. An error is returned only when ctx itself
// is done.
func (c *Client) CreateSale(ctx context.Context, in model.SaleInput) (WriteResult, error) {
	var sale model.Sale
	err := c.do(ctx, OpCreateSale, http.MethodPost, "/ventas", in, &sale)
	if err == nil {
		c.metrics.RecordSaleWrite("create", string(Persisted))
		return WriteResult{Sale: sale, Outcome: Persisted}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return WriteResult{}, fmt.Errorf("create sale: %w", ctxErr)
	}

	c.fallback(ctx, OpCreateSale, err)
	c.metrics.RecordSaleWrite("create", string(Simulated))
	return WriteResult{
		Sale: model.Sale{
			ID:       c.newID(),
			Date:     in.Date,
			ClientID: in.ClientID,
			Method:   in.Method,
			Total:    model.DetailsTotal(in.Details),
			Details:  in.Details,
		},
		Outcome: Simulated,
	}, nil
}

// UpdateSale replaces the sale with the given id. The simulated result
// keeps the id and fills absent fields with defaults.
func (c *Client) UpdateSale(ctx context.Context, id int, in model.SaleInput) (WriteResult, error) {
	var sale model.Sale
	err := c.do(ctx, OpUpdateSale, http.MethodPut, fmt.Sprintf("/ventas/%d", id), in, &sale)
	if err == nil {
		c.metrics.RecordSaleWrite("update", string(Persisted))
		return WriteResult{Sale: sale, Outcome: Persisted}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return WriteResult{}, fmt.Errorf("update sale %d: %w", id, ctxErr)
	}

	c.fallback(ctx, OpUpdateSale, err)
	c.metrics.RecordSaleWrite("update", string(Simulated))

	sale = model.Sale{
		ID:       id,
		Date:     in.Date,
		ClientID: in.ClientID,
		Method:   in.Method,
		Total:    model.DetailsTotal(in.Details),
		Details:  in.Details,
	}
	if sale.Date == "" {
		sale.Date = model.FormatTimestamp(c.now())
	}
	if sale.ClientID == 0 {
		sale.ClientID = 1
	}
	if sale.Method == "" {
		sale.Method = model.Card
	}
	return WriteResult{Sale: sale, Outcome: Simulated}, nil
}

// DeleteSale removes a sale. A failed delete is reported as Simulated.
func (c *Client) DeleteSale(ctx context.Context, id int) (Outcome, error) {
	err := c.do(ctx, OpDeleteSale, http.MethodDelete, fmt.Sprintf("/ventas/%d", id), nil, nil)
	if err == nil {
		c.metrics.RecordSaleWrite("delete", string(Persisted))
		return Persisted, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("delete sale %d: %w", id, ctxErr)
	}

	c.fallback(ctx, OpDeleteSale, err)
	c.metrics.RecordSaleWrite("delete", string(Simulated))
	return Simulated, nil
}

func (c *Client) fallback(ctx context.Context, operation string, err error) {
	c.metrics.RecordFallback(operation)
	logger.FromCtx(ctx, c.Logger).Warn("Backend unavailable, using fallback data",
		zap.String("operation", operation),
		zap.Error(err))
}

// do sends one request. in is JSON-encoded when non-nil and a 2xx body is
// decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, operation, method, path string, in, out any) error {
	done := c.metrics.TrackBackendCall(operation)

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			done(prometheus.OutcomeTransportError)
			return fmt.Errorf("encode %s body: %w", operation, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		done(prometheus.OutcomeTransportError)
		return err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set(logger.RequestIDKey, id)
	}
	if c.signer != nil {
		token, err := c.signer.Sign()
		if err != nil {
			done(prometheus.OutcomeTransportError)
			return fmt.Errorf("sign service token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logger.FromCtx(ctx, c.Logger).Debug("Calling backend",
		zap.String("operation", operation),
		zap.String("method", method),
		zap.String("path", path))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		done(prometheus.OutcomeTransportError)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		done(prometheus.OutcomeHTTPError)
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			done(prometheus.OutcomeTransportError)
			return fmt.Errorf("decode %s response: %w", operation, err)
		}
	}

	done(prometheus.OutcomeOK)
	return nil
}
