package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sales-dashboard/internal/connectivity"
	"sales-dashboard/internal/model"
	"sales-dashboard/prometheus"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source is the read side of the backend client. Every read returns usable
// data; failures are absorbed by the implementation.
type Source interface {
	Probe(ctx context.Context) bool
	ListClients(ctx context.Context) []model.Client
	ListProducts(ctx context.Context) []model.Product
	ListSales(ctx context.Context) []model.Sale
	CategoryUnits(ctx context.Context) []model.CategoryUnits
	ProductSales(ctx context.Context) []model.ProductSalesPoint
	PaymentTrend(ctx context.Context) model.PaymentTrend
	PearsonCorrelation(ctx context.Context) *model.PearsonCorrelation
}

// Assembler loads the six dashboard datasets and keeps the resulting View.
// A View is replaced in one step; readers never see a half-built state.
type Assembler struct {
	source  Source
	status  *connectivity.Status
	logger  *zap.Logger
	metrics *prometheus.Metrics
	dates   DateFormatter
	now     func() time.Time
	build   func(rawData) View

	mu      sync.RWMutex
	view    View
	loading int
}

// NewAssembler creates an Assembler with an empty view
func NewAssembler(source Source, status *connectivity.Status, dates DateFormatter, logger *zap.Logger, metrics *prometheus.Metrics) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if status == nil {
		status = connectivity.NewStatus(metrics)
	}
	a := &Assembler{
		source:  source,
		status:  status,
		logger:  logger,
		metrics: metrics,
		dates:   dates,
		now:     time.Now,
		view:    View{PaymentMethods: append([]model.PaymentMethod(nil), model.PaymentMethods...)},
	}
	a.build = a.buildView
	return a
}

// Dates returns the formatter used for sale dates
func (a *Assembler) Dates() DateFormatter {
	return a.dates
}

// Status returns the connectivity status the assembler updates
func (a *Assembler) Status() *connectivity.Status {
	return a.status
}

type rawData struct {
	clients    []model.Client
	products   []model.Product
	sales      []model.Sale
	categories []model.CategoryUnits
	scatter    []model.ProductSalesPoint
	trend      model.PaymentTrend
}

// Load probes the backend, fetches the six datasets concurrently and swaps
// in the new view. When the transformation fails, or ctx is done before the
// reads complete, the previous view and connectivity status are kept.
func (a *Assembler) Load(ctx context.Context) error {
	a.setLoading(1)
	defer a.setLoading(-1)
	a.metrics.RecordDashboardReload()

	available := a.source.Probe(ctx)

	var raw rawData
	var g errgroup.Group
	g.Go(func() error { raw.clients = a.source.ListClients(ctx); return nil })
	g.Go(func() error { raw.products = a.source.ListProducts(ctx); return nil })
	g.Go(func() error { raw.sales = a.source.ListSales(ctx); return nil })
	g.Go(func() error { raw.categories = a.source.CategoryUnits(ctx); return nil })
	g.Go(func() error { raw.scatter = a.source.ProductSales(ctx); return nil })
	g.Go(func() error { raw.trend = a.source.PaymentTrend(ctx); return nil })
	if err := g.Wait(); err != nil {
		a.logger.Error("Failed to load dashboard data", zap.Error(err))
		return err
	}
	if err := ctx.Err(); err != nil {
		a.logger.Warn("Dashboard load abandoned, keeping previous view", zap.Error(err))
		return fmt.Errorf("load dashboard: %w", err)
	}

	a.status.Set(available)
	next, err := a.assemble(raw)
	if err != nil {
		a.logger.Error("Failed to assemble dashboard view", zap.Error(err))
		return err
	}

	a.mu.Lock()
	next.Correlation = a.view.Correlation
	a.view = next
	a.mu.Unlock()

	a.logger.Info("Dashboard data loaded",
		zap.Int("clients", len(next.Clients)),
		zap.Int("products", len(next.Products)),
		zap.Int("sales", len(next.Sales)),
		zap.Bool("using_mock_data", next.UsingMockData),
	)
	return nil
}

// LoadCorrelation fetches the Pearson summary. A failed fetch leaves it nil.
func (a *Assembler) LoadCorrelation(ctx context.Context) {
	corr := a.source.PearsonCorrelation(ctx)
	a.mu.Lock()
	a.view.Correlation = corr
	a.mu.Unlock()
}

// Reload is Load under the name the sale form expects
func (a *Assembler) Reload(ctx context.Context) error {
	return a.Load(ctx)
}

func (a *Assembler) assemble(raw rawData) (view View, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("assemble view: %v", r)
		}
	}()
	return a.build(raw), nil
}

func (a *Assembler) buildView(raw rawData) View {
	sales := make([]SaleView, 0, len(raw.sales))
	for _, s := range raw.sales {
		sales = append(sales, a.dates.ToSaleView(s))
	}

	variance := raw.trend.Variance
	return View{
		Clients:          raw.clients,
		Products:         raw.products,
		Sales:            sales,
		Pie:              pieSlices(raw.categories),
		CategoryAverages: categoryAverages(raw.categories),
		Scatter:          scatterPoints(raw.scatter),
		Trend:            raw.trend.Trend,
		Variance:         &variance,
		PaymentMethods:   append([]model.PaymentMethod(nil), model.PaymentMethods...),
		UsingMockData:    a.status.UsingMockData(),
		LoadedAt:         a.now(),
	}
}

func (a *Assembler) setLoading(delta int) {
	a.mu.Lock()
	a.loading += delta
	a.mu.Unlock()
}

// Loading reports whether a load is in progress
func (a *Assembler) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading > 0
}

// Snapshot returns a copy of the current view with the table rows built
// and the connectivity flag refreshed.
func (a *Assembler) Snapshot() View {
	a.mu.RLock()
	v := a.view.clone()
	v.Loading = a.loading > 0
	a.mu.RUnlock()

	v.UsingMockData = a.status.UsingMockData()
	v.Rows = saleRows(v.Sales, v.Clients)
	return v
}

// Sales returns a copy of the current sales list
func (a *Assembler) Sales() []SaleView {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]SaleView, len(a.view.Sales))
	for i, s := range a.view.Sales {
		out[i] = s.clone()
	}
	return out
}

// Clients returns a copy of the current client list
func (a *Assembler) Clients() []model.Client {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]model.Client(nil), a.view.Clients...)
}

// Products returns a copy of the current catalog
func (a *Assembler) Products() []model.Product {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]model.Product(nil), a.view.Products...)
}

// FindSale returns the sale with the given id
func (a *Assembler) FindSale(id int) (SaleView, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, s := range a.view.Sales {
		if s.ID == id {
			return s.clone(), true
		}
	}
	return SaleView{}, false
}

// ProductPrice returns the current catalog price of a product
func (a *Assembler) ProductPrice(id int) (decimal.Decimal, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := model.FindProduct(a.view.Products, id)
	if !ok {
		return decimal.Zero, false
	}
	return p.Price, true
}

// UpsertSale replaces the sale with the same id, or appends it
func (a *Assembler) UpsertSale(s SaleView) {
	s = s.clone()
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.view.Sales {
		if a.view.Sales[i].ID == s.ID {
			a.view.Sales[i] = s
			return
		}
	}
	a.view.Sales = append(a.view.Sales, s)
}

// RemoveSale drops the sale with the given id. It reports whether a sale
// was removed.
func (a *Assembler) RemoveSale(id int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.view.Sales {
		if a.view.Sales[i].ID == id {
			a.view.Sales = append(a.view.Sales[:i:i], a.view.Sales[i+1:]...)
			return true
		}
	}
	return false
}
